package domain

// KnownMakes is the fixed make vocabulary, scanned in order by the keyword
// extractor; the first entry found in the query wins. The Mercedes spellings
// are interchangeable through MercedesAliases, so which of them wins the
// scan does not affect matching.
var KnownMakes = []string{
	"MERCEDES", "BENZ", "MERCEDES-BENZ", "HONDA", "TOYOTA", "FORD",
	"BMW", "AUDI", "LEXUS", "ACURA", "INFINITI", "NISSAN", "CHEVROLET",
	"CHEVY", "DODGE", "JEEP", "CHRYSLER", "GMC", "CADILLAC", "LINCOLN",
}

// MercedesAliases are the make tokens treated as one alias group: a title or
// attribute matches the group if it contains either "MERCEDES" or "BENZ".
var MercedesAliases = map[string]bool{
	"MERCEDES":      true,
	"MERCEDES-BENZ": true,
	"BENZ":          true,
}

// PartsKeywords mark a listing as a part/accessory rather than a whole
// vehicle. Any occurrence in the title excludes the listing unconditionally.
var PartsKeywords = []string{
	"PART", "SHELL", "PANEL", "DOOR", "BUMPER", "FENDER", "HOOD", "TRUNK",
	"SEAT", "WHEEL", "RIM", "HEADLIGHT", "TAILLIGHT", "OEM", "DRIVER REAR",
}

// MinYear is the earliest model year accepted in criteria.
const MinYear = 1900

// MaxYear is the latest model year accepted (next-year models included).
const MaxYear = 2030
