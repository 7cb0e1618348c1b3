// Package match evaluates listings against search criteria. It combines
// title-based and attribute-based evidence under a single lenient policy:
// either source can establish a field match, and a constraint is enforced
// strictly only when verified data for it actually exists.
package match

import (
	"strconv"
	"strings"

	"github.com/usedlot/carsearch/engine/domain"
)

// Signal holds the title matcher's per-field verdicts for one listing.
// It is ephemeral: built per evaluation and discarded after the decision.
type Signal struct {
	HasMake  bool
	HasModel bool
	HasYear  bool
}

// Title checks make/model/year against a listing's display title. It is
// pure and does no I/O; fields without an active constraint are left false.
func Title(title, make_, model string, year int) Signal {
	upper := strings.ToUpper(title)

	var sig Signal
	if make_ != "" {
		sig.HasMake = makeMatches(upper, make_)
	}
	if model != "" {
		sig.HasModel = containsAnyVariant(upper, model)
	}
	if year != 0 {
		sig.HasYear = strings.Contains(title, strconv.Itoa(year))
	}
	return sig
}

// makeMatches reports whether upper-cased text contains the requested make.
// The Mercedes alias group matches on either "MERCEDES" or "BENZ".
func makeMatches(upperText, requested string) bool {
	req := strings.ToUpper(requested)
	if domain.MercedesAliases[req] {
		return strings.Contains(upperText, "MERCEDES") || strings.Contains(upperText, "BENZ")
	}
	return strings.Contains(upperText, req)
}

// containsAnyVariant reports whether upper-cased text contains the requested
// model under any spacing or hyphenation, on either side. "CLS63", "CLS 63",
// and "CLS-63" are all the same model whichever of them the query or the
// title happens to use.
func containsAnyVariant(upperText, model string) bool {
	return strings.Contains(stripSeams(upperText), stripSeams(strings.ToUpper(model)))
}

// stripSeams removes spaces and hyphens.
func stripSeams(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}

// IsPart reports whether the title names a part/accessory. Part listings are
// excluded unconditionally, regardless of any other match.
func IsPart(title string) bool {
	upper := strings.ToUpper(title)
	for _, kw := range domain.PartsKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}
