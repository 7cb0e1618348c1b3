// Package detail resolves per-listing vehicle attributes. The fetch itself
// is delegated to an external collaborator; this package decides nothing
// about when to fetch (see engine/match) and only normalizes, caches, and
// degrades gracefully.
package detail

import (
	"bytes"
	"strconv"

	"github.com/usedlot/carsearch/engine/domain"
)

// FlexInt is an int that unmarshals from a JSON number or a numeric string.
// Unparsable values decode to zero rather than failing the whole payload.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = 0
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = FlexInt(n)
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexInt(int(fl))
	}
	return nil
}

// OptInt is an optional int that unmarshals from a JSON number or a numeric
// string. Absent, null, and unparsable values all decode to unset; a parsed
// zero is a real value.
type OptInt struct {
	Val int
	Set bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptInt) UnmarshalJSON(b []byte) error {
	*o = OptInt{}
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*o = OptInt{Val: n, Set: true}
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*o = OptInt{Val: int(fl), Set: true}
	}
	return nil
}

// Ptr returns the value as *int, nil when unset.
func (o OptInt) Ptr() *int {
	if !o.Set {
		return nil
	}
	v := o.Val
	return &v
}

// Payload is the raw detail-fetch response shape from the upstream feed.
type Payload struct {
	Data struct {
		Listing struct {
			Title           string `json:"title"`
			Price           string `json:"price"`
			Description     string `json:"description"`
			Condition       string `json:"condition"`
			LocationDetails struct {
				LocationName string `json:"locationName"`
			} `json:"locationDetails"`
			VehicleAttributes *RawAttributes `json:"vehicleAttributes"`
			Photos            []Photo        `json:"photos"`
		} `json:"listing"`
	} `json:"data"`
}

// Photo is one photo entry from the detail payload.
type Photo struct {
	Detail struct {
		URL string `json:"url"`
	} `json:"detail"`
}

// RawAttributes is the upstream vehicle-attribute block. Numeric fields may
// arrive as strings.
type RawAttributes struct {
	VehicleYear              FlexInt `json:"vehicleYear"`
	VehicleMake              string  `json:"vehicleMake"`
	VehicleModel             string  `json:"vehicleModel"`
	VehicleMiles             OptInt  `json:"vehicleMiles"`
	VehicleColor             string  `json:"vehicleColor"`
	VehicleTransmissionClean string  `json:"vehicleTransmissionClean"`
	VehicleFuelType          string  `json:"vehicleFuelType"`
	VehicleBody              string  `json:"vehicleBody"`
	VehicleDriveTrain        string  `json:"vehicleDriveTrain"`
	VehicleVin               string  `json:"vehicleVin"`
}

// Attributes returns the normalized vehicle attributes from the payload, or
// nil when the listing carries none.
func (p Payload) Attributes() *domain.VehicleAttributes {
	raw := p.Data.Listing.VehicleAttributes
	if raw == nil {
		return nil
	}
	return &domain.VehicleAttributes{
		Year:         int(raw.VehicleYear),
		Make:         raw.VehicleMake,
		Model:        raw.VehicleModel,
		Miles:        raw.VehicleMiles.Ptr(),
		Color:        raw.VehicleColor,
		Transmission: raw.VehicleTransmissionClean,
		FuelType:     raw.VehicleFuelType,
		Body:         raw.VehicleBody,
		DriveTrain:   raw.VehicleDriveTrain,
		VIN:          raw.VehicleVin,
	}
}

// PhotoURLs returns the detail photo URLs, skipping empty entries.
func (p Payload) PhotoURLs() []string {
	var urls []string
	for _, ph := range p.Data.Listing.Photos {
		if ph.Detail.URL != "" {
			urls = append(urls, ph.Detail.URL)
		}
	}
	return urls
}
