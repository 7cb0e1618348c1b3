package domain

import "strconv"

// ValidateCriteria checks the invariants the engine assumes pre-validated:
// coordinates come in pairs, a city needs a state, and numeric bounds are
// sane. The engine itself never re-checks these.
func ValidateCriteria(c Criteria) error {
	if (c.Lat == nil) != (c.Lon == nil) {
		return NewValidationError("lat/lon", "", ErrCoordinatePair)
	}
	if c.City != "" && c.State == "" {
		return NewValidationError("city", c.City, ErrCityWithoutState)
	}
	if c.Year != 0 && (c.Year < MinYear || c.Year > MaxYear) {
		return NewValidationError("year", strconv.Itoa(c.Year), ErrYearOutOfRange)
	}
	if c.MinMiles != nil && *c.MinMiles < 0 {
		return NewValidationError("min_miles", strconv.Itoa(*c.MinMiles), ErrNegativeMileage)
	}
	if c.MaxMiles != nil && *c.MaxMiles < 0 {
		return NewValidationError("max_miles", strconv.Itoa(*c.MaxMiles), ErrNegativeMileage)
	}
	if c.MinMiles != nil && c.MaxMiles != nil && *c.MinMiles > *c.MaxMiles {
		return NewValidationError("min_miles", strconv.Itoa(*c.MinMiles), ErrMileageRange)
	}
	return nil
}
