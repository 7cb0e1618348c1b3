// Package domain defines the core search types, constants, and validation
// for the carsearch engine. It acts as the validation gate at the search
// entry point.
package domain

// SortOption mirrors the upstream feed's sort values.
type SortOption string

const (
	SortNewestFirst    SortOption = "-posted"
	SortClosestFirst   SortOption = "distance"
	SortPriceLowToHigh SortOption = "price"
	SortPriceHighToLow SortOption = "-price"
)

// DeliveryOption mirrors the upstream feed's delivery values.
type DeliveryOption string

const (
	DeliveryPickup            DeliveryOption = "p"
	DeliveryShipping          DeliveryOption = "s"
	DeliveryPickupAndShipping DeliveryOption = "p_s"
)

// Condition mirrors the upstream feed's listing conditions.
type Condition string

const (
	ConditionNew         Condition = "NEW"
	ConditionOpenBox     Condition = "OPEN_BOX"
	ConditionRefurbished Condition = "REFURBISHED"
	ConditionUsed        Condition = "USED"
	ConditionBroken      Condition = "BROKEN"
	ConditionOther       Condition = "OTHER"
)

// Criteria is the caller-supplied search constraints. Query, Make, Model
// use "" for unset; Year uses 0. MinMiles/MaxMiles are pointers so a zero
// bound is distinguishable from no bound.
type Criteria struct {
	Query string `json:"query,omitempty"`

	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Year     int    `json:"year,omitempty"`
	MinMiles *int   `json:"min_miles,omitempty"`
	MaxMiles *int   `json:"max_miles,omitempty"`

	// Location and paging are passed through to the listing source and
	// never evaluated by the engine.
	State          string  `json:"state,omitempty"`
	City           string  `json:"city,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	PickupDistance int     `json:"pickup_distance,omitempty"`
	PriceMin       *int    `json:"price_min,omitempty"`
	PriceMax       *int    `json:"price_max,omitempty"`

	Sort       SortOption     `json:"sort,omitempty"`
	Delivery   DeliveryOption `json:"delivery,omitempty"`
	Conditions []Condition    `json:"conditions,omitempty"`
}

// HasMileageBound reports whether either mileage bound is set.
func (c Criteria) HasMileageBound() bool {
	return c.MinMiles != nil || c.MaxMiles != nil
}

// Relaxed returns a copy with the year and mileage bounds cleared.
// Query, make, and model are preserved.
func (c Criteria) Relaxed() Criteria {
	out := c
	out.Year = 0
	out.MinMiles = nil
	out.MaxMiles = nil
	return out
}

// Listing is one vehicle-for-sale record from the upstream marketplace.
// The record is owned by the caller; the engine only ever attaches resolved
// Attributes to it, and only to the listing's own record.
type Listing struct {
	ID            string `json:"listing_id"`
	Title         string `json:"title"`
	Price         string `json:"price,omitempty"`
	LocationName  string `json:"location_name,omitempty"`
	ListingURL    string `json:"listing_url"`
	ConditionText string `json:"condition_text,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`

	// Attributes is nil until the resolver attaches a normalized record.
	// Once attached it is never invalidated within one search call.
	Attributes *VehicleAttributes `json:"vehicle_attributes,omitempty"`
}

// VehicleAttributes is the canonical form of a listing's structured vehicle
// data. Year uses 0 for absent; string fields use "". Miles is a pointer so
// a genuine zero-mile reading stays distinguishable from not reported.
type VehicleAttributes struct {
	Year         int    `json:"year,omitempty"`
	Make         string `json:"make,omitempty"`
	Model        string `json:"model,omitempty"`
	Miles        *int   `json:"miles,omitempty"`
	Color        string `json:"color,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	FuelType     string `json:"fuel_type,omitempty"`
	Body         string `json:"body,omitempty"`
	DriveTrain   string `json:"drive_train,omitempty"`
	VIN          string `json:"vin,omitempty"`
}

// ResultSet is the ordered sequence of accepted listings. Order is inherited
// from the raw listing order; the engine never re-sorts.
type ResultSet []*Listing
