package models

import "time"

// Listing is a full vehicles-table row, including the filter flags that
// VehicleSummary does not project. Used for seeding and fixtures.
type Listing struct {
	ID               string     `yaml:"id" json:"id"`
	VehicleType      Category   `yaml:"vehicle_type" json:"vehicle_type"`
	Brand            string     `yaml:"brand" json:"brand"`
	Model            string     `yaml:"model" json:"model"`
	Variant          string     `yaml:"variant" json:"variant"`
	Year             int        `yaml:"year" json:"year"`
	SellPrice        int64      `yaml:"sell_price" json:"sell_price"`
	KilometersDriven int        `yaml:"kilometers_driven" json:"kilometers_driven"`
	Color            string     `yaml:"color" json:"color"`
	NumberOfOwners   string     `yaml:"number_of_owners" json:"number_of_owners"`
	City             string     `yaml:"city" json:"city"`
	SellerType       SellerType `yaml:"seller_type" json:"seller_type"`
	IsRecommended    bool       `yaml:"is_recommended" json:"is_recommended"`
	IsDiscounted     bool       `yaml:"is_discounted" json:"is_discounted"`
	CreatedAt        time.Time  `yaml:"created_at" json:"created_at"`
}

// Record converts the listing into the loosely typed row shape backends
// return.
func (l *Listing) Record() Record {
	r := Record{
		ColID:               l.ID,
		ColVehicleType:      string(l.VehicleType),
		ColBrand:            l.Brand,
		ColModel:            l.Model,
		ColVariant:          l.Variant,
		ColYear:             l.Year,
		ColSellPrice:        l.SellPrice,
		ColKilometersDriven: l.KilometersDriven,
		ColColor:            l.Color,
		ColNumberOfOwners:   l.NumberOfOwners,
		ColCity:             l.City,
		ColSellerType:       string(l.SellerType),
		ColIsRecommended:    l.IsRecommended,
		ColIsDiscounted:     l.IsDiscounted,
	}
	if !l.CreatedAt.IsZero() {
		r[ColCreatedAt] = l.CreatedAt
	}
	return r
}
