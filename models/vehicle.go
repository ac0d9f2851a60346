package models

import (
	"fmt"
	"strings"
	"time"
)

// Column names of the vehicles table.
const (
	ColID               = "id"
	ColBrand            = "brand"
	ColModel            = "model"
	ColVariant          = "variant"
	ColYear             = "year"
	ColSellPrice        = "sell_price"
	ColKilometersDriven = "kilometers_driven"
	ColColor            = "color"
	ColNumberOfOwners   = "number_of_owners"
	ColCity             = "city"
	ColCreatedAt        = "created_at"
	ColSellerType       = "seller_type"

	ColVehicleType   = "vehicle_type"
	ColIsRecommended = "is_recommended"
	ColIsDiscounted  = "is_discounted"
)

// SummaryColumns is the projection requested for listing cards.
var SummaryColumns = []string{
	ColID, ColBrand, ColModel, ColVariant, ColYear, ColSellPrice,
	ColKilometersDriven, ColColor, ColNumberOfOwners, ColCity,
	ColCreatedAt, ColSellerType,
}

// Record is one loosely typed row as returned by a backend.
type Record map[string]any

// SellerType tags who is selling a vehicle. Display-only.
type SellerType string

const (
	SellerDealer     SellerType = "dealer"
	SellerIndividual SellerType = "individual"
)

// Upper bounds for the integer display fields. Backend numbers above these
// cannot be converted without wrapping.
const (
	MaxSellPrice  int64 = 1 << 53
	MaxKilometers int64 = 1<<31 - 1
)

// VehicleSummary is the read-only projection rendered on listing cards.
type VehicleSummary struct {
	ID               string     `json:"id" validate:"required"`
	Brand            string     `json:"brand" validate:"required"`
	Model            string     `json:"model" validate:"required"`
	Variant          string     `json:"variant" validate:"required"`
	Year             int        `json:"year" validate:"gte=1900,lte=2100"`
	SellPrice        int64      `json:"sellPrice" validate:"gt=0,lte=9007199254740992"`
	KilometersDriven int        `json:"kilometersDriven" validate:"gte=0,lte=2147483647"`
	Color            string     `json:"color" validate:"required"`
	NumberOfOwners   string     `json:"numberOfOwners" validate:"required"`
	City             string     `json:"city" validate:"required"`
	CreatedAt        time.Time  `json:"createdAt,omitempty"`
	SellerType       SellerType `json:"sellerType,omitempty" validate:"omitempty,oneof=dealer individual"`
}

// Title is the card heading, e.g. "2019 Honda City VX".
func (v *VehicleSummary) Title() string {
	return strings.TrimSpace(fmt.Sprintf("%d %s %s %s", v.Year, v.Brand, v.Model, v.Variant))
}
