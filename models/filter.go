package models

import (
	"fmt"
	"strings"
)

// Category is the vehicle kind a listing page shows.
type Category string

const (
	CategoryCar  Category = "car"
	CategoryBike Category = "bike"
)

// Mode selects ordering and flag filters for a listing page.
type Mode string

const (
	ModeAll         Mode = "all"
	ModeLatest      Mode = "latest"
	ModeRecommended Mode = "recommended"
	ModeDiscounted  Mode = "discounted"
)

// ListingFilter selects which listings a loader pages over.
type ListingFilter struct {
	Category Category `json:"category"`
	Mode     Mode     `json:"mode"`
	City     string   `json:"city,omitempty"`
}

// DefaultFilter is the storefront landing view.
func DefaultFilter() ListingFilter {
	return ListingFilter{Category: CategoryCar, Mode: ModeLatest}
}

// Validate rejects unknown categories and modes. Empty values are allowed
// and mean "any category" and ModeAll.
func (f ListingFilter) Validate() error {
	switch f.Category {
	case "", CategoryCar, CategoryBike:
	default:
		return fmt.Errorf("unknown category %q", f.Category)
	}
	switch f.Mode {
	case "", ModeAll, ModeLatest, ModeRecommended, ModeDiscounted:
	default:
		return fmt.Errorf("unknown mode %q", f.Mode)
	}
	return nil
}

func (f ListingFilter) String() string {
	parts := []string{string(f.Category), string(f.Mode)}
	if f.City != "" {
		parts = append(parts, f.City)
	}
	return strings.Join(parts, "/")
}

// ParseFilter parses "category/mode[/city]", the inverse of String.
func ParseFilter(s string) (ListingFilter, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "/", 3)
	f := ListingFilter{Category: Category(parts[0])}
	if len(parts) > 1 {
		f.Mode = Mode(parts[1])
	}
	if len(parts) > 2 {
		f.City = parts[2]
	}
	if err := f.Validate(); err != nil {
		return ListingFilter{}, err
	}
	return f, nil
}
