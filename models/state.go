package models

// LoaderState is the snapshot a loader exposes to rendering components.
type LoaderState struct {
	Filter    ListingFilter     `json:"filter"`
	Items     []*VehicleSummary `json:"items"`
	IsLoading bool              `json:"isLoading"`
	LastError string            `json:"lastError,omitempty"`
	HasMore   bool              `json:"hasMore"`
	PageIndex int               `json:"pageIndex"`
}

// InsightReport holds the computed analytics over a set of listings.
type InsightReport struct {
	TotalListings     int
	DealerListings    int
	AveragePrice      float64
	MinPrice          int64
	MaxPrice          int64
	MostExpensive     *VehicleSummary
	AverageKilometers float64
	Newest            []*VehicleSummary
	ListingsByCity    map[string]int
	ListingsByBrand   map[string]int
}
