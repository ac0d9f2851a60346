package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-storefront/models"
)

func sampleSummaries() []*models.VehicleSummary {
	return []*models.VehicleSummary{
		{ID: "1", Brand: "Honda", Model: "City", Variant: "VX", Year: 2019, SellPrice: 850000, KilometersDriven: 42000, City: "Pune", SellerType: models.SellerDealer},
		{ID: "2", Brand: "Maruti", Model: "Swift", Variant: "ZXi", Year: 2021, SellPrice: 600000, KilometersDriven: 15000, City: "Pune"},
		{ID: "3", Brand: "Honda", Model: "Amaze", Variant: "S", Year: 2021, SellPrice: 700000, KilometersDriven: 9000, City: "Delhi", SellerType: models.SellerDealer},
		{ID: "4", Brand: "Toyota", Model: "Fortuner", Variant: "4x4", Year: 2018, SellPrice: 2850000, KilometersDriven: 80000, City: "Mumbai"},
	}
}

func TestInsightCounts(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleSummaries())
	assert.Equal(t, 4, r.TotalListings)
	assert.Equal(t, 2, r.DealerListings)
	assert.Equal(t, 2, r.ListingsByCity["Pune"])
	assert.Equal(t, 2, r.ListingsByBrand["Honda"])
}

func TestInsightPrices(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleSummaries())
	assert.Equal(t, 1250000.0, r.AveragePrice)
	assert.Equal(t, int64(600000), r.MinPrice)
	assert.Equal(t, int64(2850000), r.MaxPrice)
	assert.Equal(t, 36500.0, r.AverageKilometers)
	require.NotNil(t, r.MostExpensive)
	assert.Equal(t, "4", r.MostExpensive.ID)
}

func TestInsightNewest(t *testing.T) {
	r := NewInsightService(newTestLogger()).Generate(sampleSummaries())
	require.Len(t, r.Newest, 4)
	assert.Equal(t, "3", r.Newest[0].ID, "same year, lower mileage first")
	assert.Equal(t, "2", r.Newest[1].ID)
	assert.Equal(t, "4", r.Newest[3].ID)
}

func TestInsightEmptyInput(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	r := svc.Generate(nil)
	assert.Zero(t, r.TotalListings)
	assert.Nil(t, r.MostExpensive)

	var buf bytes.Buffer
	svc.Print(&buf, r)
	assert.Contains(t, buf.String(), "No price data available")
}

func TestInsightPrint(t *testing.T) {
	svc := NewInsightService(newTestLogger())
	var buf bytes.Buffer
	svc.Print(&buf, svc.Generate(sampleSummaries()))

	out := buf.String()
	assert.Contains(t, out, "2,850,000")
	assert.Contains(t, out, "2018 Toyota Fortuner 4x4")
	assert.Contains(t, out, "Listings by Brand")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", formatAmount(0))
	assert.Equal(t, "999", formatAmount(999))
	assert.Equal(t, "1,000", formatAmount(1000))
	assert.Equal(t, "1,250,000", formatAmount(1250000))
}
