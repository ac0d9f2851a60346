package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-storefront/models"
)

const fixtureDoc = `
vehicles:
  - id: hc-2019
    vehicle_type: car
    brand: Honda
    model: City
    variant: VX
    year: 2019
    sell_price: 850000
    kilometers_driven: 42000
    color: White
    number_of_owners: "1st Owner"
    city: Pune
    seller_type: dealer
    is_recommended: true
    created_at: 2026-03-01T10:00:00Z
  - vehicle_type: bike
    brand: Bajaj
    model: Pulsar
    variant: "150"
    year: 2021
    sell_price: 72000
    kilometers_driven: 9000
    color: Black
    number_of_owners: "1st Owner"
    city: Nagpur
  - brand: Tata
    model: Nexon
`

func TestParseFixtures(t *testing.T) {
	listings, err := ParseFixtures([]byte(fixtureDoc))
	require.NoError(t, err)
	require.Len(t, listings, 3)

	first := listings[0]
	assert.Equal(t, "hc-2019", first.ID)
	assert.Equal(t, models.CategoryCar, first.VehicleType)
	assert.Equal(t, int64(850000), first.SellPrice)
	assert.True(t, first.IsRecommended)
	assert.Equal(t, models.SellerDealer, first.SellerType)
	assert.Equal(t, 2026, first.CreatedAt.Year())

	_, err = uuid.Parse(listings[1].ID)
	assert.NoError(t, err, "missing id should be replaced by a uuid")
	assert.Equal(t, models.CategoryBike, listings[1].VehicleType)

	assert.Equal(t, models.CategoryCar, listings[2].VehicleType)
}

func TestParseFixturesRejectsUnknownType(t *testing.T) {
	_, err := ParseFixtures([]byte("vehicles:\n  - id: x\n    vehicle_type: boat\n"))
	assert.Error(t, err)
}

func TestLoadFixturesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vehicles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureDoc), 0o644))

	listings, err := LoadFixtures(path)
	require.NoError(t, err)
	assert.Len(t, listings, 3)

	_, err = LoadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
