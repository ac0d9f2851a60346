package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-storefront/models"
)

func TestCSVWriterWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "vehicles.csv")

	w, err := NewCSVWriter(path)
	require.NoError(t, err)

	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, w.WriteSummaries([]*models.VehicleSummary{
		{ID: "v1", Brand: "Honda", Model: "City", Variant: "VX", Year: 2019, SellPrice: 850000,
			KilometersDriven: 42000, Color: "White", NumberOfOwners: "1st Owner", City: "Pune",
			SellerType: models.SellerDealer, CreatedAt: created},
		{ID: "v2", Brand: "Tata", Model: "Nexon", Year: 2022, City: "Delhi"},
	}))
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, []string{"v1", "Honda", "City", "VX", "2019", "850000", "42000",
		"White", "1st Owner", "Pune", "dealer", "2026-02-03T04:05:06Z"}, rows[1])
	assert.Equal(t, "", rows[2][11])
}
