package services

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-storefront/models"
	"vehicle-storefront/utils"
)

func newTestLogger() *utils.Logger { return utils.NewNopLogger() }

// validRecord returns a complete record as the REST backend would decode it.
func validRecord(id string) models.Record {
	return models.Record{
		models.ColID:               id,
		models.ColBrand:            "Honda",
		models.ColModel:            "City",
		models.ColVariant:          "VX",
		models.ColYear:             json.Number("2019"),
		models.ColSellPrice:        json.Number("850000"),
		models.ColKilometersDriven: json.Number("42000"),
		models.ColColor:            "White",
		models.ColNumberOfOwners:   "1st Owner",
		models.ColCity:             "Pune",
		models.ColCreatedAt:        "2026-03-01T10:00:00Z",
		models.ColSellerType:       "Dealer",
	}
}

func without(r models.Record, col string) models.Record {
	out := make(models.Record, len(r))
	for k, v := range r {
		if k != col {
			out[k] = v
		}
	}
	return out
}

func TestValidatorConvertsRESTRecord(t *testing.T) {
	v := NewValidator(newTestLogger())

	s, err := v.Convert(validRecord("v1"))
	require.NoError(t, err)
	assert.Equal(t, "v1", s.ID)
	assert.Equal(t, 2019, s.Year)
	assert.Equal(t, int64(850000), s.SellPrice)
	assert.Equal(t, 42000, s.KilometersDriven)
	assert.Equal(t, "1st Owner", s.NumberOfOwners)
	assert.Equal(t, models.SellerDealer, s.SellerType)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), s.CreatedAt)
	assert.Equal(t, "2019 Honda City VX", s.Title())
}

func TestValidatorConvertsPostgresRecord(t *testing.T) {
	v := NewValidator(newTestLogger())
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	s, err := v.Convert(models.Record{
		models.ColID:               "v2",
		models.ColBrand:            "Tata",
		models.ColModel:            "Nexon",
		models.ColVariant:          "XZ+",
		models.ColYear:             int64(2022),
		models.ColSellPrice:        []byte("1125000"),
		models.ColKilometersDriven: int64(0),
		models.ColColor:            "Blue",
		models.ColNumberOfOwners:   int64(1),
		models.ColCity:             "  New   Delhi ",
		models.ColCreatedAt:        created,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1125000), s.SellPrice)
	assert.Equal(t, 0, s.KilometersDriven)
	assert.Equal(t, "1", s.NumberOfOwners)
	assert.Equal(t, "New Delhi", s.City)
	assert.Equal(t, created, s.CreatedAt)
	assert.Empty(t, s.SellerType)
}

func TestValidatorParsesFormattedNumbers(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"₹4,50,000", 450000, true},
		{"12,000 km", 12000, true},
		{"Rs. 99999.50", 99999.50, true},
		{"", 0, false},
		{"on request", 0, false},
		{"-500", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseNumber(tt.raw)
		assert.Equal(t, tt.ok, ok, "parseNumber(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "parseNumber(%q)", tt.raw)
	}
}

func TestValidatorRequiredFields(t *testing.T) {
	v := NewValidator(newTestLogger())
	required := []string{
		models.ColID, models.ColCity, models.ColYear, models.ColBrand, models.ColModel,
		models.ColVariant, models.ColSellPrice, models.ColKilometersDriven,
		models.ColColor, models.ColNumberOfOwners,
	}

	for _, col := range required {
		_, err := v.Convert(without(validRecord("v1"), col))
		assert.Error(t, err, "record without %s should be rejected", col)
	}

	for _, col := range []string{models.ColCreatedAt, models.ColSellerType} {
		_, err := v.Convert(without(validRecord("v1"), col))
		assert.NoError(t, err, "%s is optional", col)
	}
}

func TestValidatorRejectsBlankAndOutOfRange(t *testing.T) {
	v := NewValidator(newTestLogger())

	r := validRecord("v1")
	r[models.ColCity] = "   "
	_, err := v.Convert(r)
	assert.Error(t, err)

	r = validRecord("v1")
	r[models.ColYear] = json.Number("19")
	_, err = v.Convert(r)
	assert.Error(t, err)

	r = validRecord("v1")
	r[models.ColSellPrice] = json.Number("0")
	_, err = v.Convert(r)
	assert.Error(t, err)

	r = validRecord("v1")
	r[models.ColKilometersDriven] = int64(-5)
	_, err = v.Convert(r)
	assert.Error(t, err, "negative kilometers")

	r = validRecord("v1")
	r[models.ColKilometersDriven] = json.Number("1e20")
	_, err = v.Convert(r)
	assert.Error(t, err, "kilometers beyond int range must not wrap")

	r = validRecord("v1")
	r[models.ColSellPrice] = "₹99,999,999,999,999,999,999"
	_, err = v.Convert(r)
	assert.Error(t, err, "price beyond int64 range must not wrap")

	r = validRecord("v1")
	r[models.ColSellPrice] = math.Inf(1)
	_, err = v.Convert(r)
	assert.Error(t, err)

	r = validRecord("v1")
	r[models.ColYear] = json.Number("1e30")
	_, err = v.Convert(r)
	assert.Error(t, err)

	r = validRecord("v1")
	r[models.ColKilometersDriven] = json.Number("2147483647")
	s, err := v.Convert(r)
	require.NoError(t, err)
	assert.Equal(t, 2147483647, s.KilometersDriven)

	r = validRecord("v1")
	r[models.ColYear] = "Model year 2018"
	s, err = v.Convert(r)
	require.NoError(t, err)
	assert.Equal(t, 2018, s.Year)
}

func TestValidatorValidateKeepsOrderAndCountsDropped(t *testing.T) {
	v := NewValidator(newTestLogger())

	valid, dropped := v.Validate([]models.Record{
		validRecord("a"),
		without(validRecord("b"), models.ColCity),
		validRecord("c"),
	})

	assert.Equal(t, 1, dropped)
	require.Len(t, valid, 2)
	assert.Equal(t, "a", valid[0].ID)
	assert.Equal(t, "c", valid[1].ID)
}
