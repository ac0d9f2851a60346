package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-storefront/models"
)

func TestPageQueryLatest(t *testing.T) {
	q := PageQuery("", models.ListingFilter{Category: models.CategoryCar, Mode: models.ModeLatest}, 2, 12)

	assert.Equal(t, DefaultTable, q.Table)
	assert.Equal(t, 24, q.Offset)
	assert.Equal(t, 12, q.Limit)
	assert.Equal(t, models.ColCreatedAt, q.OrderBy)
	assert.True(t, q.Descending)
	assert.Equal(t, []Filter{{Column: models.ColVehicleType, Value: "car"}}, q.Filters)
}

func TestPageQueryFlagsAndCity(t *testing.T) {
	tests := []struct {
		mode models.Mode
		flag string
	}{
		{models.ModeRecommended, models.ColIsRecommended},
		{models.ModeDiscounted, models.ColIsDiscounted},
	}

	for _, tt := range tests {
		q := PageQuery("vehicles", models.ListingFilter{Category: models.CategoryBike, Mode: tt.mode, City: "Pune"}, 0, 10)
		require.Len(t, q.Filters, 3, tt.mode)
		assert.Equal(t, Filter{Column: tt.flag, Value: true}, q.Filters[1])
		assert.Equal(t, Filter{Column: models.ColCity, Value: "Pune"}, q.Filters[2])
		assert.Empty(t, q.OrderBy)
	}
}

func TestQuerySQL(t *testing.T) {
	q := PageQuery("", models.ListingFilter{Category: models.CategoryCar, Mode: models.ModeDiscounted}, 1, 5)
	q.Columns = []string{"id", "city"}
	q.OrderBy = "created_at"
	q.Descending = true

	stmt, args, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, city FROM vehicles WHERE vehicle_type = $1 AND is_discounted = $2 ORDER BY created_at DESC, id LIMIT $3 OFFSET $4",
		stmt)
	assert.Equal(t, []any{"car", true, 5, 5}, args)
}

func TestQuerySQLOrdersByIDWithoutSortColumn(t *testing.T) {
	q := PageQuery("", models.ListingFilter{Category: models.CategoryCar, Mode: models.ModeRecommended}, 2, 5)

	stmt, args, err := q.SQL()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, brand, model, variant, year, sell_price, kilometers_driven, color, number_of_owners, city, created_at, seller_type FROM vehicles WHERE vehicle_type = $1 AND is_recommended = $2 ORDER BY id LIMIT $3 OFFSET $4",
		stmt)
	assert.Equal(t, []any{"car", true, 5, 10}, args)
}

func TestQueryRejectsBadIdentifiers(t *testing.T) {
	q := Query{Table: "vehicles; DROP TABLE vehicles", Limit: 1}
	_, _, err := q.SQL()
	assert.ErrorIs(t, err, ErrBadIdentifier)

	q = Query{Table: "vehicles", Filters: []Filter{{Column: "city OR 1=1", Value: "x"}}}
	assert.ErrorIs(t, q.Validate(), ErrBadIdentifier)
}

func TestQueryEqDoesNotAlias(t *testing.T) {
	base := Query{Table: "vehicles"}.Eq("city", "Pune")
	a := base.Eq("color", "red")
	b := base.Eq("color", "blue")

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, "red", a.Filters[1].Value)
	assert.Equal(t, "blue", b.Filters[1].Value)
}
