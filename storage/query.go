package storage

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"vehicle-storefront/models"
)

// DefaultTable is the listings table name shared by every backend.
const DefaultTable = "vehicles"

var identRegexp = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// ErrBadIdentifier is returned for table or column names that are not
// plain lower-case identifiers.
var ErrBadIdentifier = errors.New("storage: bad identifier")

// Filter is one equality condition.
type Filter struct {
	Column string
	Value  any
}

// Query describes one page request: projection, equality filters, an
// optional ordering and offset/limit pagination.
type Query struct {
	Table      string
	Columns    []string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Offset     int
	Limit      int
}

// Eq appends an equality filter and returns the query for chaining.
func (q Query) Eq(column string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Column: column, Value: value})
	return q
}

// Validate checks identifiers and pagination bounds.
func (q Query) Validate() error {
	if err := checkIdent(q.Table); err != nil {
		return err
	}
	for _, c := range q.Columns {
		if err := checkIdent(c); err != nil {
			return err
		}
	}
	for _, f := range q.Filters {
		if err := checkIdent(f.Column); err != nil {
			return err
		}
	}
	if q.OrderBy != "" {
		if err := checkIdent(q.OrderBy); err != nil {
			return err
		}
	}
	if q.Offset < 0 || q.Limit < 0 {
		return fmt.Errorf("storage: negative offset/limit %d/%d", q.Offset, q.Limit)
	}
	return nil
}

func checkIdent(s string) error {
	if !identRegexp.MatchString(s) {
		return fmt.Errorf("%w: %q", ErrBadIdentifier, s)
	}
	return nil
}

// PageQuery builds the query a listing page issues for the given filter.
func PageQuery(table string, filter models.ListingFilter, pageIndex, pageSize int) Query {
	if table == "" {
		table = DefaultTable
	}
	q := Query{
		Table:   table,
		Columns: models.SummaryColumns,
		Offset:  pageIndex * pageSize,
		Limit:   pageSize,
	}
	if filter.Category != "" {
		q = q.Eq(models.ColVehicleType, string(filter.Category))
	}
	switch filter.Mode {
	case models.ModeLatest:
		q.OrderBy = models.ColCreatedAt
		q.Descending = true
	case models.ModeRecommended:
		q = q.Eq(models.ColIsRecommended, true)
	case models.ModeDiscounted:
		q = q.Eq(models.ColIsDiscounted, true)
	}
	if filter.City != "" {
		q = q.Eq(models.ColCity, filter.City)
	}
	return q
}

// SQL renders the query as a PostgreSQL statement with positional args.
func (q Query) SQL() (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	cols := "*"
	if len(q.Columns) > 0 {
		cols = strings.Join(q.Columns, ", ")
	}

	var b strings.Builder
	args := make([]any, 0, len(q.Filters)+2)
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, q.Table)

	for i, f := range q.Filters {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&b, "%s = $%d", f.Column, len(args))
	}

	// id breaks ties and orders unsorted views so offset pages are stable.
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s, %s", q.OrderBy, dir, models.ColID)
	} else {
		fmt.Fprintf(&b, " ORDER BY %s", models.ColID)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	args = append(args, q.Offset)
	fmt.Fprintf(&b, " OFFSET $%d", len(args))

	return b.String(), args, nil
}
