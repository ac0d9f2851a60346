package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"vehicle-storefront/models"
)

// MemorySource serves pages from an in-memory table. It backs the demo
// backend and tests.
type MemorySource struct {
	mu      sync.RWMutex
	rows    []models.Record
	queries int
}

// NewMemorySource creates a source holding the given listings.
func NewMemorySource(listings []*models.Listing) *MemorySource {
	m := &MemorySource{}
	_ = m.Write(context.Background(), listings)
	return m
}

// Write appends listings, skipping IDs that are already present.
func (m *MemorySource) Write(_ context.Context, listings []*models.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := make(map[string]struct{}, len(m.rows))
	for _, r := range m.rows {
		existing[fmt.Sprint(r[models.ColID])] = struct{}{}
	}
	for _, l := range listings {
		if _, dup := existing[l.ID]; dup {
			continue
		}
		existing[l.ID] = struct{}{}
		rec := l.Record()
		if l.CreatedAt.IsZero() {
			rec[models.ColCreatedAt] = time.Now()
		}
		m.rows = append(m.rows, rec)
	}
	return nil
}

// Query filters, orders and slices the table.
func (m *MemorySource) Query(ctx context.Context, q Query) ([]models.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.queries++
	matched := make([]models.Record, 0, len(m.rows))
	for _, r := range m.rows {
		if matches(r, q.Filters) {
			matched = append(matched, r)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.OrderBy != "" && !sameValue(a[q.OrderBy], b[q.OrderBy]) {
			if q.Descending {
				return lessValue(b[q.OrderBy], a[q.OrderBy])
			}
			return lessValue(a[q.OrderBy], b[q.OrderBy])
		}
		return lessValue(a[models.ColID], b[models.ColID])
	})

	if q.Offset >= len(matched) {
		return []models.Record{}, nil
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}

	out := make([]models.Record, len(matched))
	for i, r := range matched {
		out[i] = project(r, q.Columns)
	}
	return out, nil
}

// Queries returns how many queries have been served.
func (m *MemorySource) Queries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queries
}

func (m *MemorySource) Close() error { return nil }

func matches(r models.Record, filters []Filter) bool {
	for _, f := range filters {
		if fmt.Sprint(r[f.Column]) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}

func project(r models.Record, cols []string) models.Record {
	out := make(models.Record, len(cols))
	if len(cols) == 0 {
		for k, v := range r {
			out[k] = v
		}
		return out
	}
	for _, c := range cols {
		if v, ok := r[c]; ok {
			out[c] = v
		}
	}
	return out
}

func lessValue(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Before(y)
		}
	case int:
		if y, ok := b.(int); ok {
			return x < y
		}
	case int64:
		if y, ok := b.(int64); ok {
			return x < y
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func sameValue(a, b any) bool {
	return !lessValue(a, b) && !lessValue(b, a)
}
