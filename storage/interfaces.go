package storage

import (
	"context"

	"vehicle-storefront/models"
)

// VehicleSource is the tabular query interface every backend must satisfy.
type VehicleSource interface {
	Query(ctx context.Context, q Query) ([]models.Record, error)
	Close() error
}

// ListingWriter persists full listing rows, used for seeding a backend.
type ListingWriter interface {
	Write(ctx context.Context, listings []*models.Listing) error
	Close() error
}

// SummaryWriter exports loaded vehicle summaries.
type SummaryWriter interface {
	WriteSummaries(items []*models.VehicleSummary) error
	Close() error
}
