package storage

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"vehicle-storefront/models"
)

type fixtureFile struct {
	Vehicles []*models.Listing `yaml:"vehicles"`
}

// LoadFixtures reads seed listings from a YAML file.
func LoadFixtures(path string) ([]*models.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %q: %w", path, err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes a fixtures document. Listings without an id get a
// random UUID and listings without a vehicle_type default to cars.
func ParseFixtures(data []byte) ([]*models.Listing, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fixtures: decode: %w", err)
	}

	for i, l := range f.Vehicles {
		if l == nil {
			return nil, fmt.Errorf("fixtures: vehicle %d is empty", i)
		}
		l.ID = strings.TrimSpace(l.ID)
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if l.VehicleType == "" {
			l.VehicleType = models.CategoryCar
		}
		if err := (models.ListingFilter{Category: l.VehicleType}).Validate(); err != nil {
			return nil, fmt.Errorf("fixtures: vehicle %s: %w", l.ID, err)
		}
	}
	return f.Vehicles, nil
}
