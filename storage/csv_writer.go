package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"vehicle-storefront/models"
)

// CSVWriter exports vehicle summaries to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"id", "brand", "model", "variant", "year", "sell_price", "kilometers_driven",
		"color", "number_of_owners", "city", "seller_type", "created_at",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteSummaries appends one row per summary.
func (c *CSVWriter) WriteSummaries(items []*models.VehicleSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range items {
		createdAt := ""
		if !v.CreatedAt.IsZero() {
			createdAt = v.CreatedAt.Format(time.RFC3339)
		}
		row := []string{
			v.ID,
			v.Brand,
			v.Model,
			v.Variant,
			strconv.Itoa(v.Year),
			strconv.FormatInt(v.SellPrice, 10),
			strconv.Itoa(v.KilometersDriven),
			v.Color,
			v.NumberOfOwners,
			v.City,
			string(v.SellerType),
			createdAt,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	return c.file.Close()
}
