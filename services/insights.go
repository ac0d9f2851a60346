package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"vehicle-storefront/models"
	"vehicle-storefront/utils"
)

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(listings []*models.VehicleSummary) *models.InsightReport {
	report := &models.InsightReport{
		ListingsByCity:  make(map[string]int),
		ListingsByBrand: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var totalPrice float64
	var totalKm float64
	report.MinPrice = listings[0].SellPrice
	report.MaxPrice = listings[0].SellPrice
	report.MostExpensive = listings[0]

	for _, l := range listings {
		if l.SellerType == models.SellerDealer {
			report.DealerListings++
		}
		totalPrice += float64(l.SellPrice)
		totalKm += float64(l.KilometersDriven)
		if l.SellPrice < report.MinPrice {
			report.MinPrice = l.SellPrice
		}
		if l.SellPrice > report.MaxPrice {
			report.MaxPrice = l.SellPrice
			report.MostExpensive = l
		}
		report.ListingsByCity[l.City]++
		report.ListingsByBrand[l.Brand]++
	}

	report.AveragePrice = round2(totalPrice / float64(len(listings)))
	report.AverageKilometers = round2(totalKm / float64(len(listings)))

	// Top 5 newest by manufacture year, then lower mileage
	newest := make([]*models.VehicleSummary, len(listings))
	copy(newest, listings)
	sort.SliceStable(newest, func(i, j int) bool {
		if newest[i].Year != newest[j].Year {
			return newest[i].Year > newest[j].Year
		}
		return newest[i].KilometersDriven < newest[j].KilometersDriven
	})
	if len(newest) > 5 {
		newest = newest[:5]
	}
	report.Newest = newest

	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  VEHICLE LISTING INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Total listings  : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Dealer listings : \033[1m%d\033[0m\n", r.DealerListings)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if r.TotalListings > 0 {
		fmt.Fprintf(w, "  Average price   : \033[1;32m%s\033[0m\n", formatAmount(r.AveragePrice))
		fmt.Fprintf(w, "  Minimum price   : \033[1;32m%s\033[0m\n", formatAmount(float64(r.MinPrice)))
		fmt.Fprintf(w, "  Maximum price   : \033[1;32m%s\033[0m\n", formatAmount(float64(r.MaxPrice)))
		fmt.Fprintf(w, "  Average km      : %s\n", formatAmount(r.AverageKilometers))
	} else {
		fmt.Fprintf(w, "  No price data available\n")
	}
	fmt.Fprintln(w)

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Title(), 50))
		fmt.Fprintf(w, "  City  : %s\n", r.MostExpensive.City)
		fmt.Fprintf(w, "  Price : \033[1;31m%s\033[0m\n", formatAmount(float64(r.MostExpensive.SellPrice)))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Newest Vehicles\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.Newest) == 0 {
		fmt.Fprintf(w, "  No listings found\n")
	} else {
		for i, l := range r.Newest {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s %s km\n",
				i+1, truncate(l.Title(), 38), formatAmount(float64(l.KilometersDriven)))
		}
	}
	fmt.Fprintln(w)

	printCounts(w, "Listings by City", r.ListingsByCity, thin)
	printCounts(w, "Listings by Brand", r.ListingsByBrand, thin)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func printCounts(w io.Writer, title string, counts map[string]int, thin string) {
	fmt.Fprintf(w, "\033[1;33m  %s\033[0m\n", title)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(counts) == 0 {
		fmt.Fprintf(w, "  No data\n\n")
		return
	}
	type kv struct {
		key   string
		count int
	}
	var rows []kv
	for k, c := range counts {
		rows = append(rows, kv{k, c})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].key < rows[j].key
	})
	for _, r := range rows {
		bar := strings.Repeat("█", r.count)
		fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(r.key, 28), bar, r.count)
	}
	fmt.Fprintln(w)
}

// formatAmount groups thousands: 850000 -> "850,000".
func formatAmount(f float64) string {
	n := int64(math.Round(f))
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return s
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
