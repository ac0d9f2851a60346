package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"vehicle-storefront/models"
	"vehicle-storefront/utils"
)

var (
	// numberRegexp captures the first grouped number, e.g. "4,50,000" or "12,000.5"
	numberRegexp = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	// yearRegexp captures a plausible manufacture year
	yearRegexp = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Validator turns loosely typed backend records into VehicleSummaries and
// drops records that miss a required display field.
type Validator struct {
	logger   *utils.Logger
	validate *validator.Validate
}

// NewValidator creates a Validator with the given logger.
func NewValidator(logger *utils.Logger) *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{logger: logger, validate: validate}
}

// Validate converts every valid record in page order. Invalid records are
// dropped and counted, never reported as errors.
func (v *Validator) Validate(records []models.Record) (valid []*models.VehicleSummary, dropped int) {
	valid = make([]*models.VehicleSummary, 0, len(records))
	for _, r := range records {
		s, err := v.Convert(r)
		if err != nil {
			dropped++
			v.logger.Debug("[validator] Dropping record %v: %v", r[models.ColID], err)
			continue
		}
		valid = append(valid, s)
	}
	return valid, dropped
}

// Convert maps one record, returning an error naming the first missing or
// unparseable required field.
func (v *Validator) Convert(r models.Record) (*models.VehicleSummary, error) {
	s := &models.VehicleSummary{
		ID:             textField(r, models.ColID),
		City:           textField(r, models.ColCity),
		Brand:          textField(r, models.ColBrand),
		Model:          textField(r, models.ColModel),
		Variant:        textField(r, models.ColVariant),
		Color:          textField(r, models.ColColor),
		NumberOfOwners: textField(r, models.ColNumberOfOwners),
		CreatedAt:      timeField(r, models.ColCreatedAt),
		SellerType:     sellerType(r[models.ColSellerType]),
	}

	year, err := yearField(r)
	if err != nil {
		return nil, err
	}
	s.Year = int(year)

	price, err := intField(r, models.ColSellPrice, models.MaxSellPrice)
	if err != nil {
		return nil, err
	}
	s.SellPrice = price

	km, err := intField(r, models.ColKilometersDriven, models.MaxKilometers)
	if err != nil {
		return nil, err
	}
	s.KilometersDriven = int(km)

	if err := v.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid %s: failed %s", verrs[0].Field(), verrs[0].Tag())
		}
		return nil, err
	}
	return s, nil
}

func missing(col string) error {
	return fmt.Errorf("missing or invalid %s", col)
}

// intField reads a numeric column and truncates it to an integer. Values
// outside [-limit, limit] and non-finite values are rejected before the
// conversion so they cannot wrap.
func intField(r models.Record, col string, limit int64) (int64, error) {
	f, ok := numberField(r, col)
	if !ok {
		return 0, missing(col)
	}
	if math.IsNaN(f) || math.Abs(f) > float64(limit) {
		return 0, fmt.Errorf("%s out of range: %v", col, r[col])
	}
	return int64(f), nil
}

// textField returns the normalised display text of a column, or "" when it
// is absent. Numbers are formatted so numeric ids and owner counts survive.
func textField(r models.Record, col string) string {
	var s string
	switch t := r[col].(type) {
	case string:
		s = t
	case []byte:
		s = string(t)
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int, int32, int64:
		s = fmt.Sprint(t)
	default:
		return ""
	}
	return normaliseText(s)
}

// numberField accepts native numbers and strings with grouping, currency
// symbols or units, e.g. "₹4,50,000" and "12,000 km".
func numberField(r models.Record, col string) (float64, bool) {
	switch t := r[col].(type) {
	case nil:
		return 0, false
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case []byte:
		return parseNumber(string(t))
	case string:
		return parseNumber(t)
	}
	return 0, false
}

func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-") {
		return 0, false
	}
	match := numberRegexp.FindString(raw)
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// yearField accepts a number or the first plausible year inside a string,
// e.g. "Model year 2018".
func yearField(r models.Record) (int64, error) {
	if s, ok := r[models.ColYear].(string); ok {
		m := yearRegexp.FindString(s)
		if m == "" {
			return 0, missing(models.ColYear)
		}
		n, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return 0, missing(models.ColYear)
		}
		return n, nil
	}
	return intField(r, models.ColYear, 9999)
}

func timeField(r models.Record, col string) time.Time {
	switch t := r[col].(type) {
	case time.Time:
		return t
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05.999999-07", "2006-01-02"} {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts
			}
		}
	}
	return time.Time{}
}

func sellerType(v any) models.SellerType {
	s, _ := v.(string)
	switch models.SellerType(strings.ToLower(strings.TrimSpace(s))) {
	case models.SellerDealer:
		return models.SellerDealer
	case models.SellerIndividual:
		return models.SellerIndividual
	}
	return ""
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
