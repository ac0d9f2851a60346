package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vehicle-storefront/models"
)

// RESTSource queries a hosted PostgREST-style backend:
//
//	GET {base}/rest/v1/{table}?select=a,b&col=eq.v&order=created_at.desc&offset=0&limit=12
type RESTSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// RESTOption customises a RESTSource.
type RESTOption func(*RESTSource)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) RESTOption {
	return func(s *RESTSource) { s.client = c }
}

// NewRESTSource creates a source for the backend at baseURL.
func NewRESTSource(baseURL, apiKey string, opts ...RESTOption) (*RESTSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("rest: invalid base url %q", baseURL)
	}
	s := &RESTSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// restError is the error object the backend returns on non-2xx responses.
type restError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Hint    string `json:"hint"`
}

// Query issues one GET request for the page.
func (s *RESTSource) Query(ctx context.Context, q Query) ([]models.Record, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(q), nil)
	if err != nil {
		return nil, fmt.Errorf("rest: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rest: request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("rest: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var re restError
		if json.Unmarshal(body, &re) == nil && re.Message != "" {
			return nil, fmt.Errorf("rest: %s: %s (code %s)", resp.Status, re.Message, re.Code)
		}
		return nil, fmt.Errorf("rest: unexpected status %s", resp.Status)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var records []models.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("rest: decode: %w", err)
	}
	return records, nil
}

func (s *RESTSource) endpoint(q Query) string {
	v := url.Values{}
	if len(q.Columns) > 0 {
		v.Set("select", strings.Join(q.Columns, ","))
	}
	for _, f := range q.Filters {
		v.Add(f.Column, "eq."+formatValue(f.Value))
	}
	order := models.ColID + ".asc"
	if q.OrderBy != "" {
		dir := "asc"
		if q.Descending {
			dir = "desc"
		}
		order = q.OrderBy + "." + dir + "," + order
	}
	v.Set("order", order)
	v.Set("offset", strconv.Itoa(q.Offset))
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return s.baseURL + "/rest/v1/" + q.Table + "?" + v.Encode()
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func (s *RESTSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
