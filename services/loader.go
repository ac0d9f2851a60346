package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"vehicle-storefront/models"
	"vehicle-storefront/storage"
	"vehicle-storefront/utils"
)

// ErrInvalidPage is returned by FetchPage for negative page indexes.
var ErrInvalidPage = errors.New("loader: invalid page index")

// HasMorePolicy decides which row count is compared with the page size to
// detect the last page.
type HasMorePolicy string

const (
	// HasMoreValid counts records that survived validation.
	HasMoreValid HasMorePolicy = "valid"
	// HasMoreRaw counts rows as returned by the backend, so dropped records
	// cannot end the list early.
	HasMoreRaw HasMorePolicy = "raw"
)

// ParseHasMorePolicy accepts "valid", "raw" or empty (valid).
func ParseHasMorePolicy(s string) (HasMorePolicy, error) {
	switch p := HasMorePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", HasMoreValid:
		return HasMoreValid, nil
	case HasMoreRaw:
		return HasMoreRaw, nil
	default:
		return "", fmt.Errorf("unknown has-more policy %q", s)
	}
}

// LoaderConfig holds the paging parameters of a Loader.
type LoaderConfig struct {
	Table    string
	PageSize int
	Policy   HasMorePolicy
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithStateFeed publishes every state change to feed.
func WithStateFeed(feed *StateFeed) LoaderOption {
	return func(l *Loader) { l.feed = feed }
}

// Loader accumulates pages of vehicle summaries for one listing filter.
//
// At most one fetch is in flight at a time. Every fetch is tagged with the
// generation it started in; Refresh, SetFilter and Stop start a new
// generation, cancel the outstanding fetch and cause its result to be
// discarded.
type Loader struct {
	source    storage.VehicleSource
	validator *Validator
	logger    *utils.Logger
	feed      *StateFeed
	table     string
	pageSize  int
	policy    HasMorePolicy

	mu         sync.Mutex
	filter     models.ListingFilter
	items      []*models.VehicleSummary
	seen       *utils.IDSet
	isLoading  bool
	lastError  string
	hasMore    bool
	pageIndex  int
	loaded     bool
	generation uint64
	cancel     context.CancelFunc
}

// NewLoader creates an empty loader for filter. Nothing is fetched until
// Refresh (or FetchPage) is called.
func NewLoader(source storage.VehicleSource, validator *Validator, logger *utils.Logger,
	filter models.ListingFilter, cfg LoaderConfig, opts ...LoaderOption) *Loader {
	if cfg.PageSize < 1 {
		cfg.PageSize = 1
	}
	if cfg.Policy == "" {
		cfg.Policy = HasMoreValid
	}
	l := &Loader{
		source:    source,
		validator: validator,
		logger:    logger,
		table:     cfg.Table,
		pageSize:  cfg.PageSize,
		policy:    cfg.Policy,
		filter:    filter,
		seen:      utils.NewIDSet(),
		hasMore:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// fetchRun carries what one in-flight fetch needs after the lock is released.
type fetchRun struct {
	ctx       context.Context
	cancel    context.CancelFunc
	gen       uint64
	filter    models.ListingFilter
	pageIndex int
	reset     bool
}

// FetchPage fetches one page and merges it into the list, replacing the
// list when reset is true. It is a no-op while another fetch is in flight.
// Query failures are recorded in LastError and returned.
func (l *Loader) FetchPage(ctx context.Context, pageIndex int, reset bool) error {
	if pageIndex < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPage, pageIndex)
	}

	l.mu.Lock()
	if l.isLoading {
		l.mu.Unlock()
		l.logger.Debug("[loader] Fetch of page %d skipped, another fetch is in flight", pageIndex)
		return nil
	}
	run := l.begin(ctx, pageIndex, reset)
	l.mu.Unlock()

	return l.run(run)
}

// LoadMore fetches the page after the last loaded one. It is a no-op when
// the list is exhausted or a fetch is in flight.
func (l *Loader) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if !l.hasMore || l.isLoading {
		l.mu.Unlock()
		return nil
	}
	next := 0
	if l.loaded {
		next = l.pageIndex + 1
	}
	run := l.begin(ctx, next, next == 0)
	l.mu.Unlock()

	return l.run(run)
}

// Refresh reloads the first page, superseding any in-flight fetch. The
// current items stay visible until the first page arrives.
func (l *Loader) Refresh(ctx context.Context) error {
	l.mu.Lock()
	l.supersede()
	l.pageIndex = 0
	l.hasMore = true
	run := l.begin(ctx, 0, true)
	l.mu.Unlock()

	return l.run(run)
}

// SetFilter discards the list and loads the first page of filter.
func (l *Loader) SetFilter(ctx context.Context, filter models.ListingFilter) error {
	if err := filter.Validate(); err != nil {
		return fmt.Errorf("loader: %w", err)
	}

	l.mu.Lock()
	l.supersede()
	l.filter = filter
	l.items = nil
	l.seen.Reset()
	l.lastError = ""
	l.pageIndex = 0
	l.hasMore = true
	l.loaded = false
	run := l.begin(ctx, 0, true)
	l.mu.Unlock()

	l.logger.Debug("[loader] Filter changed to %s", filter)
	return l.run(run)
}

// Stop cancels any in-flight fetch and discards its result.
func (l *Loader) Stop() {
	l.mu.Lock()
	l.supersede()
	l.mu.Unlock()
	l.publish()
}

// State returns a copy of the loader state for rendering.
func (l *Loader) State() models.LoaderState {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]*models.VehicleSummary, len(l.items))
	copy(items, l.items)
	return models.LoaderState{
		Filter:    l.filter,
		Items:     items,
		IsLoading: l.isLoading,
		LastError: l.lastError,
		HasMore:   l.hasMore,
		PageIndex: l.pageIndex,
	}
}

// Status reports the two flags the scroll trigger needs without copying
// the item list.
func (l *Loader) Status() (isLoading, hasMore bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isLoading, l.hasMore
}

// begin marks a fetch in flight. Caller holds l.mu.
func (l *Loader) begin(ctx context.Context, pageIndex int, reset bool) fetchRun {
	fctx, cancel := context.WithCancel(ctx)
	l.isLoading = true
	l.cancel = cancel
	return fetchRun{
		ctx:       fctx,
		cancel:    cancel,
		gen:       l.generation,
		filter:    l.filter,
		pageIndex: pageIndex,
		reset:     reset,
	}
}

// supersede starts a new generation. Caller holds l.mu.
func (l *Loader) supersede() {
	l.generation++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.isLoading = false
}

// release clears the in-flight flag unless a newer generation owns it.
func (l *Loader) release(gen uint64) {
	l.mu.Lock()
	if gen == l.generation {
		l.isLoading = false
		l.cancel = nil
	}
	l.mu.Unlock()
}

func (l *Loader) run(r fetchRun) error {
	defer r.cancel()
	defer l.publish()
	defer l.release(r.gen)
	l.publish()

	q := storage.PageQuery(l.table, r.filter, r.pageIndex, l.pageSize)
	records, err := l.source.Query(r.ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()

	if r.gen != l.generation {
		l.logger.Debug("[loader] Discarding stale page %d for %s", r.pageIndex, r.filter)
		return nil
	}

	if err != nil {
		l.lastError = err.Error()
		l.logger.Warn("[loader] Page %d for %s failed: %v", r.pageIndex, r.filter, err)
		return fmt.Errorf("loader: fetch page %d: %w", r.pageIndex, err)
	}

	valid, dropped := l.validator.Validate(records)

	if r.reset {
		l.items = nil
		l.seen.Reset()
	}
	added := 0
	for _, v := range valid {
		if !l.seen.Add(v.ID) {
			l.logger.Debug("[loader] Duplicate id %s skipped", v.ID)
			continue
		}
		l.items = append(l.items, v)
		added++
	}

	counted := len(valid)
	if l.policy == HasMoreRaw {
		counted = len(records)
	}
	l.hasMore = counted == l.pageSize
	l.pageIndex = r.pageIndex
	l.loaded = true
	l.lastError = ""

	l.logger.Debug("[loader] Page %d for %s: %d rows, %d dropped, %d added, %d total, hasMore=%t",
		r.pageIndex, r.filter, len(records), dropped, added, len(l.items), l.hasMore)
	return nil
}

func (l *Loader) publish() {
	if l.feed != nil {
		l.feed.Publish(l.State())
	}
}
