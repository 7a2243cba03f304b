// Package history polls the prediction log and serves filtered,
// paginated views of the latest snapshot.
package history

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fraudlens/internal/logging"
	"fraudlens/internal/models"
	"fraudlens/internal/utils/pagination"

	"go.uber.org/zap"
)

const (
	DefaultLimit    = 50
	DefaultInterval = 30 * time.Second
)

// Source tells live data from the offline fallback.
type Source int

const (
	SourceNone Source = iota
	SourceLive
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Fetcher loads the most recent records, newest first.
type Fetcher interface {
	Recent(ctx context.Context, limit int) ([]models.TransactionRecord, error)
}

type Config struct {
	Limit    int
	Interval time.Duration
	PageSize int
	// Rand seeds fallback data; nil uses a time-seeded source.
	Rand *rand.Rand
	Now  func() time.Time
}

// Snapshot is one fetch result.
type Snapshot struct {
	Records   []models.TransactionRecord
	Source    Source
	FetchedAt time.Time
}

// View is the current page of the filtered snapshot.
type View struct {
	pagination.Page[models.TransactionRecord]
	Filter StatusFilter
	Search string
	Source Source
}

type Viewer struct {
	fetcher Fetcher
	config  Config
	logger  *zap.Logger

	mu        sync.RWMutex
	rng       *rand.Rand
	snapshot  Snapshot
	filter    StatusFilter
	search    string
	page      int
	listeners []func(Snapshot)
}

func NewViewer(fetcher Fetcher, config Config, logger *zap.Logger) *Viewer {
	if config.Limit <= 0 {
		config.Limit = DefaultLimit
	}
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.PageSize <= 0 {
		config.PageSize = pagination.DefaultPageSize
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	rng := config.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(config.Now().UnixNano()))
	}

	return &Viewer{
		fetcher: fetcher,
		config:  config,
		logger:  logging.OrNop(logger),
		rng:     rng,
		filter:  FilterAll,
		page:    1,
	}
}

// OnUpdate registers fn to receive every new snapshot.
func (v *Viewer) OnUpdate(fn func(Snapshot)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

// Run fetches immediately and then every Interval until ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	v.Refresh(ctx)

	ticker := time.NewTicker(v.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			v.Refresh(ctx)
		}
	}
}

// Refresh performs one fetch. A failed fetch installs FallbackCount
// synthetic records; a fetch that completes after ctx is done is dropped.
func (v *Viewer) Refresh(ctx context.Context) {
	records, err := v.fetcher.Recent(ctx, v.config.Limit)
	if ctx.Err() != nil {
		return
	}

	snap := Snapshot{Records: records, Source: SourceLive, FetchedAt: v.config.Now()}
	if err != nil {
		v.logger.Warn("failed to fetch recent predictions, showing demo data", zap.Error(err))
		v.mu.Lock()
		snap.Records = MockRecords(FallbackCount, v.rng, snap.FetchedAt)
		v.mu.Unlock()
		snap.Source = SourceFallback
	}
	if snap.Records == nil {
		snap.Records = []models.TransactionRecord{}
	}

	v.mu.Lock()
	v.snapshot = snap
	v.clampPage()
	listeners := append(([]func(Snapshot))(nil), v.listeners...)
	v.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

// clampPage keeps the current page inside the filtered snapshot. Caller holds mu.
func (v *Viewer) clampPage() {
	total := pagination.TotalPages(len(Filter(v.snapshot.Records, v.filter, v.search)), v.config.PageSize)
	if v.page > total {
		v.page = total
	}
	if v.page < 1 {
		v.page = 1
	}
}

// Snapshot returns the latest fetch result.
func (v *Viewer) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s := v.snapshot
	s.Records = append([]models.TransactionRecord(nil), v.snapshot.Records...)
	return s
}

// SetFilter changes the status filter and returns to the first page.
func (v *Viewer) SetFilter(f StatusFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
	v.page = 1
}

// SetSearch changes the search term and returns to the first page.
func (v *Viewer) SetSearch(search string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = search
	v.page = 1
}

// SetPage moves to page n (1-based). Pages past the end show the last
// page and pages below 1 show the first. Before the first fetch n is kept
// and clamped once records arrive.
func (v *Viewer) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = n
	if v.snapshot.Source != SourceNone {
		v.clampPage()
	}
}

// View renders the current page.
func (v *Viewer) View() View {
	v.mu.RLock()
	defer v.mu.RUnlock()

	matched := Filter(v.snapshot.Records, v.filter, v.search)
	return View{
		Page:   pagination.Paginate(matched, v.page, v.config.PageSize),
		Filter: v.filter,
		Search: v.search,
		Source: v.snapshot.Source,
	}
}
