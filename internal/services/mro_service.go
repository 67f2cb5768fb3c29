package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"nexus_dashboard/internal/events"
	"nexus_dashboard/internal/models"
	"nexus_dashboard/internal/repository"
)

// ErrSuperseded is returned by a feed fetch that was overtaken by a newer one.
var ErrSuperseded = errors.New("fetch superseded by a newer request")

// MROService is the shared access point for MRO jobs. Identical listings
// that overlap in time share one backend request.
type MROService interface {
	List(ctx context.Context, filter models.MROFilter) ([]models.MROItem, error)
	Create(ctx context.Context, item models.MROItem) (*models.MROItem, error)
	Update(ctx context.Context, serialNumber string, patch models.MROPatch) (*models.MROItem, error)
	Delete(ctx context.Context, serialNumber string) error
	NewFeed(filter models.MROFilter) *MROFeed
}

type mroService struct {
	repo   repository.MRORepository
	bus    *events.Bus
	logger *slog.Logger

	group singleflight.Group
	// generation changes on every successful mutation so that a listing
	// started afterwards never joins one started before it.
	generation atomic.Uint64
}

func NewMROService(repo repository.MRORepository, bus *events.Bus, logger *slog.Logger) MROService {
	return &mroService{repo: repo, bus: bus, logger: logger}
}

func (s *mroService) List(ctx context.Context, filter models.MROFilter) ([]models.MROItem, error) {
	key := fmt.Sprintf("mro/%d?category=%s&progress=%s", s.generation.Load(), filter.Category, filter.Progress)
	// The shared request outlives any single caller; a caller that gives up
	// returns at once while the others keep waiting.
	ch := s.group.DoChan(key, func() (any, error) {
		return s.repo.GetAll(context.WithoutCancel(ctx), filter)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	items := res.Val.([]models.MROItem)
	// Callers sharing a result must not see each other's edits.
	out := make([]models.MROItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *mroService) Create(ctx context.Context, item models.MROItem) (*models.MROItem, error) {
	models.NormalizeMROItem(&item)
	if err := models.ValidateNewMROItem(item); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, err
	}
	s.changed("mro.create")
	return created, nil
}

func (s *mroService) Update(ctx context.Context, serialNumber string, patch models.MROPatch) (*models.MROItem, error) {
	if serialNumber == "" {
		return nil, fmt.Errorf("%w: serial number is required", models.ErrValidation)
	}
	if err := models.ValidatePatch(patch); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, serialNumber, patch)
	if err != nil {
		return nil, err
	}
	s.changed("mro.update")
	return updated, nil
}

func (s *mroService) Delete(ctx context.Context, serialNumber string) error {
	if serialNumber == "" {
		return fmt.Errorf("%w: serial number is required", models.ErrValidation)
	}
	if err := s.repo.Delete(ctx, serialNumber); err != nil {
		return err
	}
	s.changed("mro.delete")
	return nil
}

func (s *mroService) changed(source string) {
	s.generation.Add(1)
	if s.bus != nil {
		s.bus.Publish(source, events.MROUpdated, events.AnalyticsUpdated)
	}
}

func (s *mroService) NewFeed(filter models.MROFilter) *MROFeed {
	return &MROFeed{svc: s, filter: filter, items: []models.MROItem{}, logger: s.logger}
}

// MROFeed is one consumer's view of the MRO list for a filter. It tracks
// the loaded items, the loading flag and the last error. Only the most
// recently started fetch may update it; starting a fetch cancels the one
// in flight.
type MROFeed struct {
	svc    MROService
	logger *slog.Logger

	mu      sync.Mutex
	filter  models.MROFilter
	items   []models.MROItem
	loading bool
	err     string
	seq     uint64
	cancel  context.CancelFunc
	closed  bool
}

// Fetch loads the list for the current filter. On failure the list is
// emptied and the error recorded.
func (f *MROFeed) Fetch(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return context.Canceled
	}
	if f.cancel != nil {
		f.cancel()
	}
	f.seq++
	seq := f.seq
	fetchCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	filter := f.filter
	f.loading = true
	f.err = ""
	f.mu.Unlock()
	defer cancel()

	items, err := f.svc.List(fetchCtx, filter)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		f.logger.Debug("discarding superseded MRO fetch", "seq", seq, "latest", f.seq)
		return ErrSuperseded
	}
	f.loading = false
	f.cancel = nil
	if err != nil {
		f.err = err.Error()
		f.items = []models.MROItem{}
		f.logger.Warn("failed to fetch MRO items", "category", filter.Category, "progress", filter.Progress, "error", err)
		return err
	}
	f.items = items
	return nil
}

// SetFilter re-fetches when category or progress changed. An unchanged
// filter is a no-op.
func (f *MROFeed) SetFilter(ctx context.Context, filter models.MROFilter) error {
	f.mu.Lock()
	same := f.filter == filter
	f.filter = filter
	f.mu.Unlock()
	if same {
		return nil
	}
	return f.Fetch(ctx)
}

func (f *MROFeed) Filter() models.MROFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

// Items returns a copy of the loaded list.
func (f *MROFeed) Items() []models.MROItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.MROItem, len(f.items))
	copy(out, f.items)
	return out
}

func (f *MROFeed) IsLoading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *MROFeed) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// CreateItem sends item to the backend and reloads the list. The error is
// both recorded on the feed and returned.
func (f *MROFeed) CreateItem(ctx context.Context, item models.MROItem) error {
	return f.mutate(ctx, func() error {
		_, err := f.svc.Create(ctx, item)
		return err
	})
}

func (f *MROFeed) UpdateItem(ctx context.Context, serialNumber string, patch models.MROPatch) error {
	return f.mutate(ctx, func() error {
		_, err := f.svc.Update(ctx, serialNumber, patch)
		return err
	})
}

func (f *MROFeed) DeleteItem(ctx context.Context, serialNumber string) error {
	return f.mutate(ctx, func() error {
		return f.svc.Delete(ctx, serialNumber)
	})
}

func (f *MROFeed) mutate(ctx context.Context, op func() error) error {
	f.mu.Lock()
	f.err = ""
	f.mu.Unlock()

	if err := op(); err != nil {
		f.mu.Lock()
		f.err = err.Error()
		f.mu.Unlock()
		return err
	}
	if err := f.Fetch(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// Close cancels any fetch in flight. Later fetches fail immediately.
func (f *MROFeed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.loading = false
}
