package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"nexus_dashboard/internal/models"
)

var errBackend = errors.New("backend unavailable")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubInventoryRepo struct {
	mu      sync.Mutex
	items   []models.InventoryItem
	err     error
	calls   int
	block   chan struct{}
	started chan struct{}

	uploads   []string
	uploadErr error
}

func (r *stubInventoryRepo) GetAll(ctx context.Context) ([]models.InventoryItem, error) {
	r.mu.Lock()
	r.calls++
	block, started := r.block, r.started
	items, err := r.items, r.err
	r.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return items, err
}

func (r *stubInventoryRepo) Upload(ctx context.Context, filename string, rd io.Reader) (*models.UploadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads = append(r.uploads, filename)
	if r.uploadErr != nil {
		return &models.UploadResult{Success: false, Error: r.uploadErr.Error()}, r.uploadErr
	}
	return &models.UploadResult{Success: true, Count: 3}, nil
}

func (r *stubInventoryRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type stubOrderRepo struct {
	mu      sync.Mutex
	orders  []models.Order
	err     error
	calls   int
	uploads []string
}

func (r *stubOrderRepo) GetAll(ctx context.Context) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.orders, r.err
}

func (r *stubOrderRepo) Upload(ctx context.Context, filename string, rd io.Reader) (*models.UploadResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads = append(r.uploads, filename)
	return &models.UploadResult{Success: true, Count: 1}, nil
}

type stubMRORepo struct {
	mu      sync.Mutex
	items   []models.MROItem
	listErr error
	lists   []models.MROFilter
	block   map[string]chan struct{}
	started chan string

	created   []models.MROItem
	updated   map[string]models.MROPatch
	deleted   []string
	mutateErr error
}

func newStubMRORepo(items ...models.MROItem) *stubMRORepo {
	return &stubMRORepo{items: items, updated: map[string]models.MROPatch{}, block: map[string]chan struct{}{}}
}

func (r *stubMRORepo) GetAll(ctx context.Context, filter models.MROFilter) ([]models.MROItem, error) {
	r.mu.Lock()
	r.lists = append(r.lists, filter)
	block := r.block[filter.Category]
	started := r.started
	err := r.listErr
	var out []models.MROItem
	for _, item := range r.items {
		if filter.Category != "" && string(item.Category) != filter.Category {
			continue
		}
		if filter.Progress != "" && string(item.Progress) != filter.Progress {
			continue
		}
		out = append(out, item)
	}
	r.mu.Unlock()

	if started != nil {
		started <- filter.Category
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.MROItem{}
	}
	return out, nil
}

func (r *stubMRORepo) Create(ctx context.Context, item models.MROItem) (*models.MROItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutateErr != nil {
		return nil, r.mutateErr
	}
	r.created = append(r.created, item)
	r.items = append(r.items, item)
	return &item, nil
}

func (r *stubMRORepo) Update(ctx context.Context, serialNumber string, patch models.MROPatch) (*models.MROItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutateErr != nil {
		return nil, r.mutateErr
	}
	r.updated[serialNumber] = patch
	for i := range r.items {
		if r.items[i].SerialNumber == serialNumber && patch.Progress != nil {
			r.items[i].Progress = *patch.Progress
			return &r.items[i], nil
		}
	}
	return &models.MROItem{SerialNumber: serialNumber}, nil
}

func (r *stubMRORepo) Delete(ctx context.Context, serialNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutateErr != nil {
		return r.mutateErr
	}
	r.deleted = append(r.deleted, serialNumber)
	kept := r.items[:0]
	for _, item := range r.items {
		if item.SerialNumber != serialNumber {
			kept = append(kept, item)
		}
	}
	r.items = kept
	return nil
}

func (r *stubMRORepo) listCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lists)
}

type stubAnalyticsRepo struct {
	summary *models.AnalyticsSummary
	err     error
	calls   int
}

func (r *stubAnalyticsRepo) GetSummary(ctx context.Context) (*models.AnalyticsSummary, error) {
	r.calls++
	return r.summary, r.err
}
