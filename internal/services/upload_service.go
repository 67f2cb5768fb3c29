package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"nexus_dashboard/internal/events"
	"nexus_dashboard/internal/models"
	"nexus_dashboard/internal/repository"
)

// UploadExtensions lists the spreadsheet formats the backend accepts.
var UploadExtensions = []string{".csv", ".xlsx", ".xls"}

type UploadService interface {
	UploadInventory(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error)
	UploadOrders(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error)
}

type uploadService struct {
	inventoryRepo repository.InventoryRepository
	orderRepo     repository.OrderRepository
	bus           *events.Bus
	logger        *slog.Logger
}

func NewUploadService(
	inventoryRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	bus *events.Bus,
	logger *slog.Logger,
) UploadService {
	return &uploadService{
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
		bus:           bus,
		logger:        logger,
	}
}

// CheckUploadName rejects files whose extension the backend cannot parse.
func CheckUploadName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(UploadExtensions, ext) {
		return fmt.Errorf("%w: unsupported file type %q, expected one of %s",
			models.ErrValidation, ext, strings.Join(UploadExtensions, ", "))
	}
	return nil
}

func (s *uploadService) UploadInventory(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	if err := CheckUploadName(filename); err != nil {
		return nil, err
	}
	result, err := s.inventoryRepo.Upload(ctx, filename, r)
	if err != nil {
		s.logger.Error("inventory upload failed", "file", filename, "error", err)
		return result, err
	}
	s.logger.Info("inventory uploaded", "file", filename, "count", result.Count)
	s.publish("upload.inventory", events.InventoryUpdated, events.AnalyticsUpdated)
	return result, nil
}

func (s *uploadService) UploadOrders(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error) {
	if err := CheckUploadName(filename); err != nil {
		return nil, err
	}
	result, err := s.orderRepo.Upload(ctx, filename, r)
	if err != nil {
		s.logger.Error("orders upload failed", "file", filename, "error", err)
		return result, err
	}
	s.logger.Info("orders uploaded", "file", filename, "count", result.Count)
	s.publish("upload.orders", events.OrdersUpdated, events.AnalyticsUpdated)
	return result, nil
}

func (s *uploadService) publish(source string, types ...events.Type) {
	if s.bus != nil {
		s.bus.Publish(source, types...)
	}
}
