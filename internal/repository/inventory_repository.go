package repository

import (
	"context"
	"io"

	"nexus_dashboard/internal/models"
	"nexus_dashboard/pkg/nexusapi"
)

type InventoryRepository interface {
	GetAll(ctx context.Context) ([]models.InventoryItem, error)
	Upload(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error)
}

type inventoryRepository struct {
	client *nexusapi.Client
}

func NewInventoryRepository(client *nexusapi.Client) InventoryRepository {
	return &inventoryRepository{client: client}
}

func (r *inventoryRepository) GetAll(ctx context.Context) ([]models.InventoryItem, error) {
	return r.client.FetchInventory(ctx)
}

func (r *inventoryRepository) Upload(ctx context.Context, filename string, rd io.Reader) (*models.UploadResult, error) {
	return r.client.UploadInventoryFile(ctx, filename, rd)
}
