package repository

import (
	"context"
	"io"

	"nexus_dashboard/internal/models"
	"nexus_dashboard/pkg/nexusapi"
)

type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	Upload(ctx context.Context, filename string, r io.Reader) (*models.UploadResult, error)
}

type orderRepository struct {
	client *nexusapi.Client
}

func NewOrderRepository(client *nexusapi.Client) OrderRepository {
	return &orderRepository{client: client}
}

func (r *orderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.client.FetchOrders(ctx)
}

func (r *orderRepository) Upload(ctx context.Context, filename string, rd io.Reader) (*models.UploadResult, error) {
	return r.client.UploadOrdersFile(ctx, filename, rd)
}
