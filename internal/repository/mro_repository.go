package repository

import (
	"context"

	"nexus_dashboard/internal/models"
	"nexus_dashboard/pkg/nexusapi"
)

type MRORepository interface {
	GetAll(ctx context.Context, filter models.MROFilter) ([]models.MROItem, error)
	Create(ctx context.Context, item models.MROItem) (*models.MROItem, error)
	Update(ctx context.Context, serialNumber string, patch models.MROPatch) (*models.MROItem, error)
	Delete(ctx context.Context, serialNumber string) error
}

type mroRepository struct {
	client *nexusapi.Client
}

func NewMRORepository(client *nexusapi.Client) MRORepository {
	return &mroRepository{client: client}
}

func (r *mroRepository) GetAll(ctx context.Context, filter models.MROFilter) ([]models.MROItem, error) {
	return r.client.FetchMROItems(ctx, filter)
}

func (r *mroRepository) Create(ctx context.Context, item models.MROItem) (*models.MROItem, error) {
	return r.client.CreateMROItem(ctx, item)
}

func (r *mroRepository) Update(ctx context.Context, serialNumber string, patch models.MROPatch) (*models.MROItem, error) {
	return r.client.UpdateMROItem(ctx, serialNumber, patch)
}

func (r *mroRepository) Delete(ctx context.Context, serialNumber string) error {
	return r.client.DeleteMROItem(ctx, serialNumber)
}
