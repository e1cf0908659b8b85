package repository

import (
	"context"

	"github.com/gdugdh24/partnerfinder/internal/domain"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	// ListVisible returns every profile with the visibility flag set, in a
	// stable order.
	ListVisible(ctx context.Context) ([]*domain.Profile, error)
}
