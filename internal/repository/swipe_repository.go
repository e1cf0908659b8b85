package repository

import (
	"context"

	"github.com/gdugdh24/partnerfinder/internal/domain"
)

type SwipeRepository interface {
	Create(ctx context.Context, decision *domain.SwipeDecision) error
	// GetByPair returns domain.ErrSwipeNotFound when actor has not decided
	// on target.
	GetByPair(ctx context.Context, actorID, targetID string) (*domain.SwipeDecision, error)
	ListTargetIDsByActor(ctx context.Context, actorID string) ([]string, error)
	Delete(ctx context.Context, id string) error
}
