package repository

import (
	"context"

	"github.com/gdugdh24/partnerfinder/internal/domain"
)

type MatchRepository interface {
	// Create stores a match for the canonical pair. It returns
	// domain.ErrMatchExists when the pair is already matched.
	Create(ctx context.Context, match *domain.Match) error
	GetByUsers(ctx context.Context, user1ID, user2ID string) (*domain.Match, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Match, error)
	MatchedUserIDs(ctx context.Context, userID string) ([]string, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) error
	GetByParticipants(ctx context.Context, user1ID, user2ID string) (*domain.Conversation, error)
}
