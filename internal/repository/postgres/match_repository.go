package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type matchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *domain.Match) error {
	// Ensure user1_id < user2_id for constraint
	match.User1ID, match.User2ID = domain.OrderedPair(match.User1ID, match.User2ID)
	if match.ID == "" {
		match.ID = uuid.NewString()
	}

	query := `
		INSERT INTO matches (id, user1_id, user2_id, interests)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user1_id, user2_id) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, match.ID, match.User1ID, match.User2ID, pq.Array(match.Interests)).
		Scan(&match.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return domain.ErrMatchExists
	}
	return err
}

func (r *matchRepository) GetByUsers(ctx context.Context, user1ID, user2ID string) (*domain.Match, error) {
	user1ID, user2ID = domain.OrderedPair(user1ID, user2ID)

	var match domain.Match
	query := `SELECT id, user1_id, user2_id, interests, created_at FROM matches WHERE user1_id = $1 AND user2_id = $2`
	err := r.db.QueryRowContext(ctx, query, user1ID, user2ID).
		Scan(&match.ID, &match.User1ID, &match.User2ID, pq.Array(&match.Interests), &match.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMatchNotFound
		}
		return nil, err
	}
	return &match, nil
}

func (r *matchRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Match, error) {
	query := `
		SELECT id, user1_id, user2_id, interests, created_at FROM matches
		WHERE (user1_id = $1 OR user2_id = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*domain.Match
	for rows.Next() {
		var m domain.Match
		if err := rows.Scan(&m.ID, &m.User1ID, &m.User2ID, pq.Array(&m.Interests), &m.CreatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

func (r *matchRepository) MatchedUserIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	query := `
		SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END
		FROM matches
		WHERE user1_id = $1 OR user2_id = $1
	`
	err := r.db.SelectContext(ctx, &ids, query, userID)
	return ids, err
}

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) repository.ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	if len(conversation.Participants) != 2 {
		return domain.ErrInvalidParticipants
	}
	user1ID, user2ID := domain.OrderedPair(conversation.Participants[0], conversation.Participants[1])
	conversation.Participants = []string{user1ID, user2ID}
	if conversation.ID == "" {
		conversation.ID = uuid.NewString()
	}

	query := `
		INSERT INTO conversations (id, match_id, user1_id, user2_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	return r.db.QueryRowContext(ctx, query, conversation.ID, conversation.MatchID, user1ID, user2ID).
		Scan(&conversation.CreatedAt)
}

func (r *conversationRepository) GetByParticipants(ctx context.Context, user1ID, user2ID string) (*domain.Conversation, error) {
	user1ID, user2ID = domain.OrderedPair(user1ID, user2ID)

	conversation := domain.Conversation{Participants: []string{user1ID, user2ID}}
	query := `SELECT id, match_id, created_at FROM conversations WHERE user1_id = $1 AND user2_id = $2`
	err := r.db.QueryRowContext(ctx, query, user1ID, user2ID).
		Scan(&conversation.ID, &conversation.MatchID, &conversation.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}
