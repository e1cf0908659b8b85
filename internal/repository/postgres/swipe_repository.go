package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type swipeRepository struct {
	db *sqlx.DB
}

func NewSwipeRepository(db *sqlx.DB) repository.SwipeRepository {
	return &swipeRepository{db: db}
}

func (r *swipeRepository) Create(ctx context.Context, decision *domain.SwipeDecision) error {
	if decision.ID == "" {
		decision.ID = uuid.NewString()
	}
	query := `
		INSERT INTO swipe_decisions (id, actor_id, target_id, direction)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query, decision.ID, decision.ActorID, decision.TargetID, string(decision.Direction)).
		Scan(&decision.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrDecisionExists
	}
	return err
}

func (r *swipeRepository) GetByPair(ctx context.Context, actorID, targetID string) (*domain.SwipeDecision, error) {
	var decision domain.SwipeDecision
	query := `
		SELECT id, actor_id, target_id, direction, created_at
		FROM swipe_decisions WHERE actor_id = $1 AND target_id = $2
	`
	err := r.db.GetContext(ctx, &decision, query, actorID, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSwipeNotFound
		}
		return nil, err
	}
	return &decision, nil
}

func (r *swipeRepository) ListTargetIDsByActor(ctx context.Context, actorID string) ([]string, error) {
	var ids []string
	query := `SELECT target_id FROM swipe_decisions WHERE actor_id = $1`
	err := r.db.SelectContext(ctx, &ids, query, actorID)
	return ids, err
}

func (r *swipeRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM swipe_decisions WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrSwipeNotFound
	}
	return nil
}
