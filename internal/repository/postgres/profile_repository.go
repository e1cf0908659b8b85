package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gdugdh24/partnerfinder/internal/domain"
	"github.com/gdugdh24/partnerfinder/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const profileColumns = `id, display_name, photo_url, bio, location, phone, birth_date,
		latitude, longitude, interests, expertise, gender,
		is_active, is_verified, is_visible, created_at, updated_at`

type profileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.DisplayName, &p.PhotoURL, &p.Bio, &p.Location, &p.Phone, &p.BirthDate,
		&p.Latitude, &p.Longitude, pq.Array(&p.Interests), &p.Expertise, &p.Gender,
		&p.IsActive, &p.IsVerified, &p.IsVisible, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			id, display_name, photo_url, bio, location, phone, birth_date,
			latitude, longitude, interests, expertise, gender,
			is_active, is_verified, is_visible
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.ID, profile.DisplayName, profile.PhotoURL, profile.Bio, profile.Location,
		profile.Phone, profile.BirthDate, profile.Latitude, profile.Longitude,
		pq.Array(profile.Interests), profile.Expertise, profile.Gender,
		profile.IsActive, profile.IsVerified, profile.IsVisible,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	if isUniqueViolation(err) {
		return domain.ErrProfileAlreadyExists
	}
	return err
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	query := `
		UPDATE profiles
		SET display_name = $1, photo_url = $2, bio = $3, location = $4, phone = $5,
		    birth_date = $6, latitude = $7, longitude = $8, interests = $9,
		    expertise = $10, gender = $11, is_active = $12, is_verified = $13,
		    is_visible = $14, updated_at = CURRENT_TIMESTAMP
		WHERE id = $15
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(
		ctx, query,
		profile.DisplayName, profile.PhotoURL, profile.Bio, profile.Location, profile.Phone,
		profile.BirthDate, profile.Latitude, profile.Longitude, pq.Array(profile.Interests),
		profile.Expertise, profile.Gender, profile.IsActive, profile.IsVerified,
		profile.IsVisible, profile.ID,
	).Scan(&profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProfileNotFound
	}
	return err
}

func (r *profileRepository) ListVisible(ctx context.Context) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE is_visible = true ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
