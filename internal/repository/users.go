package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/pickup-sports/internal/apperr"
	"github.com/Shivanand-hulikatti/pickup-sports/internal/model"
)

const userColumns = `id, display_name, email, phone, avatar_url, email_verified, phone_verified, created_at, updated_at`

// UserRepository caches profiles of identities owned by the auth provider.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.DisplayName, &u.Email, &u.Phone, &u.AvatarURL,
		&u.EmailVerified, &u.PhoneVerified, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Upsert creates or replaces the editable profile fields. A verification
// flag survives only while the verified contact detail is unchanged.
func (r *UserRepository) Upsert(ctx context.Context, u *model.User) (*model.User, error) {
	now := time.Now().UTC()
	saved, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users (id, display_name, email, phone, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (id) DO UPDATE SET
			display_name   = EXCLUDED.display_name,
			email          = EXCLUDED.email,
			phone          = EXCLUDED.phone,
			avatar_url     = EXCLUDED.avatar_url,
			email_verified = users.email_verified AND users.email = EXCLUDED.email,
			phone_verified = users.phone_verified AND users.phone = EXCLUDED.phone,
			updated_at     = EXCLUDED.updated_at
		 RETURNING `+userColumns,
		u.ID, u.DisplayName, u.Email, u.Phone, u.AvatarURL, now,
	))
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return saved, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
