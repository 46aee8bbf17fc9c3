package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/aligeramy/somas/internal/model"
)

// fetches a user by ID. Returns nil, sql.ErrNoRows if not found.
func (s *pgStore) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	const q = `
	SELECT id, gym_id, email, name, role, created_at, updated_at
	  FROM users
	 WHERE id = $1;`
	if err := sqlx.GetContext(ctx, s.q, &u, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		log.Error().Err(err).Str("user_id", id.String()).Msg("GetUserByID failed")
		return nil, err
	}
	return &u, nil
}
