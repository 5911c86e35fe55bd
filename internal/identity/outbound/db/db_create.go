package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/libascollective/shophub/internal/identity/entity"
)

// NewRegistration inserts the unverified user and its credential in a single
// transaction.
func (s *DB) NewRegistration(ctx context.Context, user entity.NewUser, passwordHash string) (err error) {
	ctx, span := s.startSpan(ctx, "NewRegistration")
	defer func() { s.endSpan(span, err) }()

	err = pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		const insertUser = `
			INSERT INTO users (id, email, full_name, status, created_by, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := tx.Exec(ctx, insertUser,
			user.ID, user.Email, user.FullName, user.Status, user.CreatedBy, user.UpdatedBy,
		); err != nil {
			return err
		}

		const insertCredential = `
			INSERT INTO user_credentials (user_id, password)
			VALUES ($1, $2)`
		_, err := tx.Exec(ctx, insertCredential, user.ID, passwordHash)
		return err
	})

	return s.mapError(err)
}
