package db

import (
	"context"

	"github.com/libascollective/shophub/internal/identity/entity"
	"github.com/libascollective/shophub/internal/pkg/goerror"
)

// ActivateUser flips the user from oldStatus to newStatus. The status guard
// makes concurrent activations idempotent.
func (s *DB) ActivateUser(ctx context.Context, id int64, oldStatus, newStatus entity.UserStatus) (err error) {
	ctx, span := s.startSpan(ctx, "ActivateUser")
	defer func() { s.endSpan(span, err) }()

	const query = `
		UPDATE users
		SET status = $1, updated_by = id, updated_at = now()
		WHERE id = $2 AND status = $3 AND deleted_at IS NULL`

	tag, err := s.conn.Exec(ctx, query, newStatus, id, oldStatus)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
