package profilepg

// Package profilepg reads portal profiles from the hosted Postgres store.
// The session edge only ever reads this table; writes belong to the
// portal's CRUD surface, which is a separate service.

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	apperrors "github.com/campusworks/portal-session/internal/errors"
	"github.com/campusworks/portal-session/internal/ports"
)

// Store implements ports.ProfileStore against the profiles table.
type Store struct {
	pool *pgxpool.Pool
}

var _ ports.ProfileStore = (*Store)(nil)

// NewStore creates a profile store over an existing pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ProfileByUserID returns the profile row paired 1:1 with the provider
// user. A missing row maps to a not-found AppError so the controller can
// distinguish "profile pending" from a failed fetch.
func (s *Store) ProfileByUserID(ctx context.Context, userID string) (domainsession.Profile, error) {
	if userID == "" {
		return domainsession.Profile{}, apperrors.NotFound("profile user ID is required")
	}

	const query = `
		SELECT user_id, full_name, verified, COALESCE(program, ''), COALESCE(student_number, '')
		FROM profiles
		WHERE user_id = $1
	`

	var p domainsession.Profile
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FullName,
		&p.Verified,
		&p.Program,
		&p.StudentNumber,
	)
	if err != nil {
		return domainsession.Profile{}, mapDBError(err, userID)
	}
	return p, nil
}

// mapDBError translates pgx errors into the application taxonomy.
func mapDBError(err error, userID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(fmt.Sprintf("profile %s not found", userID))
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.Wrap(err, apperrors.ErrCodeTransport, "profile query interrupted")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return apperrors.Wrap(err, apperrors.ErrCodeConflict, "profile constraint violation")
		case pgErr.Code == pgerrcode.InsufficientPrivilege:
			return apperrors.Wrap(err, apperrors.ErrCodeAuthorization, "profile access denied")
		case pgerrcode.IsConnectionException(pgErr.Code):
			return apperrors.Wrap(err, apperrors.ErrCodeTransport, "database connection failed")
		}
	}

	return apperrors.Wrap(err, apperrors.ErrCodeUnexpected, "profile query failed")
}
