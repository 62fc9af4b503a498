package profilepg

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/campusworks/portal-session/internal/errors"
)

func TestMapDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.ErrorCode
	}{
		{
			name: "no rows is not found",
			err:  pgx.ErrNoRows,
			want: apperrors.ErrCodeNotFound,
		},
		{
			name: "deadline is transport",
			err:  context.DeadlineExceeded,
			want: apperrors.ErrCodeTransport,
		},
		{
			name: "cancellation is transport",
			err:  context.Canceled,
			want: apperrors.ErrCodeTransport,
		},
		{
			name: "unique violation is conflict",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			want: apperrors.ErrCodeConflict,
		},
		{
			name: "foreign key violation is conflict",
			err:  &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			want: apperrors.ErrCodeConflict,
		},
		{
			name: "insufficient privilege is authorization",
			err:  &pgconn.PgError{Code: pgerrcode.InsufficientPrivilege},
			want: apperrors.ErrCodeAuthorization,
		},
		{
			name: "connection failure is transport",
			err:  &pgconn.PgError{Code: pgerrcode.ConnectionFailure},
			want: apperrors.ErrCodeTransport,
		},
		{
			name: "other pg errors are unexpected",
			err:  &pgconn.PgError{Code: pgerrcode.SyntaxError},
			want: apperrors.ErrCodeUnexpected,
		},
		{
			name: "plain error is unexpected",
			err:  errors.New("boom"),
			want: apperrors.ErrCodeUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapDBError(tt.err, "user-1")
			assert.Equal(t, tt.want, apperrors.GetCode(got))
			if !errors.Is(tt.err, pgx.ErrNoRows) {
				assert.ErrorIs(t, got, tt.err, "cause stays reachable through the wrap")
			}
		})
	}
}

func TestProfileByUserID_EmptyID(t *testing.T) {
	s := NewStore(nil)
	_, err := s.ProfileByUserID(context.Background(), "")
	assert.True(t, apperrors.IsNotFound(err))
}
