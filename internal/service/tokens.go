package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	"github.com/campusworks/portal-session/internal/ports"
)

// TokenRecorder decorates an IdentityBoundary and mirrors the provider's
// token pair into the session store whenever a live session passes
// through. The boundary stays authoritative; the stored record exists so
// the edge can resume bookkeeping after a restart. Store failures are
// logged and never surfaced to the caller.
type TokenRecorder struct {
	ports.IdentityBoundary

	store       ports.SessionStore
	fallbackTTL time.Duration
	logger      *slog.Logger

	mu       sync.Mutex
	recordID string
}

// DefaultTokenTTL bounds stored records when the provider session carries
// no explicit expiry.
const DefaultTokenTTL = 8 * time.Hour

// NewTokenRecorder wraps boundary with token record mirroring. fallbackTTL
// applies to sessions without an expiry; zero or negative means
// DefaultTokenTTL.
func NewTokenRecorder(boundary ports.IdentityBoundary, store ports.SessionStore, fallbackTTL time.Duration, logger *slog.Logger) *TokenRecorder {
	if fallbackTTL <= 0 {
		fallbackTTL = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenRecorder{
		IdentityBoundary: boundary,
		store:            store,
		fallbackTTL:      fallbackTTL,
		logger:           logger.With("component", "token_recorder"),
	}
}

// RecordID returns the current token record's store key, or empty when no
// session has been recorded.
func (t *TokenRecorder) RecordID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.recordID
}

func (t *TokenRecorder) record(ctx context.Context, sess *ports.ProviderSession) {
	if sess == nil {
		return
	}

	t.mu.Lock()
	if t.recordID == "" {
		t.recordID = uuid.NewString()
	}
	id := t.recordID
	t.mu.Unlock()

	expiresAt := sess.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(t.fallbackTTL)
	}
	rec := domainsession.TokenRecord{
		ID:           id,
		UserID:       sess.User.ID,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    expiresAt,
	}
	if err := t.store.Save(ctx, rec); err != nil {
		t.logger.WarnContext(ctx, "token record save failed", "error", err)
	}
}

func (t *TokenRecorder) discard(ctx context.Context) {
	t.mu.Lock()
	id := t.recordID
	t.recordID = ""
	t.mu.Unlock()
	if id == "" {
		return
	}
	if err := t.store.Delete(ctx, id); err != nil {
		t.logger.WarnContext(ctx, "token record delete failed", "error", err)
	}
}

func (t *TokenRecorder) SignIn(ctx context.Context, email, password string) (*ports.ProviderSession, error) {
	sess, err := t.IdentityBoundary.SignIn(ctx, email, password)
	if err == nil {
		t.record(ctx, sess)
	}
	return sess, err
}

func (t *TokenRecorder) VerifyOTP(ctx context.Context, email, code string, purpose ports.OTPPurpose) (*ports.ProviderSession, error) {
	sess, err := t.IdentityBoundary.VerifyOTP(ctx, email, code, purpose)
	if err == nil {
		t.record(ctx, sess)
	}
	return sess, err
}

func (t *TokenRecorder) CurrentSession(ctx context.Context) (*ports.ProviderSession, error) {
	sess, err := t.IdentityBoundary.CurrentSession(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		t.discard(ctx)
		return nil, nil
	}
	t.record(ctx, sess)
	return sess, nil
}

func (t *TokenRecorder) SignOut(ctx context.Context) error {
	err := t.IdentityBoundary.SignOut(ctx)
	// The boundary session is gone (or unreachable) either way; a stale
	// record must not outlive it.
	t.discard(ctx)
	return err
}
