package redis

// Package redis provides the Redis-backed token store for the session
// edge. Provider tokens never reach the browser; the cookie carries only
// the opaque record ID this store is keyed by.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	apperrors "github.com/campusworks/portal-session/internal/errors"
)

// SessionStore is a Redis-based token record store for production use.
// TTL follows the provider token expiry, so abandoned records vanish on
// their own.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a new Redis-based token store.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: "portal:session:",
	}
}

// NewSessionStoreWithPrefix creates a token store with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: prefix,
	}
}

func (s *SessionStore) Save(ctx context.Context, rec domainsession.TokenRecord) error {
	if rec.ID == "" {
		return errors.New("token record ID cannot be empty")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal token record: %w", err)
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return errors.New("token record is expired")
	}

	return s.client.Set(ctx, s.prefix+rec.ID, data, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (domainsession.TokenRecord, error) {
	if id == "" {
		return domainsession.TokenRecord{}, apperrors.NotFound("session record not found")
	}

	data, err := s.client.Get(ctx, s.prefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainsession.TokenRecord{}, apperrors.NotFound("session record not found")
		}
		return domainsession.TokenRecord{}, apperrors.Wrap(err, apperrors.ErrCodeTransport, "redis get")
	}

	var rec domainsession.TokenRecord
	if unmarshalErr := json.Unmarshal([]byte(data), &rec); unmarshalErr != nil {
		return domainsession.TokenRecord{}, fmt.Errorf("unmarshal token record: %w", unmarshalErr)
	}

	// Redis TTL normally evicts these; covers clock skew between writers.
	if time.Now().After(rec.ExpiresAt) {
		if deleteErr := s.Delete(ctx, id); deleteErr != nil {
			return domainsession.TokenRecord{}, fmt.Errorf("cleanup expired record: %w", deleteErr)
		}
		return domainsession.TokenRecord{}, apperrors.NotFound("session record not found")
	}

	return rec, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil // Nothing to delete
	}
	return s.client.Del(ctx, s.prefix+id).Err()
}
