package auth

// Package auth contains simple hand-written test doubles for the session
// ports. These are lightweight and suitable for unit tests without
// codegen.

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	apperrors "github.com/campusworks/portal-session/internal/errors"
	"github.com/campusworks/portal-session/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.IdentityBoundary = (*MockBoundary)(nil)
	_ ports.ProfileStore     = (*MemoryProfileStore)(nil)
	_ ports.SessionStore     = (*MemorySessionStore)(nil)
	_ ports.RoleMapper       = (MetadataRoleMapper{})
)

// MockBoundary simulates the hosted identity service with overridable
// func fields. The zero value behaves as a signed-out boundary that
// accepts any credentials.
type MockBoundary struct {
	SignInFunc         func(ctx context.Context, email, password string) (*ports.ProviderSession, error)
	SignUpFunc         func(ctx context.Context, email, fullName, password string) (*ports.SignUpResult, error)
	VerifyOTPFunc      func(ctx context.Context, email, code string, purpose ports.OTPPurpose) (*ports.ProviderSession, error)
	ResendOTPFunc      func(ctx context.Context, email string) error
	ResetPasswordFunc  func(ctx context.Context, email string) error
	SetPasswordFunc    func(ctx context.Context, newPassword string) error
	CurrentSessionFunc func(ctx context.Context) (*ports.ProviderSession, error)
	SignOutFunc        func(ctx context.Context) error

	// DefaultUser is returned by the default SignIn/CurrentSession
	// behavior once signed in.
	DefaultUser ports.ProviderUser

	mu        sync.Mutex
	signedIn  bool
	callCount map[string]int
}

// NewMockBoundary creates a MockBoundary with a sensible default user.
func NewMockBoundary() *MockBoundary {
	meta, _ := json.Marshal(map[string]any{"app_metadata": map[string]string{"role": "student"}})
	return &MockBoundary{
		DefaultUser: ports.ProviderUser{
			ID:       "mock-user-1",
			Email:    "mock.user@example.com",
			Metadata: meta,
		},
	}
}

// Calls reports how many times the named method ran.
func (m *MockBoundary) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount[method]
}

func (m *MockBoundary) record(method string) {
	m.mu.Lock()
	if m.callCount == nil {
		m.callCount = make(map[string]int)
	}
	m.callCount[method]++
	m.mu.Unlock()
}

func (m *MockBoundary) defaultSession() *ports.ProviderSession {
	return &ports.ProviderSession{
		AccessToken: "mock-access-token",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        m.DefaultUser,
	}
}

func (m *MockBoundary) SignIn(ctx context.Context, email, password string) (*ports.ProviderSession, error) {
	m.record("SignIn")
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	m.mu.Lock()
	m.signedIn = true
	m.mu.Unlock()
	return m.defaultSession(), nil
}

func (m *MockBoundary) SignUp(ctx context.Context, email, fullName, password string) (*ports.SignUpResult, error) {
	m.record("SignUp")
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, fullName, password)
	}
	return &ports.SignUpResult{
		User: &ports.ProviderUser{ID: "mock-pending-1", Email: email},
	}, nil
}

func (m *MockBoundary) VerifyOTP(ctx context.Context, email, code string, purpose ports.OTPPurpose) (*ports.ProviderSession, error) {
	m.record("VerifyOTP")
	if m.VerifyOTPFunc != nil {
		return m.VerifyOTPFunc(ctx, email, code, purpose)
	}
	m.mu.Lock()
	m.signedIn = true
	m.mu.Unlock()
	return m.defaultSession(), nil
}

func (m *MockBoundary) ResendOTP(ctx context.Context, email string) error {
	m.record("ResendOTP")
	if m.ResendOTPFunc != nil {
		return m.ResendOTPFunc(ctx, email)
	}
	return nil
}

func (m *MockBoundary) ResetPassword(ctx context.Context, email string) error {
	m.record("ResetPassword")
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email)
	}
	return nil
}

func (m *MockBoundary) SetPassword(ctx context.Context, newPassword string) error {
	m.record("SetPassword")
	if m.SetPasswordFunc != nil {
		return m.SetPasswordFunc(ctx, newPassword)
	}
	return nil
}

func (m *MockBoundary) CurrentSession(ctx context.Context) (*ports.ProviderSession, error) {
	m.record("CurrentSession")
	if m.CurrentSessionFunc != nil {
		return m.CurrentSessionFunc(ctx)
	}
	m.mu.Lock()
	signedIn := m.signedIn
	m.mu.Unlock()
	if !signedIn {
		return nil, nil
	}
	return m.defaultSession(), nil
}

func (m *MockBoundary) SignOut(ctx context.Context) error {
	m.record("SignOut")
	m.mu.Lock()
	m.signedIn = false
	m.mu.Unlock()
	if m.SignOutFunc != nil {
		return m.SignOutFunc(ctx)
	}
	return nil
}

// MemoryProfileStore is an in-memory profile store for unit tests.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domainsession.Profile
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]domainsession.Profile)}
}

// Put stores a profile keyed by its user ID.
func (m *MemoryProfileStore) Put(p domainsession.Profile) {
	m.mu.Lock()
	m.profiles[p.UserID] = p
	m.mu.Unlock()
}

func (m *MemoryProfileStore) ProfileByUserID(_ context.Context, userID string) (domainsession.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return domainsession.Profile{}, apperrors.NotFound("profile not found")
	}
	return p, nil
}

// MemorySessionStore is an in-memory token record store for unit tests.
type MemorySessionStore struct {
	mu      sync.Mutex
	records map[string]domainsession.TokenRecord
}

// NewMemorySessionStore creates an empty in-memory token store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{records: make(map[string]domainsession.TokenRecord)}
}

func (m *MemorySessionStore) Save(_ context.Context, rec domainsession.TokenRecord) error {
	if rec.ID == "" {
		return errors.New("token record ID cannot be empty")
	}
	m.mu.Lock()
	m.records[rec.ID] = rec
	m.mu.Unlock()
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainsession.TokenRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return domainsession.TokenRecord{}, apperrors.NotFound("session record not found")
	}
	return rec, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()
	return nil
}

// MetadataRoleMapper reads the role straight from the mock metadata shape
// used across the tests.
type MetadataRoleMapper struct{}

func (MetadataRoleMapper) Map(user ports.ProviderUser) domainsession.Role {
	var meta struct {
		AppMetadata struct {
			Role string `json:"role"`
		} `json:"app_metadata"`
	}
	if err := json.Unmarshal(user.Metadata, &meta); err != nil {
		return domainsession.RoleStudent
	}
	role := domainsession.Role(meta.AppMetadata.Role)
	if !role.Valid() {
		return domainsession.RoleStudent
	}
	return role
}
