package devauth

// Package devauth provides a simple in-memory IdentityBoundary for local
// development and tests. OTPs are deterministic and logged instead of
// emailed.

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campusworks/portal-session/internal/ports"
)

// Config controls the dev boundary behavior.
type Config struct {
	// SessionDuration defaults to 8h when zero.
	SessionDuration time.Duration
	// FixedOTP, when set, is issued for every account instead of a
	// derived code. Handy for scripted dev flows.
	FixedOTP string
	Logger   *slog.Logger
}

type account struct {
	id       string
	email    string
	fullName string
	password string
	role     string
	verified bool
	otp      string
}

// Provider implements ports.IdentityBoundary against an in-memory account
// map. It reproduces the hosted provider's message catalog so the flow's
// substring classifier behaves identically in dev mode.
type Provider struct {
	sessionDuration time.Duration
	fixedOTP        string
	logger          *slog.Logger

	mu       sync.Mutex
	accounts map[string]*account // keyed by email
	current  *ports.ProviderSession
	otpSeq   int
}

var _ ports.IdentityBoundary = (*Provider)(nil)

// NewProvider constructs an empty dev boundary.
func NewProvider(cfg Config) *Provider {
	dur := cfg.SessionDuration
	if dur == 0 {
		dur = 8 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		sessionDuration: dur,
		fixedOTP:        cfg.FixedOTP,
		logger:          logger.With("component", "devauth"),
		accounts:        make(map[string]*account),
	}
}

// Seed adds a verified account, for wiring dev fixtures.
func (p *Provider) Seed(email, fullName, password, role string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct := &account{
		id:       uuid.NewString(),
		email:    email,
		fullName: fullName,
		password: password,
		role:     role,
		verified: true,
	}
	p.accounts[email] = acct
	return acct.id
}

// LastOTP returns the code most recently issued to the given email, for
// tests and dev scripts.
func (p *Provider) LastOTP(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct, ok := p.accounts[email]; ok {
		return acct.otp
	}
	return ""
}

func (p *Provider) newSessionLocked(acct *account) *ports.ProviderSession {
	meta, _ := json.Marshal(map[string]any{
		"app_metadata": map[string]any{"role": acct.role},
		"full_name":    acct.fullName,
	})
	sess := &ports.ProviderSession{
		AccessToken:  uuid.NewString(),
		RefreshToken: uuid.NewString(),
		ExpiresAt:    time.Now().Add(p.sessionDuration),
		User: ports.ProviderUser{
			ID:       acct.id,
			Email:    acct.email,
			Metadata: meta,
		},
	}
	p.current = sess
	return sess
}

func (p *Provider) issueOTPLocked(acct *account) {
	if p.fixedOTP != "" {
		acct.otp = p.fixedOTP
	} else {
		p.otpSeq++
		acct.otp = fmt.Sprintf("%06d", (p.otpSeq*73459)%1000000)
	}
	p.logger.Info("dev otp issued", "email", acct.email, "otp", acct.otp)
}

func (p *Provider) SignIn(_ context.Context, email, password string) (*ports.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[email]
	if !ok || acct.password != password {
		return nil, fmt.Errorf("invalid login credentials")
	}
	if !acct.verified {
		return nil, fmt.Errorf("email not confirmed")
	}
	return p.newSessionLocked(acct), nil
}

func (p *Provider) SignUp(_ context.Context, email, fullName, password string) (*ports.SignUpResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[email]; ok {
		return nil, fmt.Errorf("user already registered")
	}
	acct := &account{
		id:       uuid.NewString(),
		email:    email,
		fullName: fullName,
		password: password,
		role:     "student",
	}
	p.accounts[email] = acct
	p.issueOTPLocked(acct)

	// No session: verification pending, like the hosted provider.
	return &ports.SignUpResult{
		User: &ports.ProviderUser{ID: acct.id, Email: acct.email},
	}, nil
}

func (p *Provider) VerifyOTP(_ context.Context, email, code string, purpose ports.OTPPurpose) (*ports.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[email]
	if !ok {
		return nil, fmt.Errorf("otp expired or invalid")
	}
	if acct.otp == "" || code != acct.otp {
		return nil, fmt.Errorf("otp expired or invalid")
	}
	acct.otp = ""
	if purpose == ports.OTPPurposeSignup {
		acct.verified = true
	}
	return p.newSessionLocked(acct), nil
}

func (p *Provider) ResendOTP(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[email]
	if !ok {
		return fmt.Errorf("invalid email")
	}
	p.issueOTPLocked(acct)
	return nil
}

func (p *Provider) ResetPassword(_ context.Context, email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	acct, ok := p.accounts[email]
	if !ok {
		// The hosted provider does not reveal whether the email exists.
		return nil
	}
	p.issueOTPLocked(acct)
	return nil
}

func (p *Provider) SetPassword(_ context.Context, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return fmt.Errorf("not authenticated")
	}
	acct, ok := p.accounts[p.current.User.Email]
	if !ok {
		return fmt.Errorf("not authenticated")
	}
	acct.password = newPassword
	return nil
}

func (p *Provider) CurrentSession(_ context.Context) (*ports.ProviderSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil, nil
	}
	if time.Now().After(p.current.ExpiresAt) {
		p.current = nil
		return nil, nil
	}
	return p.current, nil
}

func (p *Provider) SignOut(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = nil
	return nil
}
