package hostedauth

// Package hostedauth implements the IdentityBoundary against the hosted
// identity service's REST API (password grant, signup with emailed OTP,
// recovery dispatch). Raw provider error messages are passed through
// unchanged; classification happens in the flow layer.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/campusworks/portal-session/internal/ports"
)

// ClientConfig holds configuration for the hosted auth client.
type ClientConfig struct {
	// BaseURL is the root of the identity API, e.g.
	// https://project.identity.example.com/auth/v1
	BaseURL string
	// APIKey is sent on every request as the provider's apikey header.
	APIKey string
	// HTTPClient is optional and defaults to a 30s-timeout client.
	HTTPClient *http.Client
}

// Client implements ports.IdentityBoundary. It keeps the current provider
// token pair in memory as an oauth2.Token so expiry bookkeeping and
// refresh reuse the standard semantics.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu    sync.Mutex
	token *oauth2.Token
	user  ports.ProviderUser
}

var _ ports.IdentityBoundary = (*Client)(nil)

// NewClient creates a hosted auth client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("hosted auth: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("hosted auth: parse base URL: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("hosted auth: API key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

// wire shapes for the provider API

type userJSON struct {
	ID       string          `json:"id"`
	Email    string          `json:"email"`
	Metadata json.RawMessage `json:"app_metadata"`
	UserMeta json.RawMessage `json:"user_metadata"`
}

type sessionJSON struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         *userJSON `json:"user"`
}

type apiError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e apiError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// mergedMetadata folds app and user metadata into one raw object so role
// mappers can address either with a single expression.
func (u *userJSON) mergedMetadata() json.RawMessage {
	merged := map[string]json.RawMessage{}
	if len(u.Metadata) > 0 {
		merged["app_metadata"] = u.Metadata
	}
	if len(u.UserMeta) > 0 {
		merged["user_metadata"] = u.UserMeta
	}
	if len(merged) == 0 {
		return nil
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return nil
	}
	return out
}

func (u *userJSON) toPort() ports.ProviderUser {
	return ports.ProviderUser{
		ID:       u.ID,
		Email:    u.Email,
		Metadata: u.mergedMetadata(),
	}
}

// do posts a JSON body and decodes the response. Non-2xx responses come
// back as errors carrying the provider's message verbatim. Network
// failures are labeled so downstream classification lands on the
// transport category.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if tok := c.currentToken(); tok != nil && tok.AccessToken != "" {
		tok.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		if msg := apiErr.text(); msg != "" {
			return errors.New(msg)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return errors.New("rate limit exceeded")
		}
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) currentToken() *oauth2.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// adopt stores the provider session locally and returns the port shape.
func (c *Client) adopt(sess *sessionJSON) *ports.ProviderSession {
	expiry := time.Now().Add(time.Duration(sess.ExpiresIn) * time.Second)
	tok := &oauth2.Token{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       expiry,
	}

	var user ports.ProviderUser
	if sess.User != nil {
		user = sess.User.toPort()
	}

	c.mu.Lock()
	c.token = tok
	c.user = user
	c.mu.Unlock()

	return &ports.ProviderSession{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiry,
		User:         user,
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.ProviderSession, error) {
	var sess sessionJSON
	err := c.do(ctx, http.MethodPost, "/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	}, &sess)
	if err != nil {
		return nil, err
	}
	if sess.AccessToken == "" || sess.User == nil {
		return nil, errors.New("sign-in response missing session")
	}
	return c.adopt(&sess), nil
}

func (c *Client) SignUp(ctx context.Context, email, fullName, password string) (*ports.SignUpResult, error) {
	// The provider returns a bare user object when email confirmation is
	// pending and a full session when autoconfirm is on; decode both.
	var raw struct {
		sessionJSON
		ID string `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/signup", map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"full_name": fullName},
	}, &raw)
	if err != nil {
		return nil, err
	}

	if raw.AccessToken != "" && raw.User != nil {
		sess := c.adopt(&raw.sessionJSON)
		user := sess.User
		return &ports.SignUpResult{User: &user, Session: sess}, nil
	}
	if raw.ID != "" {
		return &ports.SignUpResult{
			User: &ports.ProviderUser{ID: raw.ID, Email: email},
		}, nil
	}
	// Neither a session nor a pending user: malformed, surface as-is and
	// let the flow treat it as unexpected.
	return &ports.SignUpResult{}, nil
}

func (c *Client) VerifyOTP(ctx context.Context, email, code string, purpose ports.OTPPurpose) (*ports.ProviderSession, error) {
	var sess sessionJSON
	err := c.do(ctx, http.MethodPost, "/verify", map[string]string{
		"type":  string(purpose),
		"email": email,
		"token": code,
	}, &sess)
	if err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		return nil, errors.New("otp expired or invalid")
	}
	return c.adopt(&sess), nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/otp", map[string]any{
		"email":              email,
		"create_user":        false,
		"email_confirmation": true,
	}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/recover", map[string]string{"email": email}, nil)
}

func (c *Client) SetPassword(ctx context.Context, newPassword string) error {
	if tok := c.currentToken(); tok == nil || tok.AccessToken == "" {
		return errors.New("not authenticated")
	}
	return c.do(ctx, http.MethodPut, "/user", map[string]string{"password": newPassword}, nil)
}

func (c *Client) CurrentSession(ctx context.Context) (*ports.ProviderSession, error) {
	c.mu.Lock()
	tok := c.token
	user := c.user
	c.mu.Unlock()

	if tok == nil {
		return nil, nil
	}
	if tok.Valid() {
		return &ports.ProviderSession{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresAt:    tok.Expiry,
			User:         user,
		}, nil
	}
	if tok.RefreshToken == "" {
		c.clear()
		return nil, nil
	}

	// Access token expired: exchange the refresh token.
	var sess sessionJSON
	err := c.do(ctx, http.MethodPost, "/token?grant_type=refresh_token", map[string]string{
		"refresh_token": tok.RefreshToken,
	}, &sess)
	if err != nil {
		return nil, err
	}
	if sess.AccessToken == "" {
		c.clear()
		return nil, nil
	}
	if sess.User == nil {
		// Some deployments omit the user on refresh; keep the cached one.
		refreshed := c.adopt(&sess)
		refreshed.User = user
		c.mu.Lock()
		c.user = user
		c.mu.Unlock()
		return refreshed, nil
	}
	return c.adopt(&sess), nil
}

func (c *Client) SignOut(ctx context.Context) error {
	tok := c.currentToken()
	if tok == nil || tok.AccessToken == "" {
		c.clear()
		return nil
	}
	// Local state clears regardless of the outcome; the caller decides
	// how to surface a failed revocation.
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	c.clear()
	return err
}

func (c *Client) clear() {
	c.mu.Lock()
	c.token = nil
	c.user = ports.ProviderUser{}
	c.mu.Unlock()
}
