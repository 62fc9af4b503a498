package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	apperrors "github.com/campusworks/portal-session/internal/errors"
	"github.com/campusworks/portal-session/internal/monitor"
	"github.com/campusworks/portal-session/internal/ports"
)

// DefaultIdleTimeout is the inactivity window before an automatic
// sign-out.
const DefaultIdleTimeout = 60 * time.Minute

// DefaultRecoveryPaths are the two password-recovery routes the guard
// watches. A live session navigating to either is eagerly signed out so
// the recovery flow is never reachable by an authenticated principal.
var DefaultRecoveryPaths = []string{"/reset-password", "/update-password"}

// Shell tells the caller which surface to render for the current
// snapshot.
type Shell string

const (
	ShellLanding Shell = "landing"
	ShellAuth    Shell = "auth"
	ShellStudent Shell = "student"
	ShellAdmin   Shell = "admin"
)

// ControllerOptions groups dependencies for Controller.
type ControllerOptions struct {
	Boundary ports.IdentityBoundary
	Profiles ports.ProfileStore
	Roles    ports.RoleMapper

	// IdleTimeout defaults to DefaultIdleTimeout when zero.
	IdleTimeout time.Duration
	// VisibilityDebounce defaults to monitor.DefaultVisibilityDebounce
	// when zero.
	VisibilityDebounce time.Duration
	// RecoveryPaths defaults to DefaultRecoveryPaths when empty.
	RecoveryPaths []string

	Logger *slog.Logger
}

// Controller is the single authority on "who is logged in right now". It
// reconciles the mount-time refresh, visibility-triggered revalidation,
// idle-triggered sign-out, and recovery-route forced sign-outs into one
// wholesale-replaced snapshot. Only the controller writes the snapshot;
// readers never observe a torn identity/profile pairing.
type Controller struct {
	boundary ports.IdentityBoundary
	profiles ports.ProfileStore
	roles    ports.RoleMapper
	logger   *slog.Logger

	idle *monitor.IdleMonitor
	vis  *monitor.VisibilityMonitor

	refreshGroup singleflight.Group

	recovery map[string]bool

	mu       sync.Mutex
	snapshot domainsession.Snapshot
	subs     map[int]chan domainsession.Snapshot
	nextSub  int
	started  bool
	stopped  bool
	// gen counts sign-outs; a refresh may only publish a resolution that
	// started in the current generation.
	gen uint64

	// ready is closed once the unconditional mount-time refresh has
	// settled, so the route guard never runs against an unresolved
	// snapshot.
	ready     chan struct{}
	readyOnce sync.Once
}

// NewController constructs a Controller. Start must be called before the
// monitors are live.
func NewController(opts ControllerOptions) (*Controller, error) {
	if opts.Boundary == nil {
		return nil, errors.New("session controller: Boundary is required")
	}
	if opts.Profiles == nil {
		return nil, errors.New("session controller: Profiles is required")
	}
	if opts.Roles == nil {
		return nil, errors.New("session controller: Roles is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "session_controller")

	idleTimeout := opts.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}

	paths := opts.RecoveryPaths
	if len(paths) == 0 {
		paths = DefaultRecoveryPaths
	}
	recovery := make(map[string]bool, len(paths))
	for _, p := range paths {
		recovery[p] = true
	}

	c := &Controller{
		boundary: opts.Boundary,
		profiles: opts.Profiles,
		roles:    opts.Roles,
		logger:   logger,
		recovery: recovery,
		subs:     make(map[int]chan domainsession.Snapshot),
		ready:    make(chan struct{}),
	}

	c.idle = monitor.NewIdleMonitor(idleTimeout, c.onIdle)
	c.vis = monitor.NewVisibilityMonitor(opts.VisibilityDebounce, func(ctx context.Context) error {
		c.Refresh(ctx)
		return nil
	}, logger)

	return c, nil
}

// Start runs the unconditional mount-time refresh, then arms the idle and
// visibility monitors. The refresh completes (success or fail-closed)
// before Start returns, so guard decisions never race the initial
// resolution.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	c.Refresh(ctx)
	c.readyOnce.Do(func() { close(c.ready) })
	c.idle.Start()
}

// Stop detaches both monitors and closes all subscriptions. Idempotent.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	subs := c.subs
	c.subs = make(map[int]chan domainsession.Snapshot)
	c.mu.Unlock()

	c.idle.Stop()
	c.vis.Stop()
	for _, ch := range subs {
		close(ch)
	}
}

// Snapshot returns the current session snapshot.
func (c *Controller) Snapshot() domainsession.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Subscribe registers for snapshot replacements. The channel carries the
// latest snapshot only; a slow consumer sees intermediate values dropped,
// never a stale one delivered late. The returned cancel func is
// idempotent.
func (c *Controller) Subscribe() (<-chan domainsession.Snapshot, func()) {
	ch := make(chan domainsession.Snapshot, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			if _, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(ch)
			}
			c.mu.Unlock()
		})
	}
	return ch, cancel
}

// publishLocked replaces the snapshot wholesale and broadcasts it.
// Callers hold c.mu.
func (c *Controller) publishLocked(snap domainsession.Snapshot) {
	c.snapshot = snap
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			// Replace the undelivered older value with the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// publishIfCurrent publishes snap only when no sign-out has landed since
// gen was read. Reports whether the snapshot was published.
func (c *Controller) publishIfCurrent(gen uint64, snap domainsession.Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.publishLocked(snap)
	return true
}

// Refresh queries the boundary for a current token and, if present, loads
// the paired identity and profile atomically. Any absence or fetch error
// fails closed to the signed-out snapshot; errors are never treated as
// "keep the old session". Overlapping calls are coalesced: a second
// caller awaits the in-flight resolution instead of issuing a duplicate
// boundary query.
func (c *Controller) Refresh(ctx context.Context) domainsession.Snapshot {
	v, _, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		c.mu.Lock()
		gen := c.gen
		c.mu.Unlock()

		snap := c.resolve(ctx)
		if !c.publishIfCurrent(gen, snap) {
			// A sign-out landed while the boundary call was in flight; its
			// signed-out snapshot must not be overwritten by a resolution
			// that began against the old token.
			return domainsession.SignedOut, nil
		}
		return snap, nil
	})
	snap, ok := v.(domainsession.Snapshot)
	if !ok {
		return domainsession.SignedOut
	}
	return snap
}

// resolve performs one boundary query plus profile load and returns the
// resulting snapshot without publishing it.
func (c *Controller) resolve(ctx context.Context) domainsession.Snapshot {
	sess, err := c.boundary.CurrentSession(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "session check failed, treating as signed out", "error", err)
		return domainsession.SignedOut
	}
	if sess == nil {
		return domainsession.SignedOut
	}

	identity := &domainsession.Identity{
		ID:    sess.User.ID,
		Email: sess.User.Email,
		Role:  c.roles.Map(sess.User),
	}

	profile, err := c.profiles.ProfileByUserID(ctx, sess.User.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Account created, profile row still pending: identity-only
			// snapshot is valid during creation.
			return domainsession.Snapshot{Identity: identity}
		}
		c.logger.ErrorContext(ctx, "profile load failed, treating as signed out", "error", err)
		return domainsession.SignedOut
	}

	return domainsession.Snapshot{Identity: identity, Profile: &profile}
}

// SignOut invalidates the boundary session. The local snapshot goes
// signed-out whether or not the boundary call succeeds; a non-nil error
// tells the caller to force a full reload rather than leave an
// authenticated-looking surface with a dead token.
func (c *Controller) SignOut(ctx context.Context) error {
	err := c.boundary.SignOut(ctx)

	// Bump the generation so an in-flight refresh that started before the
	// sign-out can never publish its result over the signed-out snapshot,
	// then drop the coalescing key so later refreshes issue a fresh
	// boundary query instead of joining the stale flight.
	c.mu.Lock()
	c.gen++
	c.publishLocked(domainsession.SignedOut)
	c.mu.Unlock()
	c.refreshGroup.Forget("refresh")

	if err != nil {
		c.logger.ErrorContext(ctx, "boundary sign-out failed, local state cleared anyway", "error", err)
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// GuardPath applies the recovery-route guard: a live session navigating
// to a recovery path is eagerly signed out, closing the session-fixation
// gap. It waits for the mount-time refresh to settle first. Returns true
// when a sign-out was forced.
func (c *Controller) GuardPath(ctx context.Context, path string) (bool, error) {
	select {
	case <-c.ready:
	case <-ctx.Done():
		return false, ctx.Err()
	}

	if !c.recovery[path] {
		return false, nil
	}
	if !c.Snapshot().Authenticated() {
		return false, nil
	}

	c.logger.InfoContext(ctx, "recovery route reached with live session, forcing sign-out", "path", path)
	if err := c.SignOut(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Shell reports which surface the caller should render. inAuthUI is true
// when the auth flow screens are the active navigation target.
func (c *Controller) Shell(inAuthUI bool) Shell {
	snap := c.Snapshot()
	if !snap.Authenticated() {
		if inAuthUI {
			return ShellAuth
		}
		return ShellLanding
	}
	if snap.Identity.Role == domainsession.RoleAdmin {
		return ShellAdmin
	}
	return ShellStudent
}

// RecordActivity feeds a qualifying user-activity signal to the idle
// monitor, restarting the inactivity window.
func (c *Controller) RecordActivity() {
	c.idle.Signal()
}

// RecordVisibility feeds a visibility transition to the visibility
// monitor. Stable hidden→visible edges re-run Refresh.
func (c *Controller) RecordVisibility(visible bool) {
	c.vis.Set(visible)
}

// onIdle handles idle expiry: sign out first, then refresh to settle the
// surface into the signed-out state. The idle callback may run anything;
// recover here so a failing sign-out path cannot take the process down.
func (c *Controller) onIdle() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("idle sign-out panicked", "panic", r)
		}
	}()

	ctx := context.Background()
	c.logger.InfoContext(ctx, "idle window elapsed, signing out")
	if err := c.SignOut(ctx); err != nil {
		c.logger.ErrorContext(ctx, "idle sign-out failed", "error", err)
	}
	c.Refresh(ctx)
	// Re-arm so a user who signs back in gets a fresh window.
	c.idle.Start()
}
