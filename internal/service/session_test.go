package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	mocks "github.com/campusworks/portal-session/internal/mocks/auth"
	"github.com/campusworks/portal-session/internal/ports"
)

func testProfile() domainsession.Profile {
	return domainsession.Profile{
		UserID:        "mock-user-1",
		FullName:      "Mock User",
		Verified:      true,
		Program:       "Computer Science",
		StudentNumber: "S-1001",
	}
}

type controllerFixture struct {
	boundary *mocks.MockBoundary
	profiles *mocks.MemoryProfileStore
	ctrl     *Controller
}

func newControllerFixture(t *testing.T, opts ControllerOptions) *controllerFixture {
	t.Helper()
	f := &controllerFixture{
		boundary: mocks.NewMockBoundary(),
		profiles: mocks.NewMemoryProfileStore(),
	}
	f.profiles.Put(testProfile())

	if opts.Boundary == nil {
		opts.Boundary = f.boundary
	}
	if opts.Profiles == nil {
		opts.Profiles = f.profiles
	}
	if opts.Roles == nil {
		opts.Roles = mocks.MetadataRoleMapper{}
	}

	ctrl, err := NewController(opts)
	require.NoError(t, err)
	f.ctrl = ctrl
	t.Cleanup(ctrl.Stop)
	return f
}

func TestNewController_RequiresDependencies(t *testing.T) {
	boundary := mocks.NewMockBoundary()
	profiles := mocks.NewMemoryProfileStore()
	roles := mocks.MetadataRoleMapper{}

	_, err := NewController(ControllerOptions{Profiles: profiles, Roles: roles})
	assert.Error(t, err)
	_, err = NewController(ControllerOptions{Boundary: boundary, Roles: roles})
	assert.Error(t, err)
	_, err = NewController(ControllerOptions{Boundary: boundary, Profiles: profiles})
	assert.Error(t, err)
}

func TestController_StartResolvesSignedOut(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	f.ctrl.Start(context.Background())

	snap := f.ctrl.Snapshot()
	assert.False(t, snap.Authenticated())
	assert.Equal(t, 1, f.boundary.Calls("CurrentSession"))
}

func TestController_RefreshResolvesFullSnapshot(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)

	snap := f.ctrl.Refresh(context.Background())
	require.True(t, snap.Authenticated())
	assert.Equal(t, "mock-user-1", snap.Identity.ID)
	assert.Equal(t, domainsession.RoleStudent, snap.Identity.Role)
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "Mock User", snap.Profile.FullName)
}

func TestController_RefreshFailsClosedOnBoundaryError(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	f.boundary.CurrentSessionFunc = func(context.Context) (*ports.ProviderSession, error) {
		return nil, errors.New("network error: identity service unreachable")
	}

	snap := f.ctrl.Refresh(context.Background())
	assert.False(t, snap.Authenticated(), "errors never mean keep the old session")
}

func TestController_RefreshFailsClosedReplacesLiveSession(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	require.True(t, f.ctrl.Refresh(context.Background()).Authenticated())

	f.boundary.CurrentSessionFunc = func(context.Context) (*ports.ProviderSession, error) {
		return nil, errors.New("boom")
	}
	assert.False(t, f.ctrl.Refresh(context.Background()).Authenticated())
	assert.False(t, f.ctrl.Snapshot().Authenticated())
}

func TestController_MissingProfileYieldsIdentityOnlySnapshot(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{Profiles: mocks.NewMemoryProfileStore()})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)

	snap := f.ctrl.Refresh(context.Background())
	require.True(t, snap.Authenticated())
	assert.Nil(t, snap.Profile)
}

func TestController_ProfileErrorFailsClosed(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{Profiles: failingProfileStore{}})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)

	snap := f.ctrl.Refresh(context.Background())
	assert.False(t, snap.Authenticated())
}

type failingProfileStore struct{}

func (failingProfileStore) ProfileByUserID(context.Context, string) (domainsession.Profile, error) {
	return domainsession.Profile{}, errors.New("profiles database unavailable")
}

func TestController_RefreshCoalescesConcurrentCalls(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	f.boundary.CurrentSessionFunc = func(context.Context) (*ports.ProviderSession, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return nil, nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([]domainsession.Snapshot, callers)
	wg.Add(callers)
	for i := range callers {
		go func() {
			defer wg.Done()
			results[i] = f.ctrl.Refresh(context.Background())
		}()
	}

	<-entered
	// All callers are now either queued on the in-flight resolution or
	// about to join it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, f.boundary.Calls("CurrentSession"), "overlapping refreshes share one boundary query")
	for _, snap := range results {
		assert.False(t, snap.Authenticated())
	}
}

func TestController_SignOutClearsLocalStateEvenOnError(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	require.True(t, f.ctrl.Refresh(context.Background()).Authenticated())

	f.boundary.SignOutFunc = func(context.Context) error {
		return errors.New("network error: sign-out did not reach the provider")
	}
	err = f.ctrl.SignOut(context.Background())
	assert.Error(t, err, "caller must be told to force a reload")
	assert.False(t, f.ctrl.Snapshot().Authenticated())
}

func TestController_SignOutThenRefreshStaysSignedOut(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	require.True(t, f.ctrl.Refresh(context.Background()).Authenticated())

	require.NoError(t, f.ctrl.SignOut(context.Background()))
	snap := f.ctrl.Refresh(context.Background())
	assert.False(t, snap.Authenticated())
}

func TestController_SignOutDuringInFlightRefreshStaysSignedOut(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	var calls atomic.Int64
	f.boundary.CurrentSessionFunc = func(context.Context) (*ports.ProviderSession, error) {
		n := calls.Add(1)
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		if n == 1 {
			// The resolution that started before the sign-out still sees
			// the old live session.
			return &ports.ProviderSession{
				AccessToken: "stale-access-token",
				ExpiresAt:   time.Now().Add(time.Hour),
				User:        f.boundary.DefaultUser,
			}, nil
		}
		return nil, nil
	}

	var wg sync.WaitGroup
	var first, second domainsession.Snapshot

	wg.Add(1)
	go func() {
		defer wg.Done()
		first = f.ctrl.Refresh(context.Background())
	}()
	<-entered

	require.NoError(t, f.ctrl.SignOut(context.Background()))
	require.False(t, f.ctrl.Snapshot().Authenticated())

	wg.Add(1)
	go func() {
		defer wg.Done()
		second = f.ctrl.Refresh(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.False(t, first.Authenticated(), "the pre-sign-out resolution must not surface a live session")
	assert.False(t, second.Authenticated())
	assert.False(t, f.ctrl.Snapshot().Authenticated(),
		"a resolution that began before the sign-out must never overwrite the signed-out snapshot")
}

func TestController_SubscribeReceivesReplacement(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	ch, cancel := f.ctrl.Subscribe()
	defer cancel()

	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	f.ctrl.Refresh(context.Background())

	select {
	case snap := <-ch:
		assert.True(t, snap.Authenticated())
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not receive the replaced snapshot")
	}
}

func TestController_SubscribeLatestWins(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	ch, cancel := f.ctrl.Subscribe()
	defer cancel()

	// Two replacements without the subscriber draining: the channel must
	// hold the latest, not the first.
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	f.ctrl.Refresh(context.Background())
	require.NoError(t, f.ctrl.SignOut(context.Background()))

	select {
	case snap := <-ch:
		assert.False(t, snap.Authenticated())
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not receive a snapshot")
	}
}

func TestController_SubscribeCancelIsIdempotent(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	_, cancel := f.ctrl.Subscribe()
	cancel()
	cancel()
}

func TestController_GuardPathForcesSignOutOnRecoveryRoute(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	f.ctrl.Start(context.Background())
	require.True(t, f.ctrl.Snapshot().Authenticated())

	forced, err := f.ctrl.GuardPath(context.Background(), "/reset-password")
	require.NoError(t, err)
	assert.True(t, forced)
	assert.False(t, f.ctrl.Snapshot().Authenticated())
	assert.Equal(t, 1, f.boundary.Calls("SignOut"))
}

func TestController_GuardPathIgnoresOtherRoutes(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	f.ctrl.Start(context.Background())

	forced, err := f.ctrl.GuardPath(context.Background(), "/dashboard")
	require.NoError(t, err)
	assert.False(t, forced)
	assert.True(t, f.ctrl.Snapshot().Authenticated())
}

func TestController_GuardPathNoopWhenSignedOut(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	f.ctrl.Start(context.Background())

	forced, err := f.ctrl.GuardPath(context.Background(), "/update-password")
	require.NoError(t, err)
	assert.False(t, forced)
	assert.Equal(t, 0, f.boundary.Calls("SignOut"))
}

func TestController_GuardPathWaitsForInitialRefresh(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	// Start never ran; the guard must not decide on an unresolved
	// snapshot.
	_, err := f.ctrl.GuardPath(ctx, "/reset-password")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestController_ShellDecision(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})

	assert.Equal(t, ShellLanding, f.ctrl.Shell(false))
	assert.Equal(t, ShellAuth, f.ctrl.Shell(true))

	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	f.ctrl.Refresh(context.Background())
	assert.Equal(t, ShellStudent, f.ctrl.Shell(false))
	assert.Equal(t, ShellStudent, f.ctrl.Shell(true), "a live session outranks the auth screens")
}

func TestController_ShellAdmin(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	meta, err := json.Marshal(map[string]any{"app_metadata": map[string]string{"role": "admin"}})
	require.NoError(t, err)
	f.boundary.DefaultUser.Metadata = meta

	_, err = f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	f.ctrl.Refresh(context.Background())
	assert.Equal(t, ShellAdmin, f.ctrl.Shell(false))
}

func TestController_IdleSignsOutAndSettles(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{IdleTimeout: 80 * time.Millisecond})
	_, err := f.boundary.SignIn(context.Background(), "mock.user@example.com", "Passw0rd!")
	require.NoError(t, err)
	f.ctrl.Start(context.Background())
	require.True(t, f.ctrl.Snapshot().Authenticated())

	// Activity inside the window holds the session open.
	time.Sleep(40 * time.Millisecond)
	f.ctrl.RecordActivity()
	time.Sleep(40 * time.Millisecond)
	assert.True(t, f.ctrl.Snapshot().Authenticated())

	assert.Eventually(t, func() bool {
		return !f.ctrl.Snapshot().Authenticated() && f.boundary.Calls("SignOut") == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestController_VisibilityEdgeTriggersRefresh(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{VisibilityDebounce: 20 * time.Millisecond})
	f.ctrl.Start(context.Background())
	before := f.boundary.Calls("CurrentSession")

	f.ctrl.RecordVisibility(false)
	f.ctrl.RecordVisibility(true)

	assert.Eventually(t, func() bool {
		return f.boundary.Calls("CurrentSession") == before+1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestController_StopIsIdempotent(t *testing.T) {
	f := newControllerFixture(t, ControllerOptions{})
	f.ctrl.Start(context.Background())
	f.ctrl.Stop()
	f.ctrl.Stop()
}
