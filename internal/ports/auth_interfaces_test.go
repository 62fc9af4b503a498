package ports_test

import (
	"testing"

	mocks "github.com/campusworks/portal-session/internal/mocks/auth"
	"github.com/campusworks/portal-session/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.IdentityBoundary = (*mocks.MockBoundary)(nil)
	var _ ports.ProfileStore = (*mocks.MemoryProfileStore)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.RoleMapper = (mocks.MetadataRoleMapper{})
}
