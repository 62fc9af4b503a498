package authroles

import (
	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	"github.com/campusworks/portal-session/internal/ports"
)

// StaticRoleMapper assigns roles by simple email membership rules. Suited
// to dev mode and tests where the provider metadata carries no role claim.
type StaticRoleMapper struct {
	AdminEmails []string
	Default     domainsession.Role
}

func (m StaticRoleMapper) Map(user ports.ProviderUser) domainsession.Role {
	for _, e := range m.AdminEmails {
		if e != "" && e == user.Email {
			return domainsession.RoleAdmin
		}
	}
	if m.Default.Valid() {
		return m.Default
	}
	return domainsession.RoleStudent
}
