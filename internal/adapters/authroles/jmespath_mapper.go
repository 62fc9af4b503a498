package authroles

// Package authroles maps raw provider user payloads to portal roles.

import (
	"encoding/json"
	"fmt"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainsession "github.com/campusworks/portal-session/internal/domain/session"
	"github.com/campusworks/portal-session/internal/ports"
)

// JMESPathMapper extracts the role claim from the provider's raw user
// metadata with a configurable JMESPath expression. Provider metadata
// schemas differ per deployment; the expression keeps the mapping out of
// code.
type JMESPathMapper struct {
	expr     string
	fallback domainsession.Role
}

// NewJMESPathMapper validates the expression up front. An empty fallback
// defaults to student.
func NewJMESPathMapper(expr string, fallback domainsession.Role) (*JMESPathMapper, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("role mapper: expression is required")
	}
	if _, err := jmespath.Compile(expr); err != nil {
		return nil, fmt.Errorf("role mapper: compile %q: %w", expr, err)
	}
	if !fallback.Valid() {
		fallback = domainsession.RoleStudent
	}
	return &JMESPathMapper{expr: expr, fallback: fallback}, nil
}

func (m *JMESPathMapper) Map(user ports.ProviderUser) domainsession.Role {
	if len(user.Metadata) == 0 {
		return m.fallback
	}
	var data any
	if err := json.Unmarshal(user.Metadata, &data); err != nil {
		return m.fallback
	}
	v, err := jmespath.Search(m.expr, data)
	if err != nil {
		return m.fallback
	}
	s, ok := v.(string)
	if !ok {
		return m.fallback
	}
	role := domainsession.Role(strings.ToLower(s))
	if !role.Valid() {
		return m.fallback
	}
	return role
}
