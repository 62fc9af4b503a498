package session

import "testing"

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleStudent, true},
		{RoleAdmin, true},
		{Role(""), false},
		{Role("superuser"), false},
		{Role("Student"), false},
	}

	for _, tt := range tests {
		if got := tt.role.Valid(); got != tt.want {
			t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestSnapshot_Authenticated(t *testing.T) {
	if SignedOut.Authenticated() {
		t.Error("the signed-out snapshot must never report authenticated")
	}

	snap := Snapshot{Identity: &Identity{ID: "u-1", Email: "u@example.com", Role: RoleStudent}}
	if !snap.Authenticated() {
		t.Error("a snapshot with an identity should report authenticated")
	}
}
