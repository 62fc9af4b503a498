package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []PasswordViolation
	}{
		{
			name:     "acceptable password",
			password: "Abc123!x",
			want:     nil,
		},
		{
			name:     "lowercase with digits",
			password: "abc123",
			want:     []PasswordViolation{ViolationUppercase, ViolationSpecialChar},
		},
		{
			name:     "too short misses everything else too",
			password: "ab",
			want:     []PasswordViolation{ViolationMinLength, ViolationUppercase, ViolationDigit, ViolationSpecialChar},
		},
		{
			name:     "no digit",
			password: "Abcdef!",
			want:     []PasswordViolation{ViolationDigit},
		},
		{
			name:     "no special char",
			password: "Abcdef1",
			want:     []PasswordViolation{ViolationSpecialChar},
		},
		{
			name:     "exactly six characters passes length",
			password: "Abc12!",
			want:     nil,
		},
		{
			name:     "empty password",
			password: "",
			want:     []PasswordViolation{ViolationMinLength, ViolationUppercase, ViolationDigit, ViolationSpecialChar},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword(tt.password))
		})
	}
}

func TestCheckPassword_AllSpecialCharsAccepted(t *testing.T) {
	for _, r := range PasswordSpecialChars {
		password := "Abc12" + string(r)
		assert.Empty(t, CheckPassword(password), "special char %q should satisfy the policy", r)
	}
}
