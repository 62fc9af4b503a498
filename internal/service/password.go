package service

import "strings"

// PasswordSpecialChars is the symbol set accepted by the password policy.
const PasswordSpecialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// PasswordViolation names a single failed password policy rule.
type PasswordViolation string

const (
	ViolationMinLength   PasswordViolation = "minLength"
	ViolationUppercase   PasswordViolation = "uppercase"
	ViolationDigit       PasswordViolation = "digit"
	ViolationSpecialChar PasswordViolation = "specialChar"
)

const passwordMinLength = 6

// CheckPassword evaluates the four-rule password policy and returns every
// violated rule. An empty slice means the password is acceptable. The
// check is purely local; no boundary call is made.
func CheckPassword(password string) []PasswordViolation {
	var violations []PasswordViolation

	if len(password) < passwordMinLength {
		violations = append(violations, ViolationMinLength)
	}

	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		violations = append(violations, ViolationUppercase)
	}
	if !hasDigit {
		violations = append(violations, ViolationDigit)
	}
	if !hasSpecial {
		violations = append(violations, ViolationSpecialChar)
	}

	return violations
}
