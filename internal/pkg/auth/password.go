// internal/pkg/auth/password.go
package auth

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxPasswordLength = 128

// PasswordPolicy holds the checks run before a new password is sent
type PasswordPolicy struct {
	MinLength int
}

// NewPasswordPolicy creates a policy; minLength below one means no minimum
func NewPasswordPolicy(minLength int) *PasswordPolicy {
	return &PasswordPolicy{MinLength: minLength}
}

// ValidatePassword checks the length bounds of password
func (p *PasswordPolicy) ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if p.MinLength > 0 && n < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}
	if n > maxPasswordLength {
		return fmt.Errorf("password must be no more than %d characters long", maxPasswordLength)
	}
	return nil
}

// Blank reports whether any of values is empty after trimming
func Blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
