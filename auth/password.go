package auth

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

type StrengthLevel string

const (
	StrengthWeak   StrengthLevel = "weak"
	StrengthMedium StrengthLevel = "medium"
	StrengthStrong StrengthLevel = "strong"
)

const passwordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordStrength scores a password out of five and lists what is missing.
type PasswordStrength struct {
	Score       int
	Level       StrengthLevel
	Suggestions []string
}

func CheckPasswordStrength(password string) PasswordStrength {
	result := PasswordStrength{Level: StrengthWeak}
	if password == "" {
		result.Suggestions = append(result.Suggestions, "enter a password")
		return result
	}

	checks := []struct {
		ok         bool
		suggestion string
	}{
		{len(password) >= 8, "use at least 8 characters"},
		{strings.IndexFunc(password, unicode.IsLower) >= 0, "include a lowercase letter"},
		{strings.IndexFunc(password, unicode.IsUpper) >= 0, "include an uppercase letter"},
		{strings.IndexFunc(password, unicode.IsDigit) >= 0, "include a number"},
		{strings.ContainsAny(password, passwordSpecialChars), "include a special character"},
	}
	for _, c := range checks {
		if c.ok {
			result.Score++
		} else {
			result.Suggestions = append(result.Suggestions, c.suggestion)
		}
	}

	switch {
	case result.Score >= 4:
		result.Level = StrengthStrong
	case result.Score >= 3:
		result.Level = StrengthMedium
	}
	return result
}
