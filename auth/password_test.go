package auth_test

import (
	"testing"

	"github.com/jrsteele09/go-waterres-client/auth"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	require.NoError(t, auth.ValidatePasswordStrength("Password1"))
	require.Error(t, auth.ValidatePasswordStrength("Pass1"))
	require.Error(t, auth.ValidatePasswordStrength("password1"))
	require.Error(t, auth.ValidatePasswordStrength("PASSWORD1"))
	require.Error(t, auth.ValidatePasswordStrength("Passwordx"))
}

func TestCheckPasswordStrength(t *testing.T) {
	tests := []struct {
		password    string
		score       int
		level       auth.StrengthLevel
		suggestions int
	}{
		{"", 0, auth.StrengthWeak, 1},
		{"abc", 1, auth.StrengthWeak, 4},
		{"abcdefgh1", 3, auth.StrengthMedium, 2},
		{"Abcdefgh1", 4, auth.StrengthStrong, 1},
		{"Abcdefgh1!", 5, auth.StrengthStrong, 0},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got := auth.CheckPasswordStrength(tt.password)
			require.Equal(t, tt.score, got.Score)
			require.Equal(t, tt.level, got.Level)
			require.Len(t, got.Suggestions, tt.suggestions)
		})
	}
}
