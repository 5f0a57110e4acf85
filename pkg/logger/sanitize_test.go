package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{
			name:     "typical address",
			email:    "alice@example.com",
			expected: "a****@*******.com",
		},
		{
			name:     "single char username",
			email:    "a@example.com",
			expected: "a@*******.com",
		},
		{
			name:     "subdomain",
			email:    "bob@mail.example.org",
			expected: "b**@****.*******.org",
		},
		{
			name:     "not an email",
			email:    "not-an-email",
			expected: "[invalid-email]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizedEmail(tt.email))
		})
	}
}

func TestSanitizeQueryString(t *testing.T) {
	assert.True(t, SanitizeQueryString("password=hunter2"))
	assert.True(t, SanitizeQueryString("next=/home&token=abc"))
	assert.False(t, SanitizeQueryString("page=2&sort=title"))
	assert.False(t, SanitizeQueryString(""))
}
