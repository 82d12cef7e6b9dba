package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPasswordStrong(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes at minimum length", "Abc@1234", true},
		{"long mixed password", "Sup3r$ecretPassw0rd", true},
		{"every special character", "Aa1@$!%*?&", true},
		{"too weak", "weak", false},
		{"missing uppercase", "alllowercase1!", false},
		{"missing lowercase", "NOLOWER1!", false},
		{"missing digit", "NoDigits!!", false},
		{"missing special", "NoSpecial123", false},
		{"seven characters", "Ab@1234", false},
		{"special outside the allowed set", "Abcd#1234", false},
		{"whitespace", "Abc@ 1234", false},
		{"non ascii letter", "Ábc@12345", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPasswordStrong(tt.password))
		})
	}
}

func TestIsPasswordStrong_LengthBoundary(t *testing.T) {
	base := "Aa1@"
	assert.False(t, IsPasswordStrong(base+strings.Repeat("a", MinPasswordLength-len(base)-1)))
	assert.True(t, IsPasswordStrong(base+strings.Repeat("a", MinPasswordLength-len(base))))
}

func TestEmailValidator(t *testing.T) {
	v := NewEmailValidator()

	assert.True(t, v.IsValid("test@email.com"))
	assert.True(t, v.IsValid("first.last+tag@sub.example.org"))

	assert.False(t, v.IsValid(""))
	assert.False(t, v.IsValid("not-an-email"))
	assert.False(t, v.IsValid("missing@"))
	assert.False(t, v.IsValid("@missing-local.com"))
}
