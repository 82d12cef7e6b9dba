package policy

import "strings"

// PasswordSpecials is the set of special characters a strong password must draw from.
const PasswordSpecials = "@$!%*?&"

const MinPasswordLength = 8

// IsPasswordStrong reports whether password has at least one lowercase letter,
// one uppercase letter, one digit and one of PasswordSpecials, is at least
// MinPasswordLength long, and contains nothing outside those classes.
func IsPasswordStrong(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
