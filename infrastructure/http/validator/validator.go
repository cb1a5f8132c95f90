package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nuitRegex  = regexp.MustCompile(`^[0-9]{9}$`)
	// Mozambican mobile numbers: optional +258 prefix, then 8x or 9x
	// followed by seven digits.
	phoneRegex = regexp.MustCompile(`^(\+258)?8[2-7][0-9]{7}$`)
)

func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return false
	}
	return emailRegex.MatchString(strings.ToLower(email))
}

func ValidatePassword(password string) bool {
	return len(password) >= 8
}

func ValidateRequired(value string) bool {
	return strings.TrimSpace(value) != ""
}

// ValidateNuit accepts exactly nine digits. Placeholders are not valid
// NUITs but are handled separately by the duplicate check.
func ValidateNuit(nuit string) bool {
	return nuitRegex.MatchString(strings.TrimSpace(nuit))
}

func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(strings.ReplaceAll(strings.TrimSpace(phone), " ", ""))
}
