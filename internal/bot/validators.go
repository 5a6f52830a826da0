package bot

import (
	"strings"
	"unicode"
)

// NormalizePhoneNumber strips formatting and keeps a leading + when the
// input carried one.
func NormalizePhoneNumber(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(strings.TrimSpace(phone), "+") {
		return "+" + cleaned
	}
	return cleaned
}

func IsValidPhoneNumber(phone string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)

	// 10-15 digits covers national and international forms.
	if len(cleaned) < 10 || len(cleaned) > 15 {
		return false
	}

	badNumbers := map[string]bool{
		"0000000000": true,
		"1111111111": true,
		"1234567890": true,
		"9999999999": true,
		"0123456789": true,
	}
	return !badNumbers[cleaned]
}

func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.ContainsAny(email, " \t") {
		return false
	}
	return true
}
