package bot

import (
	"regexp"
	"strings"
)

var (
	nonDigits  = regexp.MustCompile(`\D`)
	validPhone = regexp.MustCompile(`^7\d{10}$`)
)

func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ToLower(text)

	return text
}

func NormalizePhoneNumber(raw string) string {
	digitsOnly := nonDigits.ReplaceAllString(raw, "")

	if strings.HasPrefix(digitsOnly, "8") && len(digitsOnly) == 11 {
		digitsOnly = "7" + digitsOnly[1:]
	}

	return digitsOnly
}

func IsValidPhoneNumber(phone string) bool {
	return validPhone.MatchString(phone)
}

// IsValidName accepts a trimmed name of 1 to 64 characters without digits.
func IsValidName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 64 {
		return false
	}
	return !strings.ContainsAny(name, "0123456789/")
}
