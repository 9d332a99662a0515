package auth

import (
	"regexp"
	"strings"
)

var mobilePattern = regexp.MustCompile(`^(91)?[6-9][0-9]{9}$`)

// NormalizePhone keeps digits only, prefixes the 91 country code to bare
// 10-digit numbers and returns the result in +E.164 form.
func NormalizePhone(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		digits = "91" + digits
	}
	return "+" + digits
}

// ValidatePhone reports whether phone is an Indian mobile number.
func ValidatePhone(phone string) bool {
	digits := digitsOnly(phone)
	if len(digits) < 10 || len(digits) > 13 {
		return false
	}
	return mobilePattern.MatchString(digits)
}

func digitsOnly(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// maskPhone hides all but the last four digits for logging.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
