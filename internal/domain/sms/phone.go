package sms

import "strings"

// NormalizePhone converts an Indonesian mobile number to +62 E.164 form.
// Unrecognized input is returned unchanged.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	switch {
	case strings.HasPrefix(n, "0"):
		return "+62" + n[1:]
	case strings.HasPrefix(n, "62"):
		return "+" + n
	case strings.HasPrefix(n, "8"):
		return "+62" + n
	}
	return phone
}

// ValidPhone reports whether phone looks like an Indonesian mobile number.
func ValidPhone(phone string) bool {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	if len(n) < 10 || len(n) > 13 {
		return false
	}
	return strings.HasPrefix(n, "08") || strings.HasPrefix(n, "628") || strings.HasPrefix(n, "8")
}
