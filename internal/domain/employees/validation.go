package employees

import (
	"regexp"
	"strings"
)

var (
	pinPattern        = regexp.MustCompile(`^[A-Z]\d{9}[A-Z]$`)
	nationalIDPattern = regexp.MustCompile(`^\d{7,8}$`)
)

// NormalizePIN trims and upper-cases a KRA PIN.
func NormalizePIN(pin string) string {
	return strings.ToUpper(strings.TrimSpace(pin))
}

func ValidPIN(pin string) bool {
	return pinPattern.MatchString(pin)
}

func validate(e Employee) error {
	if e.Name == "" {
		return ErrNameRequired
	}
	if e.PIN == "" {
		return ErrPINRequired
	}
	if !ValidPIN(e.PIN) {
		return ErrInvalidPIN
	}
	if e.NationalID != "" && !nationalIDPattern.MatchString(e.NationalID) {
		return ErrInvalidNationalID
	}
	return nil
}
