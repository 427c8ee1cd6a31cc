package utils

import (
	"os"
	"strings"

	"github.com/ttacon/libphonenumber"
)

func defaultPhoneRegion() string {
	if v := strings.TrimSpace(os.Getenv("PHONE_DEFAULT_REGION")); v != "" {
		return v
	}
	return "IN"
}

// NormalizePhone parses a phone number and returns it in E.164 form.
// Returns the trimmed input unchanged when it cannot be parsed, so lookups
// against legacy records keep working.
func NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	num, err := libphonenumber.Parse(raw, defaultPhoneRegion())
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return raw
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}
