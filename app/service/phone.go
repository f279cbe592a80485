package service

import (
	"fmt"
	"strings"
)

const kenyaCountryCode = "254"

// NormalizePhoneNumber canonicalizes an M-Pesa MSISDN to the 254XXXXXXXXX
// form the gateway expects. Accepted inputs: "07XXXXXXXX", "+2547XXXXXXXX",
// "2547XXXXXXXX", or the bare subscriber number "7XXXXXXXX".
func NormalizePhoneNumber(raw string) (string, error) {
	phone := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if phone == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPhoneNumber)
	}

	switch {
	case strings.HasPrefix(phone, "+"+kenyaCountryCode):
		phone = phone[1:]
	case strings.HasPrefix(phone, "0"):
		phone = kenyaCountryCode + phone[1:]
	case strings.HasPrefix(phone, kenyaCountryCode):
		// already canonical
	default:
		phone = kenyaCountryCode + phone
	}

	if len(phone) != 12 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, raw)
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidPhoneNumber, raw)
		}
	}

	return phone, nil
}
