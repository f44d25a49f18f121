package phone

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers written without a country prefix
const DefaultRegion = "US"

// Normalize parses phone in region (DefaultRegion when empty) and returns
// its E.164 form (+15551234567). Invalid numbers return an error.
func Normalize(phone, region string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}
	if region == "" {
		region = DefaultRegion
	}

	parsed, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number: %s", phone)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

// IsValid reports whether phone parses as a valid number in DefaultRegion
func IsValid(phone string) bool {
	_, err := Normalize(phone, DefaultRegion)
	return err == nil
}

// FormatNational renders an E.164 number the way it is written locally, e.g. (201) 555-0123.
// Unparseable input is returned unchanged.
func FormatNational(e164 string) string {
	parsed, err := phonenumbers.Parse(e164, DefaultRegion)
	if err != nil {
		return e164
	}
	return phonenumbers.Format(parsed, phonenumbers.NATIONAL)
}
