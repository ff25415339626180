package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// Validator validates and normalizes phone numbers before they reach the
// SMS gateway.
type Validator struct {
	defaultRegion string
}

// NewValidator creates a validator. defaultRegion (e.g. "US") is assumed
// for numbers given without a country code.
func NewValidator(defaultRegion string) *Validator {
	if defaultRegion == "" {
		defaultRegion = "US"
	}
	return &Validator{defaultRegion: defaultRegion}
}

// Normalize parses a raw phone number and returns it in E.164 format.
func (v *Validator) Normalize(raw string) (string, error) {
	num, err := phonenumbers.Parse(raw, v.defaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", raw)
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsValid reports whether raw parses to a valid number.
func (v *Validator) IsValid(raw string) bool {
	_, err := v.Normalize(raw)
	return err == nil
}
