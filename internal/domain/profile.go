package domain

import (
	"errors"
	"fmt"
)

// MaxProfileIDLength bounds profile identifiers; they end up inside storage keys.
const MaxProfileIDLength = 64

// ErrInvalidProfile is returned for profile IDs that cannot be used as a key.
var ErrInvalidProfile = errors.New("invalid profile id")

// ValidateProfileID accepts 1-64 characters from [A-Za-z0-9_-].
func ValidateProfileID(id string) error {
	if id == "" || len(id) > MaxProfileIDLength {
		return fmt.Errorf("%w: length must be 1-%d", ErrInvalidProfile, MaxProfileIDLength)
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: unexpected character %q", ErrInvalidProfile, r)
		}
	}
	return nil
}
