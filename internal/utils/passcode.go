package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPasscode returns the bcrypt hash stored in ADMIN_PASSCODE_HASH.
func HashPasscode(passcode string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passcode: %w", err)
	}
	return string(hashed), nil
}

// CheckPasscode compares a passcode against its bcrypt hash.
func CheckPasscode(hash, passcode string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode))
}
