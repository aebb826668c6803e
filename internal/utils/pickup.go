// Package utils provides helpers for pickup-code generation and
// verification.  A pickup code is a short one-time credential the
// member presents at the counter; only its bcrypt hash is persisted.
package utils

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Alphabet without easily confused characters (no 0/O, 1/I/L).
const pickupAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const pickupCodeLen = 8

// NewPickupCode generates a random pickup code and its bcrypt hash.
// The plaintext is returned to the member once at commit time; the
// hash is what the reservation row stores.
func NewPickupCode() (code string, hash string, err error) {
	buf := make([]byte, pickupCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("pickup code entropy: %w", err)
	}
	out := make([]byte, pickupCodeLen)
	for i, b := range buf {
		out[i] = pickupAlphabet[int(b)%len(pickupAlphabet)]
	}
	code = string(out)
	h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("pickup code hash: %w", err)
	}
	return code, string(h), nil
}

// CheckPickupCode reports whether code matches the stored hash.
func CheckPickupCode(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
