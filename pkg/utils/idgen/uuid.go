// Package idgen provides UUID utilities for record identifiers.
package idgen

import (
	"crypto/rand"
	"fmt"
)

// UUID represents a UUID value.
type UUID [16]byte

// String returns the string representation of UUID in standard format.
func (u UUID) String() string {
	return fmt.Sprintf("%x-%x-%x-%x-%x",
		u[0:4], u[4:6], u[6:8], u[8:10], u[10:16])
}

// IsZero returns true if the UUID is zero.
func (u UUID) IsZero() bool {
	return u == UUID{}
}

// NewV4 generates a random UUID v4.
func NewV4() (UUID, error) {
	var u UUID
	if _, err := rand.Read(u[:]); err != nil {
		return UUID{}, fmt.Errorf("generate uuid: %w", err)
	}
	u[6] = (u[6] & 0x0f) | 0x40 // version 4
	u[8] = (u[8] & 0x3f) | 0x80 // RFC 4122 variant
	return u, nil
}

// MustNewV4 generates a random UUID v4 and panics on entropy failure.
func MustNewV4() UUID {
	u, err := NewV4()
	if err != nil {
		panic(err)
	}
	return u
}
