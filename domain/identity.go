// Package domain contains core concepts of the bridge.
// This file defines the stable peer identity and its textual renderings.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Protocol limits, in bytes. Inbound payloads longer than these are
// truncated before they reach any state mutation.
const (
	PublicKeySize          = 32
	MaxNameLength          = 128
	MaxStatusMessageLength = 1007
	MaxMessageLength       = 1372
)

// Identity is the public key of a friend or group peer. It is the only
// identifier that stays valid across sessions; friend and peer numbers
// handed out by the protocol engine are transient and must never be used
// as a storage key.
type Identity [PublicKeySize]byte

// ParseIdentity decodes a hex-encoded public key.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("identity decoding failed: %w", err)
	}
	if len(raw) != PublicKeySize {
		return id, fmt.Errorf("identity has %d bytes, want %d", len(raw), PublicKeySize)
	}
	copy(id[:], raw)
	return id, nil
}

// Hex renders the full key as uppercase hex.
func (id Identity) Hex() string {
	return strings.ToUpper(hex.EncodeToString(id[:]))
}

// ShortHex renders exactly n leading hex characters of the key.
// A zero identity renders as zeros, which is the documented fallback for
// peers whose key could not be queried.
func (id Identity) ShortHex(n int) string {
	full := id.Hex()
	if n <= 0 {
		return ""
	}
	if n > len(full) {
		n = len(full)
	}
	return full[:n]
}

// IsZero reports whether the identity is the all-zero placeholder key.
func (id Identity) IsZero() bool {
	return id == Identity{}
}
