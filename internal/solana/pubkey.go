package solana

import (
	"errors"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// ErrInvalidAddress is returned for a subject that is not a well-formed
// Solana address.
var ErrInvalidAddress = errors.New("invalid solana address")

// ValidateAddress checks that address is base58 text decoding to exactly
// 32 bytes. System addresses like the incinerator are off the ed25519 curve
// on purpose, so on-curve is not required here; DecodePubkey reports it
// separately for callers that care.
func ValidateAddress(address string) error {
	raw, err := base58.Decode(address)
	if err != nil {
		return ErrInvalidAddress
	}
	if len(raw) != 32 {
		return ErrInvalidAddress
	}
	return nil
}

// DecodePubkey decodes a base58 address and reports whether the point lies
// on the ed25519 curve (true for regular wallet keys, false for PDAs).
func DecodePubkey(address string) (raw []byte, onCurve bool, err error) {
	raw, err = base58.Decode(address)
	if err != nil || len(raw) != 32 {
		return nil, false, ErrInvalidAddress
	}
	_, curveErr := new(edwards25519.Point).SetBytes(raw)
	return raw, curveErr == nil, nil
}
