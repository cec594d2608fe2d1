package types

import "time"

// Result is a successful search outcome.
//
// Salt is the 32-byte nonce to hand to the factory, hex with 0x marker. The
// factory re-derives the effective CREATE2 salt as keccak256(sender || salt)
// on-chain, so the pre-hash nonce — not the hashed working salt — is the value
// the caller needs. Address is the deployed address it produces, lowercase hex
// with 0x marker.
type Result struct {
	Salt     string
	Address  string
	Attempts uint64
	Duration time.Duration
}
