// Package debugsigner implements the validation half of the debug-signer
// path: a signature over a debug command hash is checked against a set
// of registered signatories, and the first matching signatory's nonce is
// advanced. Add/remove of signatories is left unimplemented beyond this,
// per spec.md §9's instruction not to guess semantics the source leaves
// partially implemented.
//
// Grounded on original_source's
// src/debug_mode/debug_signatures/debug_signatories.rs: validation tries
// each signatory's address in turn and stops at the first one whose
// recovered address matches, incrementing only that signatory's nonce.
package debugsigner

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

// Signatory is one registered debug-command authority.
type Signatory struct {
	Address common.Address
	Nonce   uint64
}

// Validate recovers the signer address from signature over
// debugCommandHash and reports whether it matches sig.Address.
func (sig *Signatory) Validate(signature, debugCommandHash []byte) bool {
	if len(signature) != 65 {
		return false
	}
	pub, err := crypto.SigToPub(debugCommandHash, signature)
	if err != nil {
		return false
	}
	recovered := crypto.PubkeyToAddress(*pub)
	return bytes.Equal(recovered.Bytes(), sig.Address.Bytes())
}

// ValidateAndIncrement tries every signatory in order and, on the first
// one whose signature validates, increments only that signatory's nonce
// and returns its index. If no signatory validates, returns an
// Unauthorized error and leaves every nonce untouched.
func ValidateAndIncrement(signatories []*Signatory, signature, debugCommandHash []byte) (int, error) {
	for i, sig := range signatories {
		if sig.Validate(signature, debugCommandHash) {
			sig.Nonce++
			return i, nil
		}
	}
	return -1, bridgeerr.Unauthorizedf("signature not valid for any debug signatories")
}
