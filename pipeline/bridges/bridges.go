// Package bridges holds the destination signing paths for each
// supported chain family (EVMDestination, BTCDestination), whose SignFn
// plugs into pipeline.SignAndPersistStage. It does not build
// pipeline.Bridge values or their stage lists. Nothing in the pipeline
// package itself knows about EVM or Bitcoin; this package is where that
// knowledge lives.
//
// Signing is offline: the pipeline assigns the account nonce before
// signFn runs (spec.md §4.7), and UTXO selection/fee estimation is
// local bookkeeping over utxomanager's persisted set, so neither
// destination needs an RPC round-trip to produce a signed
// transaction.
package bridges

import (
	"github.com/pnetwork-association/ptokens-bridge/noncekeys"
	"github.com/pnetwork-association/ptokens-bridge/pipeline"
	"github.com/pnetwork-association/ptokens-bridge/txinfo"
)

func firstTokenAddress(addrs []string) string {
	if len(addrs) == 0 {
		return ""
	}
	return addrs[0]
}

func lastTokenAddress(addrs []string) string {
	if len(addrs) == 0 {
		return ""
	}
	return addrs[len(addrs)-1]
}

func hexString(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}

// destinationSignFn is the shape pipeline.SignAndPersistStage expects
// from either chain family's destination.
type destinationSignFn func(t txinfo.TxInfo, nonce uint64) (pipeline.SignedTx, error)

// newPrivateKey reads the destination's sealed signing key out of
// noncekeys, the only place a signFn is allowed to source one from
// (spec.md §4.7).
func newPrivateKey(nonceKeys *noncekeys.Store) ([]byte, error) {
	return nonceKeys.PrivateKey()
}
