// Package txinfo extracts TxInfo records from validated submission
// material, applies fee subtraction and safe-address diversion, and
// hands the result to the signer (spec.md §3.1, §4.6).
package txinfo

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/codecs"
	"github.com/pnetwork-association/ptokens-bridge/codecs/eos"
)

// SafeAddressFor returns the protocol-wide fallback address for a chain
// family. Supplemented from original_source, which defines a distinct
// safe address per protocol rather than one global constant.
func SafeAddressFor(protocol string) string {
	switch protocol {
	case "evm":
		return "0x0000000000000000000000000000000000dead"
	case "btc":
		return "1BitcoinEaterAddressDontSendf59kuE"
	case "eos":
		return "pbtctokenxxx"
	default:
		return ""
	}
}

// TxInfo is the extracted record of one peg event (spec.md §3.1).
type TxInfo struct {
	Amount              *big.Int
	From                string
	To                  string
	OriginChainID       string
	DestinationChainID  string
	OriginatingTxHash   string
	UserData            []byte
	TokenAddresses      []string
	ProcessedID         string
	originalAmount      *big.Int
}

// SubtractFee applies amount_after = amount * (10_000 - bp) / 10_000 and
// returns the fee delta that feeds the dictionary accrual (spec.md
// §4.6). bp must be in [0, 10_000].
func SubtractFee(t *TxInfo, bp uint64) (*big.Int, error) {
	if bp > 10_000 {
		return nil, bridgeerr.Validationf(nil, "fee basis points %d out of range [0,10000]", bp)
	}
	if t.originalAmount == nil {
		t.originalAmount = new(big.Int).Set(t.Amount)
	}
	numerator := new(big.Int).Mul(t.originalAmount, big.NewInt(int64(10_000-bp)))
	after := new(big.Int).Quo(numerator, big.NewInt(10_000))
	fee := new(big.Int).Sub(t.originalAmount, after)
	t.Amount = after
	return fee, nil
}

// DivertToSafeAddress rewrites t.To to the protocol's safe address when
// it equals zero, the token address, the vault, or the router (spec.md
// §3.3 invariant 6). Diversion preserves amount and user data.
func DivertToSafeAddress(t *TxInfo, protocol string, tokenAddress, vault, router string) {
	zero := "0x0000000000000000000000000000000000000000"
	if protocol != "evm" {
		zero = ""
	}
	to := t.To
	if to == zero || (tokenAddress != "" && to == tokenAddress) || (vault != "" && to == vault) || (router != "" && to == router) {
		t.To = SafeAddressFor(protocol)
	}
}

// ExtractEVMPegOuts filters receipts for logs from the vault or any
// dictionary token address whose topic set contains redeemTopic, and
// decodes the redeem event's recipient/amount/userData.
func ExtractEVMPegOuts(receipts []*types.Receipt, vault common.Address, tokenAddrs []common.Address, redeemTopic common.Hash, destinationChainID string) []TxInfo {
	watch := map[common.Address]bool{vault: true}
	for _, a := range tokenAddrs {
		watch[a] = true
	}

	var out []TxInfo
	for _, r := range receipts {
		for _, l := range r.Logs {
			if !watch[l.Address] || len(l.Topics) == 0 || l.Topics[0] != redeemTopic {
				continue
			}
			if len(l.Topics) < 2 || len(l.Data) < 32 {
				continue
			}
			recipient := codecs.AddressFromTopic(l.Topics[1])
			amount := new(big.Int).SetBytes(l.Data[:32])
			userData := []byte{}
			if len(l.Data) > 32 {
				userData = l.Data[32:]
			}
			out = append(out, TxInfo{
				Amount:             amount,
				To:                 recipient.Hex(),
				From:               l.Address.Hex(),
				OriginatingTxHash:  r.TxHash.Hex(),
				DestinationChainID: destinationChainID,
				UserData:           userData,
				TokenAddresses:     []string{l.Address.Hex()},
				ProcessedID:        r.TxHash.Hex() + ":" + uint64ToString(uint64(l.Index)),
			})
		}
	}
	return out
}

// FilterIfNoTransferEvent keeps only the peg-in marker logs that have a
// corresponding, not-yet-consumed ERC-20 Transfer(to=vault) event in the
// same receipt. Each duplicate peg-in marker must be matched against its
// own distinct Transfer event: once a Transfer log is matched it is
// removed from the pool so a second identical marker cannot reuse it.
// Grounded on original_source's erc20_token.rs filter_if_no_transfer_event,
// which clones the receipt's events into a mutable pool and removes a
// match on use rather than merely checking containment.
//
// The pTokenAddress/pTokenSpecialCase hook preserves the exception for a
// specific wrapped-token variant and for native-wrap minting where
// from == zero: callers pass a predicate that, given a marker log,
// reports whether it should be kept even absent a matching transfer.
func FilterIfNoTransferEvent(markers []*types.Log, transferEvents []*types.Log, vault common.Address, specialCase func(marker *types.Log) bool) []*types.Log {
	pool := make([]*types.Log, len(transferEvents))
	copy(pool, transferEvents)

	var kept []*types.Log
	for _, marker := range markers {
		idx := findMatchingTransfer(pool, vault)
		if idx >= 0 {
			pool = append(pool[:idx], pool[idx+1:]...)
			kept = append(kept, marker)
			continue
		}
		if specialCase != nil && specialCase(marker) {
			kept = append(kept, marker)
		}
	}
	return kept
}

func findMatchingTransfer(pool []*types.Log, vault common.Address) int {
	for i, ev := range pool {
		if len(ev.Topics) < 3 {
			continue
		}
		to := codecs.AddressFromTopic(ev.Topics[2])
		if to == vault {
			return i
		}
	}
	return -1
}

// ExtractBTCPegIns turns each already-matched deposit into a TxInfo. It
// does no matching or address derivation itself: both happen upstream
// (see btcDepositMatch).
func ExtractBTCPegIns(matches []btcDepositMatch, originChainID, destinationChainID string) []TxInfo {
	out := make([]TxInfo, 0, len(matches))
	for _, m := range matches {
		out = append(out, TxInfo{
			Amount:             big.NewInt(m.ValueSat),
			To:                 m.DestinationAddress,
			OriginatingTxHash:  m.TxID,
			OriginChainID:      originChainID,
			DestinationChainID: destinationChainID,
			ProcessedID:        m.TxID,
		})
	}
	return out
}

// btcDepositMatch is the input shape the BTC extraction stage consumes,
// produced upstream by codecs.MatchDepositAddress plus a destination-
// address derivation step (the eth_address_and_nonce_hash lookup is
// protocol-specific and supplied by the caller).
type btcDepositMatch struct {
	TxID               string
	ValueSat           int64
	DestinationAddress string
}

// ExtractEOSPegOuts verifies each action proof, parses the memo for the
// destination address and the amount from its fixed byte offsets, and
// dedupes by global_sequence against alreadySeen.
func ExtractEOSPegOuts(proofs []eos.ActionProof, actionMRoot eos.ActionReceiptDigest, originChainID, destinationChainID string, alreadySeen func(globalSeq uint64) bool) ([]TxInfo, error) {
	var out []TxInfo
	for _, p := range proofs {
		if alreadySeen != nil && alreadySeen(p.GlobalSeq) {
			continue
		}
		if !eos.VerifyActionProof(p, actionMRoot) {
			return nil, bridgeerr.Validationf(nil, "action proof for global_sequence %d failed Merkle verification", p.GlobalSeq)
		}
		amount, err := eos.DecodeActionAmount(p.Data)
		if err != nil {
			return nil, err
		}
		memo, err := eos.DecodeActionMemo(p.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, TxInfo{
			Amount:             new(big.Int).SetUint64(amount),
			To:                 memo,
			OriginChainID:      originChainID,
			DestinationChainID: destinationChainID,
			ProcessedID:        uint64ToString(p.GlobalSeq),
		})
	}
	return out, nil
}

func uint64ToString(v uint64) string {
	return new(big.Int).SetUint64(v).String()
}
