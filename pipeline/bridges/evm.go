package bridges

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/noncekeys"
	"github.com/pnetwork-association/ptokens-bridge/pipeline"
	"github.com/pnetwork-association/ptokens-bridge/txinfo"
)

// EVMDestination signs EIP-155 legacy transactions directly against
// go-ethereum's core/types and crypto packages. Gas price and limit
// are config-driven rather than RPC-estimated: signing here is an
// offline step downstream of a pipeline-assigned nonce, not a
// general-purpose wallet send, so there is no Build() round-trip to
// an RPC endpoint the way a wallet adapter would do it.
type EVMDestination struct {
	PrivateKey *ecdsa.PrivateKey
	ChainID    *big.Int
	GasPrice   *big.Int
	GasLimit   uint64
}

// NewEVMDestination loads the destination's sealed signing key and
// wraps it for legacy EIP-155 signing against chainID.
func NewEVMDestination(nonceKeys *noncekeys.Store, chainID *big.Int, gasPriceWei uint64, gasLimit uint64) (*EVMDestination, error) {
	raw, err := newPrivateKey(nonceKeys)
	if err != nil {
		return nil, err
	}
	key, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, bridgeerr.Validationf(err, "invalid EVM signing key")
	}
	return &EVMDestination{
		PrivateKey: key,
		ChainID:    chainID,
		GasPrice:   new(big.Int).SetUint64(gasPriceWei),
		GasLimit:   gasLimit,
	}, nil
}

// Address is the destination's own signing address, derived from the
// sealed private key.
func (d *EVMDestination) Address() string {
	return crypto.PubkeyToAddress(d.PrivateKey.PublicKey).Hex()
}

// SignFn adapts the destination to a pipeline.SignAndPersistStage
// signFn: build an unsigned legacy transfer carrying the encoded
// metadata envelope as calldata, sign it with EIP-155, and shape the
// result as the pipeline's SignedTx record (spec.md §6.7). The
// transaction moves zero native value; the transferred amount is the
// host token amount carried by memo/calldata, matching an
// ERC-20-style peg-out rather than a native-coin send.
func (d *EVMDestination) SignFn(destinationChainID string, memo []byte) destinationSignFn {
	return func(t txinfo.TxInfo, nonce uint64) (pipeline.SignedTx, error) {
		to := common.HexToAddress(t.To)
		unsigned := types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: d.GasPrice,
			Gas:      d.GasLimit,
			To:       &to,
			Value:    big.NewInt(0),
			Data:     memo,
		})

		signer := types.NewEIP155Signer(d.ChainID)
		signed, err := types.SignTx(unsigned, signer, d.PrivateKey)
		if err != nil {
			return pipeline.SignedTx{}, bridgeerr.Validationf(err, "sign EVM transaction")
		}

		raw, err := signed.MarshalBinary()
		if err != nil {
			return pipeline.SignedTx{}, bridgeerr.Decodef(err, "serialize signed EVM transaction")
		}

		return pipeline.SignedTx{
			Broadcast:          false,
			TxHash:             signed.Hash().Hex(),
			TxAmount:           t.Amount,
			TxRecipient:        t.To,
			HostTokenAddress:   firstTokenAddress(t.TokenAddresses),
			OriginatingTxHash:  t.OriginatingTxHash,
			OriginatingAddress: t.From,
			NativeTokenAddress: lastTokenAddress(t.TokenAddresses),
			SignedTxHex:        "0x" + hexString(raw),
			AccountNonce:       nonce,
			DestinationChainID: destinationChainID,
		}, nil
	}
}
