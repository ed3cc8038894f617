package bridges

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
	"github.com/pnetwork-association/ptokens-bridge/noncekeys"
	"github.com/pnetwork-association/ptokens-bridge/pipeline"
	"github.com/pnetwork-association/ptokens-bridge/txinfo"
	"github.com/pnetwork-association/ptokens-bridge/utxomanager"
)

// maxSelectedInputs caps how many utxos a single peg-out transaction
// draws from utxomanager.SelectToCover, matching the fixed cost model
// SelectToCover itself already estimates against.
const maxSelectedInputs = 10

// BTCDestination builds and signs P2WPKH Bitcoin transactions directly
// against btcsuite's wire/txscript/btcec packages, spending from the
// bridge's own utxomanager.Manager (which already picks inputs in
// increasing-nonce order and explicitly defers "building and signing
// the actual transaction" to this layer). Signing is offline: no chain
// RPC is consulted, since the manager's view of the UTXO set and the
// configured fee rate are all a peg-out transaction needs.
type BTCDestination struct {
	PrivateKey    *btcec.PrivateKey
	Params        *chaincfg.Params
	ChangeAddress btcutil.Address
	Utxos         *utxomanager.Manager
	FeeRateSat    int64
}

// NewBTCDestination loads the destination's sealed signing key,
// derives its own P2WPKH change address, and wires in the bridge's
// persisted UTXO set.
func NewBTCDestination(nonceKeys *noncekeys.Store, utxos *utxomanager.Manager, params *chaincfg.Params, feeRateSat int64) (*BTCDestination, error) {
	raw, err := newPrivateKey(nonceKeys)
	if err != nil {
		return nil, err
	}
	priv, pub := btcec.PrivKeyFromBytes(raw)
	changeAddr, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub.SerializeCompressed()), params)
	if err != nil {
		return nil, bridgeerr.Validationf(err, "cannot derive BTC change address")
	}
	return &BTCDestination{
		PrivateKey:    priv,
		Params:        params,
		ChangeAddress: changeAddr,
		Utxos:         utxos,
		FeeRateSat:    feeRateSat,
	}, nil
}

// Address is the destination's own change address.
func (d *BTCDestination) Address() string {
	return d.ChangeAddress.EncodeAddress()
}

// SignFn adapts the destination to a pipeline.SignAndPersistStage
// signFn: select covering utxos, build a transaction paying t.Amount
// to t.To with any remainder returned to the destination's own
// change address, sign every input's P2WPKH witness, and shape the
// result as the pipeline's SignedTx record (spec.md §6.7). Selected
// utxos are removed from the manager once signed, since a peg-out
// that the pipeline has signed is committed to spending them.
func (d *BTCDestination) SignFn(destinationChainID string) destinationSignFn {
	return func(t txinfo.TxInfo, nonce uint64) (pipeline.SignedTx, error) {
		toAddr, err := btcutil.DecodeAddress(t.To, d.Params)
		if err != nil {
			return pipeline.SignedTx{}, bridgeerr.Decodef(err, "invalid BTC destination address %q", t.To)
		}
		toScript, err := txscript.PayToAddrScript(toAddr)
		if err != nil {
			return pipeline.SignedTx{}, bridgeerr.Decodef(err, "cannot build destination script")
		}

		amountSat := t.Amount.Int64()
		inputs, fee, err := d.Utxos.SelectToCover(amountSat, maxSelectedInputs, d.FeeRateSat)
		if err != nil {
			return pipeline.SignedTx{}, err
		}

		tx := wire.NewMsgTx(wire.TxVersion)
		prevScripts := make([][]byte, len(inputs))
		var totalIn int64
		for i, u := range inputs {
			hash, err := chainhash.NewHashFromStr(u.Txid)
			if err != nil {
				return pipeline.SignedTx{}, bridgeerr.Decodef(err, "invalid utxo txid %q", u.Txid)
			}
			tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(hash, u.Vout), nil, nil))
			prevScripts[i] = u.Script
			totalIn += u.ValueSat
		}

		tx.AddTxOut(wire.NewTxOut(amountSat, toScript))
		if change := totalIn - amountSat - fee; change > 0 {
			changeScript, err := txscript.PayToAddrScript(d.ChangeAddress)
			if err != nil {
				return pipeline.SignedTx{}, bridgeerr.Decodef(err, "cannot build change script")
			}
			tx.AddTxOut(wire.NewTxOut(change, changeScript))
		}

		fetcher := txscript.NewMultiPrevOutFetcher(nil)
		for i, in := range tx.TxIn {
			fetcher.AddPrevOut(in.PreviousOutPoint, wire.NewTxOut(inputs[i].ValueSat, prevScripts[i]))
		}
		sigHashes := txscript.NewTxSigHashes(tx, fetcher)
		for i, u := range inputs {
			witness, err := txscript.WitnessSignature(tx, sigHashes, i, u.ValueSat, prevScripts[i], txscript.SigHashAll, d.PrivateKey, true)
			if err != nil {
				return pipeline.SignedTx{}, bridgeerr.Validationf(err, "sign BTC input %d (%s:%d)", i, u.Txid, u.Vout)
			}
			tx.TxIn[i].Witness = witness
		}

		for _, u := range inputs {
			if err := d.Utxos.Remove(u.Txid, u.Vout); err != nil {
				return pipeline.SignedTx{}, err
			}
		}

		var buf bytes.Buffer
		if err := tx.Serialize(&buf); err != nil {
			return pipeline.SignedTx{}, bridgeerr.Decodef(err, "serialize signed BTC transaction")
		}

		return pipeline.SignedTx{
			Broadcast:          false,
			TxHash:             tx.TxHash().String(),
			TxAmount:           t.Amount,
			TxRecipient:        t.To,
			OriginatingTxHash:  t.OriginatingTxHash,
			OriginatingAddress: t.From,
			SignedTxHex:        "0x" + hexString(buf.Bytes()),
			AccountNonce:       nonce,
			DestinationChainID: destinationChainID,
		}, nil
	}
}
