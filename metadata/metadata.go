// Package metadata encodes and decodes the versioned envelope that
// carries origin/destination addresses and opaque user data across
// chains (spec.md §3.1). v2 and v3 coexist in the corpus without a
// cutover policy (spec.md Open Questions); Envelope carries an explicit
// Version byte and Decode dispatches on it, while Encode always writes
// v3.
package metadata

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/pnetwork-association/ptokens-bridge/bridgeerr"
)

type Version byte

const (
	V2 Version = 0x02
	V3 Version = 0x03
)

// MaxUserDataBytes bounds user_data; data exceeding this budget is
// redacted to empty before encoding (spec.md §3.1).
const MaxUserDataBytes = 4096

// Envelope is the decoded metadata payload.
type Envelope struct {
	Version            Version
	UserData           []byte
	OriginAddress      []byte
	DestinationAddress []byte
	ProtocolTag        byte
	ProtocolOptions    []byte
	ProtocolReceipt    []byte
}

// Encode always writes the v3 wire format:
//
//	[version:1][protocolTag:1]
//	[len(userData):4 BE][userData]
//	[len(originAddress):1][originAddress]
//	[len(destinationAddress):1][destinationAddress]
//	[len(protocolOptions):4 BE][protocolOptions]
//	[len(protocolReceipt):4 BE][protocolReceipt]
func Encode(e Envelope) []byte {
	userData := e.UserData
	if len(userData) > MaxUserDataBytes {
		userData = nil
	}

	buf := make([]byte, 0, 64+len(userData)+len(e.ProtocolOptions)+len(e.ProtocolReceipt))
	buf = append(buf, byte(V3), e.ProtocolTag)
	buf = appendLenPrefixed32(buf, userData)
	buf = appendLenPrefixed8(buf, e.OriginAddress)
	buf = appendLenPrefixed8(buf, e.DestinationAddress)
	buf = appendLenPrefixed32(buf, e.ProtocolOptions)
	buf = appendLenPrefixed32(buf, e.ProtocolReceipt)
	return buf
}

func appendLenPrefixed32(buf, data []byte) []byte {
	lenBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(data)))
	buf = append(buf, lenBuf...)
	return append(buf, data...)
}

func appendLenPrefixed8(buf, data []byte) []byte {
	buf = append(buf, byte(len(data)))
	return append(buf, data...)
}

// Decode dispatches on the leading version byte. v2 omits the
// protocolReceipt trailer that v3 introduced.
func Decode(raw []byte) (Envelope, error) {
	if len(raw) < 2 {
		return Envelope{}, bridgeerr.Decodef(nil, "metadata envelope too short: %d bytes", len(raw))
	}
	version := Version(raw[0])
	switch version {
	case V3:
		return decodeV3(raw)
	case V2:
		return decodeV2(raw)
	default:
		return Envelope{}, bridgeerr.Decodef(nil, "unknown metadata version byte 0x%x", raw[0])
	}
}

func decodeV3(raw []byte) (Envelope, error) {
	e := Envelope{Version: V3}
	off := 1
	if off >= len(raw) {
		return e, bridgeerr.Decodef(nil, "truncated metadata v3 envelope")
	}
	e.ProtocolTag = raw[off]
	off++

	var err error
	e.UserData, off, err = readLenPrefixed32(raw, off)
	if err != nil {
		return e, err
	}
	e.OriginAddress, off, err = readLenPrefixed8(raw, off)
	if err != nil {
		return e, err
	}
	e.DestinationAddress, off, err = readLenPrefixed8(raw, off)
	if err != nil {
		return e, err
	}
	e.ProtocolOptions, off, err = readLenPrefixed32(raw, off)
	if err != nil {
		return e, err
	}
	e.ProtocolReceipt, _, err = readLenPrefixed32(raw, off)
	if err != nil {
		return e, err
	}
	return e, nil
}

// decodeV2 mirrors decodeV3 but without the protocolReceipt trailer.
func decodeV2(raw []byte) (Envelope, error) {
	e := Envelope{Version: V2}
	off := 1
	if off >= len(raw) {
		return e, bridgeerr.Decodef(nil, "truncated metadata v2 envelope")
	}
	e.ProtocolTag = raw[off]
	off++

	var err error
	e.UserData, off, err = readLenPrefixed32(raw, off)
	if err != nil {
		return e, err
	}
	e.OriginAddress, off, err = readLenPrefixed8(raw, off)
	if err != nil {
		return e, err
	}
	e.DestinationAddress, _, err = readLenPrefixed8(raw, off)
	if err != nil {
		return e, err
	}
	return e, nil
}

func readLenPrefixed32(raw []byte, off int) ([]byte, int, error) {
	if off+4 > len(raw) {
		return nil, off, bridgeerr.Decodef(nil, "truncated length prefix at offset %d", off)
	}
	n := int(binary.BigEndian.Uint32(raw[off:]))
	off += 4
	if off+n > len(raw) {
		return nil, off, bridgeerr.Decodef(nil, "truncated field of length %d at offset %d", n, off)
	}
	return raw[off : off+n], off + n, nil
}

func readLenPrefixed8(raw []byte, off int) ([]byte, int, error) {
	if off+1 > len(raw) {
		return nil, off, bridgeerr.Decodef(nil, "truncated length prefix at offset %d", off)
	}
	n := int(raw[off])
	off++
	if off+n > len(raw) {
		return nil, off, bridgeerr.Decodef(nil, "truncated field of length %d at offset %d", n, off)
	}
	return raw[off : off+n], off + n, nil
}

// Hex is a convenience for the JSON output schema, which embeds the
// encoded envelope as a hex string in a transaction's data field.
func Hex(e Envelope) string {
	return hex.EncodeToString(Encode(e))
}
