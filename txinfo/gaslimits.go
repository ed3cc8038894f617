package txinfo

// Gas limits are protocol-defined constants per destination operation
// (spec.md §4.6). S1 of the test corpus expects 450000 for a BTC->EVM
// peg-in mint with metadata.
const (
	GasLimitPegOutWithData    uint64 = 300000
	GasLimitPegOutWithoutData uint64 = 180000
	GasLimitMintWithData      uint64 = 450000
	GasLimitMintWithoutData   uint64 = 250000
	GasLimitERC777MintWithData uint64 = 500000
)
