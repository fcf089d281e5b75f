package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BlockContext describes the block environment values exposed to executing contracts. Cheat codes mutate these
// fields directly; snapshots capture and restore them alongside account state.
type BlockContext struct {
	// Coinbase describes the block's fee recipient (COINBASE opcode).
	Coinbase common.Address

	// Number describes the current block number (NUMBER opcode).
	Number *big.Int

	// Time describes the current block timestamp in seconds (TIMESTAMP opcode).
	Time uint64

	// BaseFee describes the block's base fee (BASEFEE opcode).
	BaseFee *big.Int

	// Random describes the block's prevrandao value (PREVRANDAO opcode). In post-merge EVM versions,
	// block.difficulty reads this value.
	Random common.Hash

	// ChainID describes the chain identifier (CHAINID opcode).
	ChainID *big.Int

	// BlobHashes describes the versioned blob hashes of the current transaction (BLOBHASH opcode).
	BlobHashes []common.Hash
}

// newBlockContext obtains a BlockContext populated with the defaults a freshly constructed test chain starts from.
func newBlockContext() *BlockContext {
	return &BlockContext{
		Coinbase: common.Address{},
		Number:   big.NewInt(1),
		Time:     1,
		BaseFee:  big.NewInt(0),
		Random:   common.Hash{},
		ChainID:  big.NewInt(31337),
	}
}

// BlobHash returns the versioned blob hash at the given index, or the zero hash if the index is out of range,
// mirroring the BLOBHASH opcode's out-of-range behavior.
func (b *BlockContext) BlobHash(index uint64) common.Hash {
	if index >= uint64(len(b.BlobHashes)) {
		return common.Hash{}
	}
	return b.BlobHashes[index]
}

// Copy returns a deep copy of the block context.
func (b *BlockContext) Copy() *BlockContext {
	return &BlockContext{
		Coinbase:   b.Coinbase,
		Number:     new(big.Int).Set(b.Number),
		Time:       b.Time,
		BaseFee:    new(big.Int).Set(b.BaseFee),
		Random:     b.Random,
		ChainID:    new(big.Int).Set(b.ChainID),
		BlobHashes: append([]common.Hash(nil), b.BlobHashes...),
	}
}
