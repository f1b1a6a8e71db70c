// Package chain implements the in-memory, append-only star chain: an ordered
// sequence of hash-linked blocks whose writes are gated by an ownership proof.
//
// The chain is volatile. It is rebuilt empty on process start and seeded with
// exactly one genesis block by Initialize before any other operation runs.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/star-registry/starchain/internal/block"
	"github.com/star-registry/starchain/internal/challenge"
	"go.uber.org/zap"
)

// VerifyFunc is the external signature-verification primitive.
// In production this is (*signature.Verifier).Verify; in tests it can be stubbed.
type VerifyFunc func(message, address, signature string) (bool, error)

// Blockchain owns the ordered block sequence and serialises all mutation.
//
// Height assignment, previous-hash capture and hash computation form one
// critical section under mu: readers can never observe a half-sealed block.
type Blockchain struct {
	mu     sync.RWMutex
	blocks []*block.Block

	verify VerifyFunc
	logger *zap.Logger
}

// New creates an empty Blockchain. verify may be nil only in tests that never
// call SubmitStar. Call Initialize before any other operation.
func New(verify VerifyFunc, logger *zap.Logger) *Blockchain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Blockchain{verify: verify, logger: logger}
}

// Initialize seeds the chain with the genesis block. It is idempotent: a chain
// that already has blocks is left untouched. Must complete before the chain is
// handed to any serving layer.
func (bc *Blockchain) Initialize() error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	if len(bc.blocks) > 0 {
		return nil
	}
	g, err := bc.appendLocked(block.NewGenesis())
	if err != nil {
		return fmt.Errorf("seed genesis block: %w", err)
	}
	bc.logger.Info("chain initialized", zap.String("genesis_hash", g.Hash))
	return nil
}

// Height returns the number of blocks in the chain, genesis included.
// This is the entry count, not the max index: the tip sits at Height()-1.
func (bc *Blockchain) Height() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// SubmitStar is the gated write path. It checks the challenge's freshness
// window, verifies the signature through the external primitive, and only then
// seals and appends a block with the {owner, star} payload.
//
// A rejected submission returns ErrChallengeExpired, ErrSignatureNotVerified
// or challenge.ErrMalformed and leaves the chain untouched.
func (bc *Blockchain) SubmitStar(_ context.Context, address, message, sig string, star json.RawMessage) (*block.Block, error) {
	_, issuedAt, err := challenge.Parse(message)
	if err != nil {
		return nil, err
	}
	if challenge.Expired(issuedAt, time.Now()) {
		return nil, ErrChallengeExpired
	}

	ok, err := bc.verify(message, address, sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureNotVerified, err)
	}
	if !ok {
		return nil, ErrSignatureNotVerified
	}

	b, err := block.New(block.StarPayload{Owner: address, Star: star})
	if err != nil {
		return nil, err
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()
	sealed, err := bc.appendLocked(b)
	if err != nil {
		return nil, err
	}
	bc.logger.Info("star registered",
		zap.Int("height", sealed.Height),
		zap.String("owner", address),
		zap.String("hash", sealed.Hash),
	)
	return sealed, nil
}

// appendLocked seals b and appends it to the chain. The caller must hold mu.
//
// Sealing assigns height (current length), creation time (unix seconds) and
// the previous block's hash, then computes the block hash over the fully
// assigned content. The append is atomic: b joins the sequence only fully
// sealed, or not at all.
func (bc *Blockchain) appendLocked(b *block.Block) (*block.Block, error) {
	b.Height = len(bc.blocks)
	b.Time = time.Now().Unix()
	if len(bc.blocks) > 0 {
		b.PrevHash = bc.blocks[len(bc.blocks)-1].Hash
	}
	b.Hash = b.ComputeHash()

	bc.blocks = append(bc.blocks, b)
	return b, nil
}

// BlockByHash returns the first block whose hash equals hash, or nil.
// Absence is a valid result, not an error.
func (bc *Blockchain) BlockByHash(hash string) *block.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	for _, b := range bc.blocks {
		if b.Hash == hash {
			return b
		}
	}
	return nil
}

// BlockByHeight returns the block at the given height, or nil if out of range.
func (bc *Blockchain) BlockByHeight(height int) *block.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	if height < 0 || height >= len(bc.blocks) {
		return nil
	}
	return bc.blocks[height]
}

// StarsByOwner returns the decoded payloads of every block owned by address,
// in chain order. The genesis block is skipped (its payload is not
// owner-shaped), and a block whose payload fails to decode is logged and
// skipped rather than aborting the scan.
func (bc *Blockchain) StarsByOwner(address string) []*block.StarPayload {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	stars := make([]*block.StarPayload, 0)
	if len(bc.blocks) == 0 {
		return stars
	}
	for _, b := range bc.blocks[1:] {
		p, err := b.DecodeStar()
		if err != nil {
			bc.logger.Warn("skipping undecodable block in owner scan",
				zap.Int("height", b.Height), zap.Error(err))
			continue
		}
		if p.Owner == address {
			stars = append(stars, p)
		}
	}
	return stars
}

// Blocks returns a snapshot of the full sequence. The returned slice is a
// copy; the blocks themselves are shared and must be treated as read-only.
func (bc *Blockchain) Blocks() []*block.Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	out := make([]*block.Block, len(bc.blocks))
	copy(out, bc.blocks)
	return out
}
