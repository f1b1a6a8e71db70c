// Package block defines the Block record of the star chain.
//
// A block is sealed exactly once, inside the ledger's append path: the ledger
// assigns Height, Time and PrevHash, then computes Hash over every other field.
// After sealing, only the body is ever read again (via DecodeStar).
package block

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// genesisData is the fixed marker payload of the block at height 0.
const genesisData = "Genesis Block"

// Block is a single hash-linked record in the star chain.
type Block struct {
	Height   int    `json:"height"`
	Time     int64  `json:"time"` // unix seconds, assigned at append time
	PrevHash string `json:"previousBlockHash,omitempty"`
	Hash     string `json:"hash"`
	Body     string `json:"body"` // hex-encoded JSON payload
}

// StarPayload is the decoded body of every non-genesis block.
type StarPayload struct {
	Owner string          `json:"owner"`
	Star  json.RawMessage `json:"star"`
}

// New creates an unsealed block whose body is the hex-encoded JSON of payload.
// Height, Time, PrevHash and Hash are zero until the ledger seals the block.
func New(payload any) (*Block, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode block body: %w", err)
	}
	return &Block{Body: hex.EncodeToString(raw)}, nil
}

// NewGenesis creates the unsealed genesis block carrying the fixed marker body.
func NewGenesis() *Block {
	b, _ := New(map[string]string{"data": genesisData}) // fixed payload cannot fail to marshal
	return b
}

// ComputeHash returns the hex SHA-256 digest over every sealed field of b
// except the stored hash itself. Omitting any field here would open a
// tamper-detection gap, so Height, Time, PrevHash and Body are all covered.
func (b *Block) ComputeHash() string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s|%s", b.Height, b.Time, b.PrevHash, b.Body)
	return hex.EncodeToString(h.Sum(nil))
}

// Validate reports whether the stored hash still matches a fresh recomputation
// over the block's content.
func (b *Block) Validate() bool {
	return b.Hash == b.ComputeHash()
}

// IsGenesis reports whether b is the height-0 block.
func (b *Block) IsGenesis() bool {
	return b.Height == 0
}

// DecodeStar decodes the block body into its owner/star payload.
// It fails on the genesis block and on any malformed body; callers treat the
// failure as recoverable (log and skip).
func (b *Block) DecodeStar() (*StarPayload, error) {
	raw, err := hex.DecodeString(b.Body)
	if err != nil {
		return nil, fmt.Errorf("decode block body hex: %w", err)
	}
	var p StarPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode block payload: %w", err)
	}
	if p.Owner == "" {
		return nil, fmt.Errorf("block payload has no owner")
	}
	return &p, nil
}
