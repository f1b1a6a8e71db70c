package chain

import "fmt"

// ViolationKind names an integrity invariant the validator can find broken.
type ViolationKind string

const (
	// ViolationSelfHash means a block's stored hash no longer matches a fresh
	// recomputation over its content.
	ViolationSelfHash ViolationKind = "self-hash mismatch"

	// ViolationLinkage means a block's previousBlockHash does not equal its
	// predecessor's hash (or the genesis block carries one at all).
	ViolationLinkage ViolationKind = "broken previous-hash linkage"
)

// Violation describes one integrity failure at a specific height.
type Violation struct {
	Height int           `json:"height"`
	Kind   ViolationKind `json:"kind"`
	Detail string        `json:"detail,omitempty"`
}

func (v Violation) String() string {
	return fmt.Sprintf("height %d: %s", v.Height, v.Kind)
}

// Validate walks the full chain once, in order, and runs both integrity checks
// on every block: the self-hash recomputation and the previous-hash linkage.
// A violation in one block does not stop evaluation of the rest, and the two
// checks are independent: a tampered body surfaces as a self-hash mismatch at
// that height only, not as linkage failures downstream.
//
// Validate only reads. A corrupted chain is reported, never repaired, and an
// empty slice means the chain is fully consistent.
func (bc *Blockchain) Validate() []Violation {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	violations := make([]Violation, 0)
	for i, b := range bc.blocks {
		if !b.Validate() {
			violations = append(violations, Violation{
				Height: b.Height,
				Kind:   ViolationSelfHash,
				Detail: fmt.Sprintf("stored hash %s does not match recomputed content hash", b.Hash),
			})
		}

		if i == 0 {
			if b.PrevHash != "" {
				violations = append(violations, Violation{
					Height: b.Height,
					Kind:   ViolationLinkage,
					Detail: "genesis block must not reference a previous hash",
				})
			}
			continue
		}
		if prev := bc.blocks[i-1]; b.PrevHash != prev.Hash {
			violations = append(violations, Violation{
				Height: b.Height,
				Kind:   ViolationLinkage,
				Detail: fmt.Sprintf("previousBlockHash %s does not match predecessor hash %s", b.PrevHash, prev.Hash),
			})
		}
	}
	return violations
}
