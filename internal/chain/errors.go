package chain

import "errors"

// Sentinel errors returned by the gated write path. Both reject the specific
// call before anything touches the chain, so a failed submission never moves
// the height.
var (
	// ErrChallengeExpired means the challenge's embedded timestamp is older
	// than the freshness window. The client should request a new challenge.
	ErrChallengeExpired = errors.New("challenge expired")

	// ErrSignatureNotVerified means the verification primitive rejected the
	// (message, address, signature) triple.
	ErrSignatureNotVerified = errors.New("signature not verified")
)
