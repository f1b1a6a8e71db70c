// Package signature implements Bitcoin signed-message verification, the
// cryptographic primitive gating writes to the star chain.
//
// The scheme is the standard one used by wallet "sign message" features: the
// message is framed with the magic prefix, double-SHA256 hashed, and signed
// with a compact recoverable secp256k1 signature. Verification recovers the
// public key from the signature and checks that its P2PKH address equals the
// claimed one.
package signature

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

// messageMagic is the prefix framing every signed message.
const messageMagic = "Bitcoin Signed Message:\n"

// Verifier checks message signatures against addresses on a fixed network.
type Verifier struct {
	params *chaincfg.Params
}

// NewVerifier creates a Verifier for the given network parameters.
// Pass nil to verify against mainnet addresses.
func NewVerifier(params *chaincfg.Params) *Verifier {
	if params == nil {
		params = &chaincfg.MainNetParams
	}
	return &Verifier{params: params}
}

// Verify reports whether signature is a valid signed-message signature over
// message by the key behind address. signature is base64-encoded compact form.
// A structurally broken signature is an error; a well-formed signature that
// recovers to a different address is simply false.
func (v *Verifier) Verify(message, address, signature string) (bool, error) {
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, fmt.Errorf("decode signature base64: %w", err)
	}

	pub, compressed, err := ecdsa.RecoverCompact(sig, messageDigest(message))
	if err != nil {
		return false, fmt.Errorf("recover public key: %w", err)
	}

	var serialized []byte
	if compressed {
		serialized = pub.SerializeCompressed()
	} else {
		serialized = pub.SerializeUncompressed()
	}

	recovered, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(serialized), v.params)
	if err != nil {
		return false, fmt.Errorf("derive address: %w", err)
	}
	return recovered.EncodeAddress() == address, nil
}

// Sign produces the base64 compact signature over message with key.
// compressed must match the form of the public key behind the signer's address.
func Sign(message string, key *btcec.PrivateKey, compressed bool) (string, error) {
	sig := ecdsa.SignCompact(key, messageDigest(message), compressed)
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Address returns the P2PKH address of key's public key on the given network.
func Address(key *btcec.PrivateKey, compressed bool, params *chaincfg.Params) (string, error) {
	if params == nil {
		params = &chaincfg.MainNetParams
	}
	var serialized []byte
	if compressed {
		serialized = key.PubKey().SerializeCompressed()
	} else {
		serialized = key.PubKey().SerializeUncompressed()
	}
	addr, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(serialized), params)
	if err != nil {
		return "", fmt.Errorf("derive address: %w", err)
	}
	return addr.EncodeAddress(), nil
}

// messageDigest returns the double-SHA256 digest of the magic-framed message.
func messageDigest(message string) []byte {
	var buf bytes.Buffer
	_ = wire.WriteVarString(&buf, 0, messageMagic) // bytes.Buffer writes cannot fail
	_ = wire.WriteVarString(&buf, 0, message)
	first := sha256.Sum256(buf.Bytes())
	second := sha256.Sum256(first[:])
	return second[:]
}
