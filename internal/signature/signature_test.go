package signature_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/star-registry/starchain/internal/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *btcec.PrivateKey {
	t.Helper()
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return key
}

func TestVerify_validSignature(t *testing.T) {
	for _, compressed := range []bool{true, false} {
		key := newKey(t)
		addr, err := signature.Address(key, compressed, nil)
		require.NoError(t, err)

		msg := addr + ":1700000000:starRegistry"
		sig, err := signature.Sign(msg, key, compressed)
		require.NoError(t, err)

		v := signature.NewVerifier(nil)
		ok, err := v.Verify(msg, addr, sig)
		require.NoError(t, err)
		assert.True(t, ok, "compressed=%v", compressed)
	}
}

func TestVerify_wrongAddress(t *testing.T) {
	key := newKey(t)
	addr, err := signature.Address(key, true, nil)
	require.NoError(t, err)

	other, err := signature.Address(newKey(t), true, nil)
	require.NoError(t, err)

	msg := addr + ":1700000000:starRegistry"
	sig, err := signature.Sign(msg, key, true)
	require.NoError(t, err)

	ok, err := signature.NewVerifier(nil).Verify(msg, other, sig)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_tamperedMessage(t *testing.T) {
	key := newKey(t)
	addr, err := signature.Address(key, true, nil)
	require.NoError(t, err)

	sig, err := signature.Sign(addr+":1700000000:starRegistry", key, true)
	require.NoError(t, err)

	// A different message recovers a different key, so the address comparison
	// fails; structurally the signature is still fine.
	ok, err := signature.NewVerifier(nil).Verify(addr+":1700000001:starRegistry", addr, sig)
	if err == nil {
		assert.False(t, ok)
	}
}

func TestVerify_garbageSignature(t *testing.T) {
	v := signature.NewVerifier(nil)

	_, err := v.Verify("msg", "addr", "!!!not-base64!!!")
	assert.Error(t, err)

	_, err = v.Verify("msg", "addr", "AAAA") // too short to be a compact signature
	assert.Error(t, err)
}

func TestAddress_networkDependent(t *testing.T) {
	key := newKey(t)

	main, err := signature.Address(key, true, &chaincfg.MainNetParams)
	require.NoError(t, err)
	test, err := signature.Address(key, true, &chaincfg.TestNet3Params)
	require.NoError(t, err)

	assert.NotEqual(t, main, test)
}
