package challenge_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/star-registry/starchain/internal/challenge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addr = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

func TestNew_shape(t *testing.T) {
	before := time.Now().Unix()
	msg := challenge.New(addr)
	after := time.Now().Unix()

	parsed, issuedAt, err := challenge.Parse(msg)
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
	assert.GreaterOrEqual(t, issuedAt.Unix(), before)
	assert.LessOrEqual(t, issuedAt.Unix(), after)
}

func TestParse_malformed(t *testing.T) {
	cases := []string{
		"",
		addr,
		addr + ":12345",
		addr + ":12345:wrongDomain",
		addr + ":notanumber:starRegistry",
		":12345:starRegistry",
		addr + ":12345:starRegistry:extra",
	}
	for _, msg := range cases {
		_, _, err := challenge.Parse(msg)
		assert.ErrorIs(t, err, challenge.ErrMalformed, "message %q", msg)
	}
}

func TestExpired_window(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.False(t, challenge.Expired(now, now))
	assert.False(t, challenge.Expired(now.Add(-challenge.Window), now), "exactly at the window edge still passes")
	assert.True(t, challenge.Expired(now.Add(-challenge.Window-time.Second), now))
}

func TestParse_roundTripsArbitraryTimestamp(t *testing.T) {
	msg := fmt.Sprintf("%s:%d:%s", addr, 1_600_000_000, challenge.Domain)
	_, issuedAt, err := challenge.Parse(msg)
	require.NoError(t, err)
	assert.Equal(t, int64(1_600_000_000), issuedAt.Unix())
}
