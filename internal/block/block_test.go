package block_test

import (
	"encoding/json"
	"testing"

	"github.com/star-registry/starchain/internal/block"
)

func TestNew_bodyRoundTrips(t *testing.T) {
	payload := block.StarPayload{
		Owner: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		Star:  json.RawMessage(`{"dec":"68d 52' 56.9","ra":"16h 29m 1.0s","story":"test star"}`),
	}
	b, err := block.New(payload)
	if err != nil {
		t.Fatal(err)
	}

	got, err := b.DecodeStar()
	if err != nil {
		t.Fatal(err)
	}
	if got.Owner != payload.Owner {
		t.Errorf("owner: got %q, want %q", got.Owner, payload.Owner)
	}
}

func TestComputeHash_deterministic(t *testing.T) {
	b := block.NewGenesis()
	b.Height = 0
	b.Time = 1_700_000_000
	b.Hash = b.ComputeHash()

	if b.ComputeHash() != b.Hash {
		t.Error("ComputeHash is not deterministic")
	}
	if !b.Validate() {
		t.Error("freshly sealed block must self-validate")
	}
}

func TestComputeHash_coversEveryField(t *testing.T) {
	seal := func(mutate func(*block.Block)) string {
		b := block.NewGenesis()
		b.Height = 3
		b.Time = 1_700_000_000
		b.PrevHash = "abc"
		mutate(b)
		return b.ComputeHash()
	}

	base := seal(func(*block.Block) {})
	cases := map[string]func(*block.Block){
		"height":   func(b *block.Block) { b.Height = 4 },
		"time":     func(b *block.Block) { b.Time = 1_700_000_001 },
		"prevHash": func(b *block.Block) { b.PrevHash = "def" },
		"body":     func(b *block.Block) { b.Body = "00" },
	}
	for name, mutate := range cases {
		if seal(mutate) == base {
			t.Errorf("changing %s did not change the hash", name)
		}
	}
}

func TestValidate_detectsTampering(t *testing.T) {
	b, err := block.New(block.StarPayload{Owner: "addr", Star: json.RawMessage(`{}`)})
	if err != nil {
		t.Fatal(err)
	}
	b.Height = 1
	b.Time = 1_700_000_000
	b.PrevHash = "prev"
	b.Hash = b.ComputeHash()

	tampered := block.NewGenesis()
	b.Body = tampered.Body
	if b.Validate() {
		t.Error("Validate() passed after body tampering")
	}
}

func TestDecodeStar_genesisFails(t *testing.T) {
	g := block.NewGenesis()
	if _, err := g.DecodeStar(); err == nil {
		t.Error("expected decode failure on genesis body")
	}
}

func TestDecodeStar_malformedBody(t *testing.T) {
	b := &block.Block{Body: "not-hex"}
	if _, err := b.DecodeStar(); err == nil {
		t.Error("expected decode failure on non-hex body")
	}

	b = &block.Block{Body: "00ff"} // valid hex, invalid JSON
	if _, err := b.DecodeStar(); err == nil {
		t.Error("expected decode failure on non-JSON body")
	}
}
