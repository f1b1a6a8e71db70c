// Package client provides the Go SDK for talking to a starchain registry:
// requesting challenges, submitting signed stars, and reading the chain back.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned by the block lookups when no block matches.
// Absence is a valid outcome; callers should not treat it as a transport failure.
var ErrNotFound = errors.New("block not found")

// Block mirrors the registry's sealed block representation.
type Block struct {
	Height   int    `json:"height"`
	Time     int64  `json:"time"`
	PrevHash string `json:"previousBlockHash,omitempty"`
	Hash     string `json:"hash"`
	Body     string `json:"body"`
}

// Star is one owner-scoped decoded payload.
type Star struct {
	Owner string          `json:"owner"`
	Star  json.RawMessage `json:"star"`
}

// Violation mirrors one integrity violation reported by the validator.
type Violation struct {
	Height int    `json:"height"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

// ValidationResult is the outcome of a full-chain validation.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

// ChainInfo is the registry's chain overview.
type ChainInfo struct {
	Height int    `json:"height"`
	Tip    string `json:"tip"`
}

// SubmitStarRequest is the payload for SubmitStar.
type SubmitStarRequest struct {
	Address   string          `json:"address"`
	Message   string          `json:"message"`
	Signature string          `json:"signature"`
	Star      json.RawMessage `json:"star"`
}

// Client is the starchain SDK entry point.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the registry at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestChallenge asks the registry for the challenge message to sign for address.
func (c *Client) RequestChallenge(ctx context.Context, address string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/v1/challenge",
		map[string]string{"address": address}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SubmitStar submits a signed star registration and returns the sealed block.
func (c *Client) SubmitStar(ctx context.Context, req SubmitStarRequest) (*Block, error) {
	var b Block
	if err := c.do(ctx, http.MethodPost, "/api/v1/stars", req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// BlockByHeight fetches the block at the given height.
func (c *Client) BlockByHeight(ctx context.Context, height int) (*Block, error) {
	var b Block
	err := c.do(ctx, http.MethodGet, "/api/v1/blocks/height/"+strconv.Itoa(height), nil, &b)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BlockByHash fetches the block with the given hash.
func (c *Client) BlockByHash(ctx context.Context, hash string) (*Block, error) {
	var b Block
	if err := c.do(ctx, http.MethodGet, "/api/v1/blocks/hash/"+hash, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// StarsByOwner lists the stars registered by address, in chain order.
func (c *Client) StarsByOwner(ctx context.Context, address string) ([]Star, error) {
	var resp struct {
		Stars []Star `json:"stars"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/stars/"+address, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stars, nil
}

// Chain fetches the chain overview.
func (c *Client) Chain(ctx context.Context) (*ChainInfo, error) {
	var info ChainInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/chain", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Validate runs a full-chain integrity check on the registry.
func (c *Client) Validate(ctx context.Context) (*ValidationResult, error) {
	var res ValidationResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/chain/validate", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// do performs one JSON round trip against the registry.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
