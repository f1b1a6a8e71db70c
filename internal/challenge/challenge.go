// Package challenge implements the ownership-proof challenge workflow.
//
// A challenge is a short-lived message the caller signs with the key behind
// their address. No issued-challenge state is kept server-side: freshness is
// recomputed from the timestamp embedded in the message at verification time.
package challenge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Domain is the fixed tag closing every challenge message.
const Domain = "starRegistry"

// Window is the freshness window: a challenge older than this is rejected.
const Window = 5 * time.Minute

// ErrMalformed is returned by Parse when a message does not have the
// "<address>:<unixSeconds>:starRegistry" shape.
var ErrMalformed = errors.New("malformed challenge message")

// New returns the challenge message for address, stamped with the current
// unix time at second resolution. Side-effect-free.
func New(address string) string {
	return fmt.Sprintf("%s:%d:%s", address, time.Now().Unix(), Domain)
}

// Parse extracts the address and issuance time embedded in a challenge message.
func Parse(message string) (address string, issuedAt time.Time, err error) {
	parts := strings.Split(message, ":")
	if len(parts) != 3 || parts[2] != Domain {
		return "", time.Time{}, ErrMalformed
	}
	sec, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || parts[0] == "" {
		return "", time.Time{}, ErrMalformed
	}
	return parts[0], time.Unix(sec, 0), nil
}

// Expired reports whether a challenge issued at issuedAt is stale at now.
// Elapsed time exactly equal to Window still passes.
func Expired(issuedAt, now time.Time) bool {
	return now.Sub(issuedAt) > Window
}
