package domain

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// AnonymousVote carries no voter identity. The receipt handed back to the
// voter is the only link, and it is never stored next to a voter id.
type AnonymousVote struct {
	Receipt     string      `json:"receipt"`
	ElectionID  string      `json:"election_id"`
	Selections  []Selection `json:"selections"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

const receiptBytes = 32

// MaxReceiptAttempts bounds regeneration after receipt collisions.
const MaxReceiptAttempts = 5

// NewReceipt returns a 256-bit random token, base64url encoded.
func NewReceipt() (string, error) {
	b := make([]byte, receiptBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// CoarsenSubmittedAt truncates t so vote timestamps cannot be joined
// against ballot completion times. A non-positive granularity keeps
// second precision.
func CoarsenSubmittedAt(t time.Time, granularity time.Duration) time.Time {
	if granularity <= 0 {
		granularity = time.Second
	}
	return t.UTC().Truncate(granularity)
}
