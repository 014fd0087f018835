// Package identity provides the pseudonymous fingerprint used to
// deduplicate likes. A fingerprint is not a security boundary: clients
// can reset or forge it at will.
package identity

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	// Anonymous is used when the client supplies no usable fingerprint.
	Anonymous = "anonymous"
	// Prefix starts every generated fingerprint.
	Prefix = "fp_"
	// HeaderName carries the fingerprint on API requests.
	HeaderName = "X-Fingerprint"
	// LocalsKey is the fiber.Ctx locals key holding the request fingerprint.
	LocalsKey = "fingerprint"
	// MaxLength bounds accepted fingerprints.
	MaxLength = 128
)

// randomFragmentLimit is 36^10, giving ten base-36 digits at most.
var randomFragmentLimit = new(big.Int).Exp(big.NewInt(36), big.NewInt(10), nil)

var now = time.Now

// NewFingerprint returns "fp_" followed by a random base-36 fragment and a
// base-36 millisecond timestamp.
func NewFingerprint() (string, error) {
	n, err := rand.Int(rand.Reader, randomFragmentLimit)
	if err != nil {
		return "", err
	}
	return Prefix + n.Text(36) + strconv.FormatInt(now().UnixMilli(), 36), nil
}

// Sanitize returns fp when it is a plausible fingerprint, else Anonymous.
func Sanitize(fp string) string {
	if fp == "" || len(fp) > MaxLength {
		return Anonymous
	}
	for i := 0; i < len(fp); i++ {
		ch := fp[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '_', ch == '-':
		default:
			return Anonymous
		}
	}
	return fp
}

// FromCtx returns the fingerprint stored by Middleware, or Anonymous.
func FromCtx(c *fiber.Ctx) string {
	if fp, ok := c.Locals(LocalsKey).(string); ok && fp != "" {
		return fp
	}
	return Anonymous
}
