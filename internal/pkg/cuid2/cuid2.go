// Package cuid2 generates prefixed, time-sortable random identifiers such as
// "chg_1rK5iqa8Xb2..." used for change-sets.
package cuid2

import (
	crypto_rand "crypto/rand"
	"fmt"
	"strings"
	"time"
)

// Base62 alphabet: 0-9, A-Z, a-z
const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	timestampLength = 6
	// DefaultRandomLength is the random suffix length after the timestamp
	DefaultRandomLength = 18
)

// EncodeTimestamp encodes Unix seconds as 6 base62 characters. Output sorts
// lexicographically in time order up to ~56 billion seconds.
func EncodeTimestamp(seconds int64) string {
	n := seconds
	result := make([]byte, timestampLength)
	for i := timestampLength - 1; i >= 0; i-- {
		result[i] = base62Alphabet[n%62]
		n /= 62
	}
	return string(result)
}

// DecodeTimestamp reverses EncodeTimestamp
func DecodeTimestamp(s string) (int64, error) {
	if len(s) != timestampLength {
		return 0, fmt.Errorf("timestamp must be %d characters, got %d", timestampLength, len(s))
	}
	var n int64
	for _, c := range s {
		idx := strings.IndexRune(base62Alphabet, c)
		if idx < 0 {
			return 0, fmt.Errorf("invalid base62 character %q", c)
		}
		n = n*62 + int64(idx)
	}
	return n, nil
}

// randomString returns length uniformly distributed base62 characters, taking 6 bits at
// a time from crypto/rand and rejecting values >= 62.
func randomString(length int) string {
	buf := make([]byte, (length*6)/8+4)
	mustRead(buf)

	var result strings.Builder
	result.Grow(length)
	var bits uint64
	var nbits uint
	pos := 0

	for result.Len() < length {
		for nbits < 6 && pos < len(buf) {
			bits = (bits << 8) | uint64(buf[pos])
			nbits += 8
			pos++
		}

		value := (bits >> (nbits - 6)) & 0x3f
		nbits -= 6
		if value < 62 {
			result.WriteByte(base62Alphabet[value])
		}

		if pos >= len(buf) && result.Len() < length && nbits < 6 {
			mustRead(buf)
			pos = 0
		}
	}

	return result.String()
}

func mustRead(buf []byte) {
	if _, err := crypto_rand.Read(buf); err != nil {
		panic("failed to read random bytes: " + err.Error())
	}
}

// Generator produces ids from an injectable clock
type Generator struct {
	now          func() time.Time
	randomLength int
}

// NewGenerator creates a Generator. A nil clock means time.Now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now, randomLength: DefaultRandomLength}
}

// New returns "<prefix>_<timestamp><random>"
func (g *Generator) New(prefix string) string {
	return prefix + "_" + EncodeTimestamp(g.now().Unix()) + randomString(g.randomLength)
}

var defaultGenerator = NewGenerator(nil)

// New returns a time-sortable id with the given prefix using the wall clock
func New(prefix string) string {
	return defaultGenerator.New(prefix)
}

// CreatedAt extracts the creation second encoded in an id
func CreatedAt(id string) (time.Time, error) {
	_, rest, ok := strings.Cut(id, "_")
	if !ok || len(rest) < timestampLength {
		return time.Time{}, fmt.Errorf("malformed id %q", id)
	}
	seconds, err := DecodeTimestamp(rest[:timestampLength])
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(seconds, 0).UTC(), nil
}
