// Package codes generates the identifiers attached to exported products:
// random alphanumeric stock codes and EAN-13 product codes.
package codes

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

// DefaultStockCodeLength is the stock code length used by exports.
const DefaultStockCodeLength = 12

const stockCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// EANPrefixes is the fixed prefix rotation used by EANGenerator.
var EANPrefixes = []string{"594", "590", "599", "520", "560"}

// StockCode returns a random code over [A-Z0-9]. Lengths <= 0 fall back to
// DefaultStockCodeLength. Uniqueness is the caller's problem.
func StockCode(length int) string {
	if length <= 0 {
		length = DefaultStockCodeLength
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(stockCodeAlphabet[rand.IntN(len(stockCodeAlphabet))])
	}
	return b.String()
}

// EANGenerator builds EAN-13 codes, cycling through EANPrefixes in order.
// The rotation position survives across Next calls until Reset.
type EANGenerator struct {
	mu       sync.Mutex
	prefixes []string
	next     int
}

// NewEANGenerator returns a generator positioned at the first prefix.
func NewEANGenerator() *EANGenerator {
	return &EANGenerator{prefixes: EANPrefixes}
}

// Reset rewinds the prefix rotation. Exports call it once per run.
func (g *EANGenerator) Reset() {
	g.mu.Lock()
	g.next = 0
	g.mu.Unlock()
}

// Next returns a 13-digit code: prefix, 9 random digits, check digit.
func (g *EANGenerator) Next() string {
	g.mu.Lock()
	if g.next >= len(g.prefixes) {
		g.next = 0
	}
	prefix := g.prefixes[g.next]
	g.next++
	g.mu.Unlock()

	body := prefix + fmt.Sprintf("%09d", rand.IntN(1_000_000_000))
	check, _ := CheckDigit(body)
	return body + string(rune('0'+check))
}

// CheckDigit computes the EAN-13 check digit for a 12-digit body.
// Odd positions (1-based) weigh 1, even positions weigh 3.
func CheckDigit(body string) (int, error) {
	if len(body) != 12 {
		return 0, fmt.Errorf("ean body must have 12 digits, got %d", len(body))
	}
	total := 0
	for i := 0; i < 12; i++ {
		c := body[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("ean body contains non-digit %q", c)
		}
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		total += d
	}
	return (10 - total%10) % 10, nil
}

// ValidEAN reports whether code is 13 digits with a matching check digit.
func ValidEAN(code string) bool {
	if len(code) != 13 {
		return false
	}
	want, err := CheckDigit(code[:12])
	if err != nil {
		return false
	}
	last := code[12]
	return last >= '0' && last <= '9' && int(last-'0') == want
}
