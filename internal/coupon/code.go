// Package coupon generates the redemption codes printed on each coupon.
package coupon

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// alphabet is the character set redemption codes are drawn from.
// 36^7 combinations per prefix make collisions within one sheet negligible.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewCode returns a fresh redemption code of the form [PREFIX-]AAA-BBBB.
// The random parts come from crypto/rand; codes act as redemption tokens
// and must resist guessing. Safe for concurrent use.
func NewCode(prefix string) (string, error) {
	part1, err := randomPart(3)
	if err != nil {
		return "", err
	}
	part2, err := randomPart(4)
	if err != nil {
		return "", err
	}

	clean := CleanPrefix(prefix)
	if clean == "" {
		return part1 + "-" + part2, nil
	}
	return clean + "-" + part1 + "-" + part2, nil
}

// CleanPrefix normalizes a prefix cell value: upper-cased, trimmed, with
// null-like tokens collapsed to "". Spreadsheet exports commonly serialize
// empty cells as "nan" or "None".
func CleanPrefix(prefix string) string {
	p := strings.ToUpper(strings.TrimSpace(prefix))
	switch p {
	case "", "NAN", "NONE":
		return ""
	}
	return p
}

// EffectivePrefix picks the per-row override when it carries a usable value,
// otherwise the fallback.
func EffectivePrefix(override, fallback string) string {
	if CleanPrefix(override) != "" {
		return override
	}
	return fallback
}

func randomPart(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	size := big.NewInt(int64(len(alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("read secure random source: %w", err)
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}
