package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const (
	orderIDSuffixLen = 8
	orderIDAlphabet  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// OrderIDGenerator produces human readable order codes.
type OrderIDGenerator func(now time.Time) (string, error)

// NewOrderIDGenerator returns a generator of codes shaped PREFIX-YYYYMMDD-XXXXXXXX
// where the date is UTC and the suffix is random base36.
func NewOrderIDGenerator(prefix string) OrderIDGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "ORD"
	}
	return func(now time.Time) (string, error) {
		suffix, err := randomBase36(orderIDSuffixLen)
		if err != nil {
			return "", fmt.Errorf("generate order id: %w", err)
		}
		return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix), nil
	}
}

func randomBase36(n int) (string, error) {
	limit := big.NewInt(int64(len(orderIDAlphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(orderIDAlphabet[idx.Int64()])
	}
	return b.String(), nil
}
