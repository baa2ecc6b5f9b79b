package deliveries

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

const (
	MinPin = 1000
	MaxPin = 9999
)

var pinSpan = big.NewInt(MaxPin - MinPin + 1)

// GeneratePin draws a handoff PIN uniformly from [MinPin, MaxPin].
func GeneratePin() (int, error) {
	n, err := rand.Int(rand.Reader, pinSpan)
	if err != nil {
		return 0, err
	}
	return MinPin + int(n.Int64()), nil
}

// PinMatches compares a candidate against the stored PIN numerically, so
// "0042", "42" and "42.0" all match 42. Unparseable input never matches.
func PinMatches(stored *int, candidate string) bool {
	if stored == nil {
		return false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(candidate), 64)
	if err != nil {
		return false
	}
	return value == float64(*stored)
}
