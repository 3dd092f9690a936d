// Package random supplies the uniform integer draws that seed opponent moves.
//
// The default Source reads from crypto/rand so draws cannot be predicted from
// earlier responses. Read failures surface as errors; callers treat them as
// fatal for the request.
package random

import (
	crand "crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// ErrEmptyRange is returned when Intn is asked for a range with no values.
var ErrEmptyRange = errors.New("random: empty range")

// Source draws an integer uniformly from [lo, hi).
type Source interface {
	Intn(lo, hi int) (int, error)
}

// Crypto is a Source backed by crypto/rand.
type Crypto struct{}

// NewCrypto returns the crypto/rand backed Source.
func NewCrypto() Crypto { return Crypto{} }

// Intn implements Source.
func (Crypto) Intn(lo, hi int) (int, error) {
	if hi <= lo {
		return 0, fmt.Errorf("%w: [%d, %d)", ErrEmptyRange, lo, hi)
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(hi-lo)))
	if err != nil {
		return 0, fmt.Errorf("read random draw: %w", err)
	}
	return lo + int(n.Int64()), nil
}

// Func adapts a plain function to Source. Handy for fixed draws in tests.
type Func func(lo, hi int) (int, error)

// Intn implements Source.
func (f Func) Intn(lo, hi int) (int, error) { return f(lo, hi) }
