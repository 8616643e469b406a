// internal/types/types.go
package types

import (
	"errors"
	"math/big"
)

// Address identifies a principal on the ledgers (holder, admin, treasury,
// market, router). The market never interprets the contents beyond equality.
type Address string

// String implements fmt.Stringer.
func (a Address) String() string { return string(a) }

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == "" }

// ErrBadAmount is returned when a request amount is not an unsigned base-10
// integer that fits 256 bits.
var ErrBadAmount = errors.New("amount must be an unsigned 256-bit base-10 integer")

// maxUint256 bounds every externally supplied amount; the curve's arithmetic
// is specified over 256-bit unsigned integers.
var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ParseAmount parses a wei-denominated amount from its decimal string form.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 || v.Cmp(maxUint256) > 0 {
		return nil, ErrBadAmount
	}
	return v, nil
}
