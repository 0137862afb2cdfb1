package contract

import (
	"math/bits"

	"lukechampine.com/uint128"
)

// mulDiv64 computes floor(a*b/d) with a 128-bit intermediate. ok is false when d is zero or
// the quotient does not fit in 64 bits.
func mulDiv64(a, b, d uint64) (q uint64, ok bool) {
	if d == 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, false
	}
	q, _ = bits.Div64(hi, lo, d)
	return q, true
}

// addU64 is a checked add.
func addU64(a, b uint64) (uint64, bool) {
	s, carry := bits.Add64(a, b, 0)
	return s, carry == 0
}

// subU64 is a checked sub.
func subU64(a, b uint64) (uint64, bool) {
	d, borrow := bits.Sub64(a, b, 0)
	return d, borrow == 0
}

// addU128 is a checked add on the accumulator type.
func addU128(a, b uint128.Uint128) (uint128.Uint128, bool) {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	hi, carry := bits.Add64(a.Hi, b.Hi, carry)
	return uint128.New(lo, hi), carry == 0
}

// mulU128By64 multiplies a u128 by a u64, failing when the product needs more than 128 bits.
func mulU128By64(a uint128.Uint128, b uint64) (uint128.Uint128, bool) {
	hiHi, hiLo := bits.Mul64(a.Hi, b)
	if hiHi != 0 {
		return uint128.Zero, false
	}
	loHi, loLo := bits.Mul64(a.Lo, b)
	hi, carry := bits.Add64(hiLo, loHi, 0)
	if carry != 0 {
		return uint128.Zero, false
	}
	return uint128.New(loLo, hi), true
}
