// Package bigint provides the arbitrary-precision signed integers
// used for literal arithmetic and range checks (§3, component 3).
//
// The representation is math/big.Int — no pack dependency offers an
// arbitrary-precision integer type of its own (see DESIGN.md), so the
// core representation is the standard library, the same choice the
// Go compiler itself makes in go/constant. Multiplication of large
// magnitudes is accelerated with github.com/remyoudompheng/bigfft,
// repurposed here from playbymail-ottomap's dependency tree (pulled
// in there transitively via modernc.org/sqlite's decimal math).
package bigint

import (
	"math/big"

	"github.com/remyoudompheng/bigfft"
)

// Int is an arbitrary-precision signed integer.
type Int struct {
	v *big.Int
}

// bigfftThreshold is the word count above which bigfft.Mul beats
// big.Int.Mul; below it, schoolbook/Karatsuba in math/big already
// wins and the FFT setup cost is not worth paying. 128 64-bit words
// is bigfft's own published crossover neighborhood.
const bigfftThreshold = 128

// Zero is the additive identity. Callers must not mutate its
// internal state; use Zero.Add(x) style construction instead,
// mirroring the immutable-until-composed Typespec discipline in §3.4.
var Zero = FromInt64(0)

// FromInt64 builds an Int from a native signed 64-bit value.
func FromInt64(n int64) Int {
	return Int{v: big.NewInt(n)}
}

// FromUint64 builds an Int from a native unsigned 64-bit value.
func FromUint64(n uint64) Int {
	return Int{v: new(big.Int).SetUint64(n)}
}

// Parse builds an Int from decimal digits with embedded '_' visual
// separators already stripped by the lexer (§4.2). base is always 10
// for Aria integer literals; the parameter exists so tests can drive
// other bases without duplicating the digit-accumulation logic.
func Parse(digits string, base int) (Int, bool) {
	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return Int{}, false
	}
	return Int{v: v}, true
}

func (a Int) bigOrZero() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// String renders the decimal form, including a leading '-' for
// negative values.
func (a Int) String() string { return a.bigOrZero().String() }

// Sign returns -1, 0, or 1.
func (a Int) Sign() int { return a.bigOrZero().Sign() }

// Neg returns -a.
func (a Int) Neg() Int { return Int{v: new(big.Int).Neg(a.bigOrZero())} }

// Add returns a+b.
func (a Int) Add(b Int) Int { return Int{v: new(big.Int).Add(a.bigOrZero(), b.bigOrZero())} }

// Sub returns a-b.
func (a Int) Sub(b Int) Int { return Int{v: new(big.Int).Sub(a.bigOrZero(), b.bigOrZero())} }

// Mul returns a*b, routing through bigfft once both operands are
// large enough that the FFT setup cost pays for itself.
func (a Int) Mul(b Int) Int {
	x, y := a.bigOrZero(), b.bigOrZero()
	if len(x.Bits()) >= bigfftThreshold && len(y.Bits()) >= bigfftThreshold {
		return Int{v: bigfft.Mul(x, y)}
	}
	return Int{v: new(big.Int).Mul(x, y)}
}

// DivMod returns the truncated quotient and remainder of a/b. ok is
// false when b is zero; the type checker is responsible for reporting
// "division by zero (comptime)" per §4.5.4 rather than this package
// panicking.
func (a Int) DivMod(b Int) (quo, rem Int, ok bool) {
	if b.Sign() == 0 {
		return Int{}, Int{}, false
	}
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(a.bigOrZero(), b.bigOrZero(), r)
	return Int{v: q}, Int{v: r}, true
}

// Cmp returns -1, 0, or 1 comparing a to b.
func (a Int) Cmp(b Int) int { return a.bigOrZero().Cmp(b.bigOrZero()) }

// BitLen returns the number of bits required to hold |a|, matching
// the original C implementation's bigint_bitlength.
func (a Int) BitLen() int { return a.bigOrZero().BitLen() }

// Fits reports whether a is representable in a two's-complement
// integer of the given byte width and signedness — the core of
// §4.5.2's assignability rule for comptime_integer -> sized integer.
func (a Int) Fits(bytes int, signed bool) bool {
	bits := uint(bytes * 8)
	if signed {
		// range is [-2^(bits-1), 2^(bits-1)-1]
		min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), bits-1))
		max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits-1), big.NewInt(1))
		return a.bigOrZero().Cmp(min) >= 0 && a.bigOrZero().Cmp(max) <= 0
	}
	if a.Sign() < 0 {
		return false
	}
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bits), big.NewInt(1))
	return a.bigOrZero().Cmp(max) <= 0
}

// FitsUint64 reports whether a fits in a native uint64, used by the
// checker's 64-bit overflow check on raw literals (§4.5.4: "Range-check
// the raw literal against a 64-bit bound"); an unsuffixed literal is
// never negative before a unary '-' is applied, so the bound is
// unsigned.
func (a Int) FitsUint64() bool { return a.Fits(8, false) }
