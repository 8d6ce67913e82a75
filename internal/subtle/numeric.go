// Package subtle provides low-level cryptographic primitives for
// format-preserving encryption. This package contains the numeral-string
// and byte-string arithmetic required by NIST SP 800-38G (FF1, FF3) and by
// the FFX/IFX generalizations built on top of it.
//
// It should not be used directly by callers of this module; the exported
// drivers in the parent package wrap everything here behind a validated,
// higher-level API.
package subtle

import (
	"fmt"
	"math"
	"math/big"
)

// Radix and length bounds shared by every driver, per NIST SP 800-38G and
// the FFX generalization.
const (
	MinRadix = 2
	MaxRadix = 1 << 16
	// MaxLen bounds the size of symbol arrays and byte strings this
	// package will process. The spec allows lengths up to 2^32-1; we cap
	// at a value that keeps big.Int exponentiation and byte allocation
	// bounded on real hardware.
	MaxLen = 1 << 24
)

// Num interprets x as a big-endian numeral string in base radix and
// returns the integer it represents.
func Num(x []uint16, radix uint32) (*big.Int, error) {
	if radix < MinRadix || radix > MaxRadix {
		return nil, fmt.Errorf("subtle: radix %d out of range [%d, %d]", radix, MinRadix, MaxRadix)
	}
	if len(x) < 1 || len(x) > MaxLen {
		return nil, fmt.Errorf("subtle: numeral string length %d out of range [1, %d]", len(x), MaxLen)
	}
	out := new(big.Int)
	r := new(big.Int).SetUint64(uint64(radix))
	for _, digit := range x {
		if uint32(digit) >= radix {
			return nil, fmt.Errorf("subtle: numeral %d not in [0, %d)", digit, radix)
		}
		out.Mul(out, r)
		out.Add(out, big.NewInt(int64(digit)))
	}
	return out, nil
}

// NumBytes interprets b as a nonnegative big-endian integer. Unlike
// SignedInt in ifx.go, this never treats the leading bit as a sign bit.
func NumBytes(b []byte) (*big.Int, error) {
	if len(b) < 1 || len(b) > MaxLen {
		return nil, fmt.Errorf("subtle: byte string length %d out of range [1, %d]", len(b), MaxLen)
	}
	return new(big.Int).SetBytes(b), nil
}

// Str is the inverse of Num: it encodes x as an m-element numeral array in
// base radix, padded on the left with zeros. x must satisfy 0 <= x < radix^m.
func Str(x *big.Int, radix, m uint32) ([]uint16, error) {
	if radix < MinRadix || radix > MaxRadix {
		return nil, fmt.Errorf("subtle: radix %d out of range [%d, %d]", radix, MinRadix, MaxRadix)
	}
	if m < 1 || m > MaxLen {
		return nil, fmt.Errorf("subtle: length %d out of range [1, %d]", m, MaxLen)
	}
	if x.Sign() < 0 {
		return nil, fmt.Errorf("subtle: Str: x must be nonnegative")
	}
	r := new(big.Int).SetUint64(uint64(radix))
	max := new(big.Int).Exp(r, new(big.Int).SetUint64(uint64(m)), nil)
	if x.Cmp(max) >= 0 {
		return nil, fmt.Errorf("subtle: Str: x must be < radix^m")
	}

	out := make([]uint16, m)
	rem := new(big.Int)
	t := new(big.Int).Set(x)
	for i := uint32(0); i < m; i++ {
		t.DivMod(t, r, rem)
		out[m-i-1] = uint16(rem.Uint64())
	}
	return out, nil
}

// Rev returns x with its numerals in reverse order.
func Rev(x []uint16) []uint16 {
	out := make([]uint16, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}

// RevB returns b with its bytes in reverse order.
func RevB(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// Xor computes the element-wise xor of two equal-length, nonempty byte
// strings.
func Xor(a, b []byte) ([]byte, error) {
	if len(a) == 0 || len(a) != len(b) {
		return nil, fmt.Errorf("subtle: Xor requires equal, nonempty operands (got %d, %d)", len(a), len(b))
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

// Mod returns the Euclidean (always-nonnegative) remainder of a modulo m.
func Mod(a, m *big.Int) (*big.Int, error) {
	if m.Sign() <= 0 {
		return nil, fmt.Errorf("subtle: Mod: modulus must be positive")
	}
	out := new(big.Int).Mod(a, m)
	return out, nil
}

// Bytestring encodes the nonnegative integer x as exactly s big-endian
// bytes. s=0 with x=0 yields the empty sequence.
func Bytestring(x *big.Int, s int) ([]byte, error) {
	if s < 0 {
		return nil, fmt.Errorf("subtle: Bytestring: length must be nonnegative")
	}
	if x.Sign() < 0 {
		return nil, fmt.Errorf("subtle: Bytestring: x must be nonnegative")
	}
	max := new(big.Int).Lsh(big.NewInt(1), uint(8*s))
	if x.Cmp(max) >= 0 {
		return nil, fmt.Errorf("subtle: Bytestring: x must be < 256^%d", s)
	}
	out := make([]byte, s)
	raw := x.Bytes()
	copy(out[s-len(raw):], raw)
	return out, nil
}

// Log2 returns the base-2 logarithm of x.
func Log2(x float64) float64 { return math.Log2(x) }

// Floor and Ceiling operate on floating-point inputs deliberately, to
// preclude accidental integer division at call sites.
func Floor(x float64) float64   { return math.Floor(x) }
func Ceiling(x float64) float64 { return math.Ceil(x) }

// ConcatSymbols joins two numeral arrays.
func ConcatSymbols(a, b []uint16) []uint16 {
	out := make([]uint16, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// ConcatBytes joins two byte strings.
func ConcatBytes(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
