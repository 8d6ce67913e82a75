package subtle

import (
	"fmt"
	"math/big"
)

// Product returns the product of a non-uniform radix vector w, rejecting
// zero or negative elements.
func Product(w []int) (*big.Int, error) {
	out := big.NewInt(1)
	for _, e := range w {
		if e <= 0 {
			return nil, fmt.Errorf("subtle: Product: radix vector elements must be positive, got %d", e)
		}
		out.Mul(out, big.NewInt(int64(e)))
	}
	return out, nil
}

// Factors returns the prime factors (with multiplicity) of every element of
// w, computed via a sieve over [2, max(w)].
func Factors(w []int) ([]int, error) {
	max := 0
	for _, e := range w {
		if e <= 0 {
			return nil, fmt.Errorf("subtle: Factors: radix vector elements must be positive, got %d", e)
		}
		if e > max {
			max = e
		}
	}
	if max < 2 {
		return nil, nil
	}

	// Smallest-prime-factor sieve, a modified Sieve of Eratosthenes that
	// yields, for every k in [2, max], its least prime factor.
	spf := make([]int, max+1)
	for i := 2; i <= max; i++ {
		if spf[i] != 0 {
			continue
		}
		for j := i; j <= max; j += i {
			if spf[j] == 0 {
				spf[j] = i
			}
		}
	}

	var out []int
	for _, e := range w {
		n := e
		for n > 1 {
			p := spf[n]
			out = append(out, p)
			n /= p
		}
	}
	return out, nil
}

// Sqrt returns the integer (floor) square root of a nonnegative big
// integer, equivalent to iterating the Babylonian method to convergence.
func Sqrt(n *big.Int) (*big.Int, error) {
	if n.Sign() < 0 {
		return nil, fmt.Errorf("subtle: Sqrt: n must be nonnegative")
	}
	return new(big.Int).Sqrt(n), nil
}

// BitLen returns the number of bits needed to represent n, treating a
// nonpositive n as having bit length 0, matching bitlen(u-1)/bitlen(v-1) in
// the IFX round-count formula where u=1 or v=1 collapse to an empty factor.
func BitLen(n *big.Int) int {
	if n.Sign() <= 0 {
		return 0
	}
	return n.BitLen()
}

// Rounds computes the IFX round count
// 4*ceil((bitlen(u-1)+bitlen(v-1)) / min(bitlen(u-1), bitlen(v-1))).
func Rounds(u, v *big.Int) (int, error) {
	if u.Sign() <= 0 || v.Sign() <= 0 {
		return 0, fmt.Errorf("subtle: Rounds: u and v must be positive")
	}
	bu := BitLen(new(big.Int).Sub(u, big.NewInt(1)))
	bv := BitLen(new(big.Int).Sub(v, big.NewInt(1)))
	min := bu
	if bv < min {
		min = bv
	}
	if min == 0 {
		return 0, fmt.Errorf("subtle: Rounds: degenerate split (u or v too small)")
	}
	num := bu + bv
	r := (num + min - 1) / min
	return 4 * r, nil
}

// Padding returns k zero bytes.
func Padding(k int) []byte {
	return make([]byte, k)
}

// NumMixed treats x as a mixed-radix big-endian numeral, with per-position
// radix w, and returns the integer it represents:
// y = (((x[0]*w[1]) + x[1])*w[2] + ... )*w[n-1] + x[n-1].
func NumMixed(x []uint16, w []uint16) (*big.Int, error) {
	if len(x) != len(w) || len(x) == 0 {
		return nil, fmt.Errorf("subtle: NumMixed: x and w must be equal-length and nonempty")
	}
	out := new(big.Int)
	for i, digit := range x {
		if i > 0 {
			out.Mul(out, big.NewInt(int64(w[i])))
		}
		out.Add(out, big.NewInt(int64(digit)))
	}
	return out, nil
}

// StrMixed is the inverse of NumMixed.
func StrMixed(y *big.Int, w []uint16) ([]uint16, error) {
	if len(w) == 0 {
		return nil, fmt.Errorf("subtle: StrMixed: w must be nonempty")
	}
	if y.Sign() < 0 {
		return nil, fmt.Errorf("subtle: StrMixed: y must be nonnegative")
	}
	out := make([]uint16, len(w))
	t := new(big.Int).Set(y)
	rem := new(big.Int)
	for i := len(w) - 1; i >= 0; i-- {
		r := big.NewInt(int64(w[i]))
		t.DivMod(t, r, rem)
		out[i] = uint16(rem.Uint64())
	}
	return out, nil
}

// SignedBytes encodes x in minimal-length two's-complement big-endian form,
// matching java.math.BigInteger.toByteArray() semantics: the result always
// carries at least one sign bit, so nonnegative values with a set top bit
// get a leading 0x00 byte.
func SignedBytes(x *big.Int) []byte {
	if x.Sign() == 0 {
		return []byte{0}
	}
	if x.Sign() > 0 {
		b := x.Bytes()
		if b[0]&0x80 != 0 {
			return append([]byte{0}, b...)
		}
		return b
	}
	// Negative: two's complement of the minimal magnitude representation.
	mag := new(big.Int).Neg(x)
	// BitLen(mag-1), not BitLen(mag): magnitudes that are exact powers of
	// two (e.g. 128 for x=-128) need one fewer bit to represent mag-1,
	// which is what determines whether the top bit of the minimal
	// two's-complement encoding is already set.
	nbits := new(big.Int).Sub(mag, big.NewInt(1)).BitLen()
	nbytes := nbits/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(8*nbytes))
	twos := new(big.Int).Sub(mod, mag)
	b := twos.Bytes()
	out := make([]byte, nbytes)
	copy(out[nbytes-len(b):], b)
	return out
}

// SignedInt decodes a minimal-length two's-complement big-endian byte
// string into a signed integer, the inverse of SignedBytes.
func SignedInt(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
		out.Sub(out, mod)
	}
	return out
}
