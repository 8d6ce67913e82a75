package fpe

import (
	"math/big"

	"github.com/vaultedge/fpe/internal/subtle"
)

// arithmetic combines a numeral string x with a round function's output f,
// both of equal length, into a result of that length: blockwise strategies
// work modulo radix^len(x), charwise per position modulo radix. FFX parameter packs select one
// of the three strategies below; this is what spec.md §4.3 calls "blockwise"
// or "charwise" arithmetic, plus FF3's reversed-blockwise variant.
type arithmetic interface {
	add(x, f []uint16, radix uint32) ([]uint16, error)
	sub(x, f []uint16, radix uint32) ([]uint16, error)
}

// blockwiseArithmetic interprets each operand as a base-radix numeral,
// combines modulo radix^m, and re-encodes.
type blockwiseArithmetic struct{}

func (blockwiseArithmetic) add(x, f []uint16, radix uint32) ([]uint16, error) {
	return blockwiseCombine(x, f, radix, true)
}

func (blockwiseArithmetic) sub(x, f []uint16, radix uint32) ([]uint16, error) {
	return blockwiseCombine(x, f, radix, false)
}

func blockwiseCombine(x, f []uint16, radix uint32, isAdd bool) ([]uint16, error) {
	if len(x) != len(f) {
		return nil, newErr(KindInvalidArgument, "arithmetic", "operand length mismatch: %d vs %d", len(x), len(f))
	}
	xNum, err := subtle.Num(x, radix)
	if err != nil {
		return nil, newErr(KindInvalidArgument, "arithmetic", "%v", err)
	}
	fNum, err := subtle.Num(f, radix)
	if err != nil {
		return nil, newErr(KindInvalidArgument, "arithmetic", "%v", err)
	}
	if isAdd {
		xNum.Add(xNum, fNum)
	} else {
		xNum.Sub(xNum, fNum)
	}
	return modEncode(xNum, radix, uint32(len(x)))
}

// charwiseArithmetic combines operands position by position, mod radix.
type charwiseArithmetic struct{}

func (charwiseArithmetic) add(x, f []uint16, radix uint32) ([]uint16, error) {
	return charwiseCombine(x, f, radix, true)
}

func (charwiseArithmetic) sub(x, f []uint16, radix uint32) ([]uint16, error) {
	return charwiseCombine(x, f, radix, false)
}

func charwiseCombine(x, f []uint16, radix uint32, isAdd bool) ([]uint16, error) {
	if len(x) != len(f) {
		return nil, newErr(KindInvalidArgument, "arithmetic", "operand length mismatch: %d vs %d", len(x), len(f))
	}
	out := make([]uint16, len(x))
	for i := range x {
		var v int64
		if isAdd {
			v = (int64(x[i]) + int64(f[i])) % int64(radix)
		} else {
			v = ((int64(x[i]) - int64(f[i])) % int64(radix) + int64(radix)) % int64(radix)
		}
		out[i] = uint16(v)
	}
	return out, nil
}

// ff3Arithmetic is blockwise arithmetic performed on reversed operands,
// with the result reversed back -- semantically equivalent to blockwise
// with pre- and post-reversal (spec.md §4.3, §4.5).
type ff3Arithmetic struct{}

func (ff3Arithmetic) add(x, f []uint16, radix uint32) ([]uint16, error) {
	return ff3Combine(x, f, radix, true)
}

func (ff3Arithmetic) sub(x, f []uint16, radix uint32) ([]uint16, error) {
	return ff3Combine(x, f, radix, false)
}

func ff3Combine(x, f []uint16, radix uint32, isAdd bool) ([]uint16, error) {
	if len(x) != len(f) {
		return nil, newErr(KindInvalidArgument, "arithmetic", "operand length mismatch: %d vs %d", len(x), len(f))
	}
	xr := subtle.Rev(x)
	xNum, err := subtle.Num(xr, radix)
	if err != nil {
		return nil, newErr(KindInvalidArgument, "arithmetic", "%v", err)
	}
	fNum, err := subtle.Num(f, radix)
	if err != nil {
		return nil, newErr(KindInvalidArgument, "arithmetic", "%v", err)
	}
	if isAdd {
		xNum.Add(xNum, fNum)
	} else {
		xNum.Sub(xNum, fNum)
	}
	out, err := modEncode(xNum, radix, uint32(len(x)))
	if err != nil {
		return nil, err
	}
	return subtle.Rev(out), nil
}

func modEncode(v *big.Int, radix, m uint32) ([]uint16, error) {
	r := new(big.Int).SetUint64(uint64(radix))
	modulus := new(big.Int).Exp(r, new(big.Int).SetUint64(uint64(m)), nil)
	c, err := subtle.Mod(v, modulus)
	if err != nil {
		return nil, newErr(KindArithmeticError, "arithmetic", "%v", err)
	}
	out, err := subtle.Str(c, radix, m)
	if err != nil {
		return nil, newErr(KindInvalidArgument, "arithmetic", "%v", err)
	}
	return out, nil
}
