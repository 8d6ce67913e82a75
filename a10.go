package fpe

import (
	"math/big"

	"github.com/vaultedge/fpe/internal/subtle"
)

// A10 is an FFX parameter pack over radix 10 using a CBC-MAC round
// function and a fixed round schedule.
type A10 struct {
	engine *Engine
}

// NewA10 constructs the radix-10 FFX parameter pack.
func NewA10() (*A10, error) {
	p := Params{
		Radix:       10,
		MinLen:      4,
		MaxLen:      36,
		MinTweakLen: 0,
		MaxTweakLen: subtle.MaxLen,
		Method:      MethodTwo,
		Arithmetic:  blockwiseArithmetic{},
		Split:       func(n uint32) uint32 { return n / 2 },
		Rounds:      a10Rounds,
		ValidateKey: requireAESKey,
		F:           cbcRoundFunc(10, true, func(n uint32) uint32 { return n / 2 }, a10Rounds),
	}
	e, err := NewEngine(p)
	if err != nil {
		return nil, err
	}
	return &A10{engine: e}, nil
}

func a10Rounds(n uint32) uint32 {
	switch {
	case n <= 5:
		return 24
	case n <= 9:
		return 18
	default:
		return 12
	}
}

// Encrypt runs A10 forward.
func (c *A10) Encrypt(key, tweak []byte, x []uint16) ([]uint16, error) {
	return c.engine.Encrypt(key, tweak, x)
}

// Decrypt runs A10 in reverse.
func (c *A10) Decrypt(key, tweak []byte, y []uint16) ([]uint16, error) {
	return c.engine.Decrypt(key, tweak, y)
}

// decodeA10 splits y into two 8-byte halves y', y'' and recombines them
// per spec.md §4.6 step 5: for m <= 9 only the low half carries the
// result; otherwise the high half contributes the leading m-9 digits.
func decodeA10(y []byte, m uint32) ([]uint16, error) {
	if len(y) != 16 {
		return nil, newErr(KindFatal, "A10.F", "round function output length %d != 16", len(y))
	}
	yHi, err := subtle.NumBytes(y[:8])
	if err != nil {
		return nil, fatalErr("A10.F", err)
	}
	yLo, err := subtle.NumBytes(y[8:])
	if err != nil {
		return nil, fatalErr("A10.F", err)
	}

	if m <= 9 {
		modulus := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(m)), nil)
		v, err := subtle.Mod(yLo, modulus)
		if err != nil {
			return nil, newErr(KindArithmeticError, "A10.F", "%v", err)
		}
		return subtle.Str(v, 10, m)
	}

	hiMod := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(m-9)), nil)
	hiPart, err := subtle.Mod(yHi, hiMod)
	if err != nil {
		return nil, newErr(KindArithmeticError, "A10.F", "%v", err)
	}
	loMod := new(big.Int).Exp(big.NewInt(10), big.NewInt(9), nil)
	loPart, err := subtle.Mod(yLo, loMod)
	if err != nil {
		return nil, newErr(KindArithmeticError, "A10.F", "%v", err)
	}
	nineDigits := new(big.Int).Exp(big.NewInt(10), big.NewInt(9), nil)
	v := new(big.Int).Mul(hiPart, nineDigits)
	v.Add(v, loPart)
	return subtle.Str(v, 10, m)
}
