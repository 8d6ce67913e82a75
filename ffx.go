// Package fpe implements format-preserving encryption: FF1 and FF3 from
// NIST SP 800-38G, the generic FFX Feistel framework they specialize, and
// IFX, an experimental non-uniform-radix variant. Every operation is a
// synchronous, allocation-scoped call: encrypt(key, tweak, plaintext) and
// decrypt(key, tweak, ciphertext), both safe to call concurrently on a
// shared engine for distinct (key, tweak, symbols) triples.
//
// Alphabet/string conversion, key management, and CLI plumbing are
// explicitly outside this package -- see the convert and tinkfpe packages.
package fpe

import (
	"github.com/vaultedge/fpe/internal/subtle"
)

// FeistelMethod selects how the FFX round loop repartitions state between
// rounds (spec.md §4.3).
type FeistelMethod int

const (
	// MethodOne repartitions the whole string after every round.
	MethodOne FeistelMethod = iota
	// MethodTwo swaps two fixed-identity halves after every round.
	MethodTwo
)

// RoundFunc computes the FFX round function F_K(n, T, i, B). It must
// return a numeral array whose length matches the modulus exponent the
// caller's arithmetic strategy expects for round i (see arithmetic.go).
type RoundFunc func(key, tweak []byte, n, i uint32, b []uint16) ([]uint16, error)

// Params is an FFX parameter pack: the tuple (radix, minlen, maxlen,
// minTlen, maxTlen, arithmetic, feistelMethod, split, rnds, F) from
// spec.md §3.
type Params struct {
	Radix       uint32
	MinLen      uint32
	MaxLen      uint32
	MinTweakLen uint32
	MaxTweakLen uint32
	Method      FeistelMethod
	Arithmetic  arithmetic
	Split       func(n uint32) uint32
	Rounds      func(n uint32) uint32
	F           RoundFunc
	// ValidateKey reports a non-nil error if key is unsuitable for F.
	ValidateKey func(key []byte) error
}

// Engine is a reusable, immutable FFX driver built from a validated
// Params. Construct once, call Encrypt/Decrypt many times.
type Engine struct {
	p Params
}

// NewEngine validates the static shape of a parameter pack and returns a
// reusable Engine.
func NewEngine(p Params) (*Engine, error) {
	const op = "NewEngine"
	if p.Radix < subtle.MinRadix || p.Radix > subtle.MaxRadix {
		return nil, newErr(KindInvalidArgument, op, "radix %d out of range [%d, %d]", p.Radix, subtle.MinRadix, subtle.MaxRadix)
	}
	if p.MinLen < 2 {
		return nil, newErr(KindInvalidArgument, op, "minlen must be >= 2")
	}
	if p.MaxLen < p.MinLen {
		return nil, newErr(KindInvalidArgument, op, "maxlen must be >= minlen")
	}
	if p.MinTweakLen > p.MaxTweakLen {
		return nil, newErr(KindInvalidArgument, op, "minTweakLen must be <= maxTweakLen")
	}
	if p.Split == nil || p.Rounds == nil || p.F == nil || p.Arithmetic == nil {
		return nil, newErr(KindNull, op, "split, rounds, F, and arithmetic are required")
	}
	return &Engine{p: p}, nil
}

// validate implements the common checks of spec.md §4.3.
func (e *Engine) validate(op string, key, tweak []byte, x []uint16) (n, l, r uint32, err error) {
	p := e.p
	if key == nil {
		return 0, 0, 0, newErr(KindNull, op, "key is required")
	}
	if p.ValidateKey != nil {
		if verr := p.ValidateKey(key); verr != nil {
			return 0, 0, 0, &Error{Kind: KindInvalidKey, Op: op, Err: verr}
		}
	}
	if uint32(len(tweak)) < p.MinTweakLen || uint32(len(tweak)) > p.MaxTweakLen {
		return 0, 0, 0, newErr(KindInvalidArgument, op, "tweak length %d out of range [%d, %d]", len(tweak), p.MinTweakLen, p.MaxTweakLen)
	}
	n = uint32(len(x))
	if n < p.MinLen || n > p.MaxLen {
		return 0, 0, 0, newErr(KindInvalidArgument, op, "input length %d out of range [%d, %d]", n, p.MinLen, p.MaxLen)
	}
	for _, sym := range x {
		if uint32(sym) >= p.Radix {
			return 0, 0, 0, newErr(KindInvalidArgument, op, "symbol %d not in [0, %d)", sym, p.Radix)
		}
	}

	l = p.Split(n)
	if l < 1 || l > n-n/2 {
		return 0, 0, 0, newErr(KindInvalidArgument, op, "split(%d)=%d is not in [1, ceil(n/2)]", n, l)
	}
	r = p.Rounds(n)

	var floor uint32
	if n == 2*l || p.Method == MethodTwo {
		floor = 8
	} else {
		floor = (4 * n) / l
	}
	if r < floor {
		return 0, 0, 0, newErr(KindInvalidArgument, op, "round count %d is below the anti-attack floor %d", r, floor)
	}
	return n, l, r, nil
}

// Encrypt runs the FFX Feistel network forward over x.
func (e *Engine) Encrypt(key, tweak []byte, x []uint16) ([]uint16, error) {
	const op = "Engine.Encrypt"
	n, l, r, err := e.validate(op, key, tweak, x)
	if err != nil {
		return nil, err
	}
	src := append([]uint16(nil), x...)

	switch e.p.Method {
	case MethodOne:
		return e.encryptMethodOne(op, key, tweak, src, n, l, r)
	default:
		return e.encryptMethodTwo(op, key, tweak, src, n, l, r)
	}
}

// Decrypt runs the FFX Feistel network in reverse over y.
func (e *Engine) Decrypt(key, tweak []byte, y []uint16) ([]uint16, error) {
	const op = "Engine.Decrypt"
	n, l, r, err := e.validate(op, key, tweak, y)
	if err != nil {
		return nil, err
	}
	src := append([]uint16(nil), y...)

	switch e.p.Method {
	case MethodOne:
		return e.decryptMethodOne(op, key, tweak, src, n, l, r)
	default:
		return e.decryptMethodTwo(op, key, tweak, src, n, l, r)
	}
}

func (e *Engine) encryptMethodOne(op string, key, tweak []byte, x []uint16, n, l, r uint32) ([]uint16, error) {
	for i := uint32(0); i < r; i++ {
		a := x[:l]
		b := x[l:n]
		f, err := e.p.F(key, tweak, n, i, b)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		c, err := e.p.Arithmetic.add(a, f, e.p.Radix)
		if err != nil {
			return nil, err
		}
		x = subtle.ConcatSymbols(b, c)
	}
	return x, nil
}

func (e *Engine) decryptMethodOne(op string, key, tweak []byte, y []uint16, n, l, r uint32) ([]uint16, error) {
	for i := int64(r) - 1; i >= 0; i-- {
		b := y[:n-l]
		c := y[n-l:]
		f, err := e.p.F(key, tweak, n, uint32(i), b)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		a, err := e.p.Arithmetic.sub(c, f, e.p.Radix)
		if err != nil {
			return nil, err
		}
		y = subtle.ConcatSymbols(a, b)
	}
	return y, nil
}

func (e *Engine) encryptMethodTwo(op string, key, tweak []byte, x []uint16, n, l, r uint32) ([]uint16, error) {
	a := append([]uint16(nil), x[:l]...)
	b := append([]uint16(nil), x[l:]...)
	for i := uint32(0); i < r; i++ {
		f, err := e.p.F(key, tweak, n, i, b)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		c, err := e.p.Arithmetic.add(a, f, e.p.Radix)
		if err != nil {
			return nil, err
		}
		a, b = b, c
	}
	return subtle.ConcatSymbols(a, b), nil
}

func (e *Engine) decryptMethodTwo(op string, key, tweak []byte, y []uint16, n, l, r uint32) ([]uint16, error) {
	u, v := l, n-l
	var aLen uint32
	if r%2 == 0 {
		aLen = u
	} else {
		aLen = v
	}
	a := append([]uint16(nil), y[:aLen]...)
	b := append([]uint16(nil), y[aLen:]...)
	for i := int64(r) - 1; i >= 0; i-- {
		f, err := e.p.F(key, tweak, n, uint32(i), a)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		newA, err := e.p.Arithmetic.sub(b, f, e.p.Radix)
		if err != nil {
			return nil, err
		}
		a, b = newA, a
	}
	return subtle.ConcatSymbols(a, b), nil
}
