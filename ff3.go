package fpe

import (
	"math/big"

	"github.com/vaultedge/fpe/internal/subtle"
)

// FF3 implements NIST SP 800-38G algorithms 9/10: unbalanced Feistel FPE
// with an exactly 8-byte tweak and byte-reversed AES keying.
type FF3 struct {
	engine *Engine
	radix  uint32
}

// NewFF3 constructs an FF3 cipher for a fixed radix.
func NewFF3(radix uint32) (*FF3, error) {
	const op = "NewFF3"
	if radix < subtle.MinRadix || radix > subtle.MaxRadix {
		return nil, newErr(KindInvalidArgument, op, "radix %d out of range", radix)
	}

	minLen, maxLen := ff3Bounds(radix)

	p := Params{
		Radix:       radix,
		MinLen:      minLen,
		MaxLen:      maxLen,
		MinTweakLen: 8,
		MaxTweakLen: 8,
		Method:      MethodTwo,
		Arithmetic:  ff3Arithmetic{},
		Split:       func(n uint32) uint32 { return uint32(subtle.Ceiling(float64(n) / 2)) },
		Rounds:      func(n uint32) uint32 { return 8 },
		ValidateKey: func(key []byte) error {
			if !subtle.ValidAESKeyLen(len(key)) {
				return newErr(KindInvalidKey, op, "key length %d is not a valid AES key length", len(key))
			}
			return nil
		},
		F: ff3RoundFunc(radix),
	}
	e, err := NewEngine(p)
	if err != nil {
		return nil, err
	}
	return &FF3{engine: e, radix: radix}, nil
}

// ff3Bounds implements spec.md §4.5's radix-derived length bounds:
// minlen = max(2, ceil(log(100)/log(radix))),
// maxlen = max(minlen, 2*floor(log(2^96)/log(radix))).
func ff3Bounds(radix uint32) (minLen, maxLen uint32) {
	logRadix := subtle.Log2(float64(radix))
	ml := subtle.Ceiling(subtle.Log2(100) / logRadix)
	if ml < 2 {
		ml = 2
	}
	xl := 2 * subtle.Floor(96/logRadix)
	if xl < ml {
		xl = ml
	}
	return uint32(ml), uint32(xl)
}

// Encrypt runs FF3 forward.
func (c *FF3) Encrypt(key, tweak []byte, x []uint16) ([]uint16, error) {
	return c.engine.Encrypt(key, tweak, x)
}

// Decrypt runs FF3 in reverse.
func (c *FF3) Decrypt(key, tweak []byte, y []uint16) ([]uint16, error) {
	return c.engine.Decrypt(key, tweak, y)
}

// ff3RoundFunc builds the FF3 round function F_K(n, T, i, B) per
// SP 800-38G §7, algorithm 9 step 4, with the REV/REVB key and block
// reversal required by the bit-exact wire commitments.
func ff3RoundFunc(radix uint32) RoundFunc {
	return func(key, tweak []byte, n, i uint32, b []uint16) ([]uint16, error) {
		const op = "FF3.F"
		if len(tweak) != 8 {
			return nil, newErr(KindInvalidArgument, op, "tweak must be exactly 8 bytes, got %d", len(tweak))
		}
		u := uint32(subtle.Ceiling(float64(n) / 2))
		v := n - u

		revKey := subtle.RevB(key)
		tl := tweak[0:4]
		tr := tweak[4:8]

		var m uint32
		var w []byte
		if i%2 == 0 {
			m = u
			w = tr
		} else {
			m = v
			w = tl
		}

		iBytes, err := subtle.Bytestring(big.NewInt(int64(i)), 4)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		wi, err := subtle.Xor(w, iBytes)
		if err != nil {
			return nil, fatalErr(op, err)
		}

		revB := subtle.Rev(b)
		numRevB, err := subtle.Num(revB, radix)
		if err != nil {
			return nil, newErr(KindInvalidArgument, op, "%v", err)
		}
		numBytes, err := subtle.Bytestring(numRevB, 12)
		if err != nil {
			return nil, newErr(KindArithmeticError, op, "%v", err)
		}

		p := subtle.ConcatBytes(wi, numBytes)
		if len(p) != 16 {
			return nil, fatalErr(op, newErr(KindFatal, op, "P length %d != 16", len(p)))
		}

		revP := subtle.RevB(p)
		cipherOut, err := subtle.Ciph(revKey, revP)
		if err != nil {
			return nil, &Error{Kind: KindInvalidKey, Op: op, Err: err}
		}
		s := subtle.RevB(cipherOut)

		y, err := subtle.NumBytes(s)
		if err != nil {
			return nil, fatalErr(op, err)
		}

		modulus := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(m)), nil)
		yMod, err := subtle.Mod(y, modulus)
		if err != nil {
			return nil, newErr(KindArithmeticError, op, "%v", err)
		}
		return subtle.Str(yMod, radix, m)
	}
}
