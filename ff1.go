package fpe

import (
	"fmt"
	"math/big"

	"github.com/vaultedge/fpe/internal/subtle"
)

// FF1 implements NIST SP 800-38G algorithms 7/8: balanced Feistel FPE with
// a variable-length tweak.
type FF1 struct {
	engine *Engine
}

// NewFF1 constructs an FF1 cipher for a fixed radix and maximum tweak
// length. radix must satisfy radix^2 >= 100.
func NewFF1(radix uint32, maxTweakLen uint32) (*FF1, error) {
	const op = "NewFF1"
	if radix < subtle.MinRadix || radix > subtle.MaxRadix {
		return nil, newErr(KindInvalidArgument, op, "radix %d out of range", radix)
	}
	r2 := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(2), nil)
	if r2.Cmp(big.NewInt(100)) < 0 {
		return nil, newErr(KindInvalidArgument, op, "radix^2 must be >= 100, got %s", r2.String())
	}

	p := Params{
		Radix:       radix,
		MinLen:      2,
		MaxLen:      subtle.MaxLen,
		MinTweakLen: 0,
		MaxTweakLen: maxTweakLen,
		Method:      MethodTwo,
		Arithmetic:  blockwiseArithmetic{},
		Split:       func(n uint32) uint32 { return n / 2 },
		Rounds:      func(n uint32) uint32 { return 10 },
		ValidateKey: func(key []byte) error {
			if !subtle.ValidAESKeyLen(len(key)) {
				return newErr(KindInvalidKey, op, "key length %d is not a valid AES key length", len(key))
			}
			return nil
		},
		F: ff1RoundFunc(radix),
	}
	e, err := NewEngine(p)
	if err != nil {
		return nil, err
	}
	return &FF1{engine: e}, nil
}

// Encrypt runs FF1 forward.
func (c *FF1) Encrypt(key, tweak []byte, x []uint16) ([]uint16, error) {
	return c.engine.Encrypt(key, tweak, x)
}

// Decrypt runs FF1 in reverse.
func (c *FF1) Decrypt(key, tweak []byte, y []uint16) ([]uint16, error) {
	return c.engine.Decrypt(key, tweak, y)
}

// ff1RoundFunc builds the FF1 round function F_K(n, T, i, B) per
// SP 800-38G §6, algorithm 7 step 4.
func ff1RoundFunc(radix uint32) RoundFunc {
	return func(key, tweak []byte, n, i uint32, b []uint16) ([]uint16, error) {
		const op = "FF1.F"
		t := uint32(len(tweak))
		u := n / 2
		v := n - u

		bitsPerSymbol := subtle.Log2(float64(radix))
		bBytes := uint32(subtle.Ceiling(subtle.Ceiling(float64(v)*bitsPerSymbol) / 8))
		d := 4*uint32(subtle.Ceiling(float64(bBytes)/4)) + 4

		// P: fixed 16-byte header.
		p := make([]byte, 0, 16)
		p = append(p, 0x01, 0x02, 0x01)
		radixBytes, err := subtle.Bytestring(big.NewInt(int64(radix)), 3)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		p = append(p, radixBytes...)
		p = append(p, 0x0A, byte(u%256))
		nBytes, err := subtle.Bytestring(big.NewInt(int64(n)), 4)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		p = append(p, nBytes...)
		tBytes, err := subtle.Bytestring(big.NewInt(int64(t)), 4)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		p = append(p, tBytes...)

		// Q: per-round block.
		zeroPadBig, err := subtle.Mod(big.NewInt(-int64(t)-int64(bBytes)-1), big.NewInt(16))
		if err != nil {
			return nil, fatalErr(op, err)
		}
		zeroPad := int(zeroPadBig.Int64())
		q := make([]byte, 0, int(t)+zeroPad+1+int(bBytes))
		q = append(q, tweak...)
		q = append(q, make([]byte, zeroPad)...)
		iBytes, err := subtle.Bytestring(big.NewInt(int64(i)), 1)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		q = append(q, iBytes...)
		numB, err := subtle.Num(b, radix)
		if err != nil {
			return nil, newErr(KindInvalidArgument, op, "%v", err)
		}
		numBBytes, err := subtle.Bytestring(numB, int(bBytes))
		if err != nil {
			return nil, newErr(KindArithmeticError, op, "%v", err)
		}
		q = append(q, numBBytes...)

		pq := subtle.ConcatBytes(p, q)
		if len(pq)%16 != 0 {
			return nil, fatalErr(op, fmt.Errorf("P||Q length %d is not a multiple of 16", len(pq)))
		}
		r, err := subtle.Prf(key, pq)
		if err != nil {
			return nil, &Error{Kind: KindInvalidKey, Op: op, Err: err}
		}

		blocks := int(subtle.Ceiling(float64(d) / 16))
		s := make([]byte, 0, blocks*16)
		s = append(s, r...)
		for j := 1; j < blocks; j++ {
			jBytes, err := subtle.Bytestring(big.NewInt(int64(j)), 16)
			if err != nil {
				return nil, fatalErr(op, err)
			}
			xored, err := subtle.Xor(r, jBytes)
			if err != nil {
				return nil, fatalErr(op, err)
			}
			block, err := subtle.Ciph(key, xored)
			if err != nil {
				return nil, &Error{Kind: KindInvalidKey, Op: op, Err: err}
			}
			s = append(s, block...)
		}
		s = s[:d]

		y, err := subtle.NumBytes(s)
		if err != nil {
			return nil, fatalErr(op, err)
		}

		var m uint32
		if i%2 == 0 {
			m = u
		} else {
			m = v
		}
		modulus := new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(m)), nil)
		yMod, err := subtle.Mod(y, modulus)
		if err != nil {
			return nil, newErr(KindArithmeticError, op, "%v", err)
		}
		return subtle.Str(yMod, radix, m)
	}
}
