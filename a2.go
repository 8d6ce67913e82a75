package fpe

import (
	"math/big"

	"github.com/vaultedge/fpe/internal/subtle"
)

// A2 is an FFX parameter pack over radix 2 using a CBC-MAC round function
// and a fixed round schedule.
type A2 struct {
	engine *Engine
}

// NewA2 constructs the radix-2 FFX parameter pack.
func NewA2() (*A2, error) {
	p := Params{
		Radix:       2,
		MinLen:      8,
		MaxLen:      128,
		MinTweakLen: 0,
		MaxTweakLen: subtle.MaxLen,
		Method:      MethodTwo,
		Arithmetic:  charwiseArithmetic{},
		Split:       func(n uint32) uint32 { return n / 2 },
		Rounds:      a2Rounds,
		ValidateKey: requireAESKey,
		F:           cbcRoundFunc(2, false, a2Split, a2Rounds),
	}
	e, err := NewEngine(p)
	if err != nil {
		return nil, err
	}
	return &A2{engine: e}, nil
}

func a2Split(n uint32) uint32 { return n / 2 }

func a2Rounds(n uint32) uint32 {
	switch {
	case n <= 9:
		return 36
	case n <= 13:
		return 30
	case n <= 19:
		return 24
	case n <= 31:
		return 18
	default:
		return 12
	}
}

// Encrypt runs A2 forward.
func (c *A2) Encrypt(key, tweak []byte, x []uint16) ([]uint16, error) {
	return c.engine.Encrypt(key, tweak, x)
}

// Decrypt runs A2 in reverse.
func (c *A2) Decrypt(key, tweak []byte, y []uint16) ([]uint16, error) {
	return c.engine.Decrypt(key, tweak, y)
}

func requireAESKey(key []byte) error {
	if !subtle.ValidAESKeyLen(len(key)) {
		return newErr(KindInvalidKey, "cbcRoundFunc", "key length %d is not a valid AES key length", len(key))
	}
	return nil
}

// cbcRoundFunc builds the shared A2/A10 round function: a fixed 16-byte
// header P (vers, method, addition, radix, n as 2 bytes, split(n),
// rnds(n), tweak length as 8 bytes), a per-round block Q, CBC-MAC over
// P||Q, then an algorithm-specific decode of the last block into m output
// symbols. addition selects the header's addition∈{0,1} byte
// (0=charwise/A2, 1=blockwise/A10); decode performs the final
// bit/decimal-specific step.
func cbcRoundFunc(radix uint32, addition bool, split func(uint32) uint32, rounds func(uint32) uint32) RoundFunc {
	return func(key, tweak []byte, n, i uint32, b []uint16) ([]uint16, error) {
		const op = "A-round"
		t := uint32(len(tweak))
		sp := split(n)
		rc := rounds(n)

		additionByte := byte(0)
		if addition {
			additionByte = 1
		}
		p := make([]byte, 0, 16)
		p = append(p, 0x01, 0x02, additionByte, byte(radix))
		nBytes, err := subtle.Bytestring(big.NewInt(int64(n)), 2)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		p = append(p, nBytes...)
		p = append(p, byte(sp), byte(rc))
		tLenBytes, err := subtle.Bytestring(big.NewInt(int64(t)), 8)
		if err != nil {
			return nil, fatalErr(op, err)
		}
		p = append(p, tLenBytes...)

		zeroPadBig, err := subtle.Mod(big.NewInt(-int64(t)-9), big.NewInt(16))
		if err != nil {
			return nil, fatalErr(op, err)
		}
		zeroPad := int(zeroPadBig.Int64())
		q := make([]byte, 0, int(t)+zeroPad+1+8)
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
		numBBytes, err := subtle.Bytestring(numB, 8)
		if err != nil {
			return nil, newErr(KindArithmeticError, op, "%v", err)
		}
		q = append(q, numBBytes...)

		pq := subtle.ConcatBytes(p, q)
		if len(pq)%16 != 0 {
			return nil, fatalErr(op, newErr(KindFatal, op, "P||Q length %d is not a multiple of 16", len(pq)))
		}
		y, err := subtle.Prf(key, pq)
		if err != nil {
			return nil, &Error{Kind: KindInvalidKey, Op: op, Err: err}
		}

		var m uint32
		if i%2 == 0 {
			m = sp
		} else {
			m = n - sp
		}

		if !addition {
			return decodeA2(y, m)
		}
		return decodeA10(y, m)
	}
}

// decodeA2 interprets y as a 128-bit binary string and returns its last m
// bits as a radix-2 numeral array.
func decodeA2(y []byte, m uint32) ([]uint16, error) {
	full, err := subtle.NumBytes(y)
	if err != nil {
		return nil, fatalErr("A2.F", err)
	}
	modulus := new(big.Int).Lsh(big.NewInt(1), uint(m))
	last, err := subtle.Mod(full, modulus)
	if err != nil {
		return nil, newErr(KindArithmeticError, "A2.F", "%v", err)
	}
	return subtle.Str(last, 2, m)
}
