package fpe

import (
	"math/big"

	"github.com/vaultedge/fpe/internal/subtle"
)

// IFX is an experimental FPE construction operating on a non-uniform,
// per-position radix vector W, splitting W's prime factors into two
// balanced co-factors u, v and running a Thorp-like round schedule keyed
// by a CBC-derived subkey seed. Unlike FF1/FF3/A2/A10 it is not a
// parameter pack over the generic FFX Engine: its Feistel state is a
// single unconstrained integer pair (a, b), not a pair of symbol arrays,
// so it drives its own encrypt/decrypt loop (spec.md §4.7).
type IFX struct {
	w []uint16
	u *big.Int
	v *big.Int
	r int
}

// NewIFX constructs an IFX cipher for a fixed per-position radix vector.
// Every W[i] must lie in [2, 2^16) and len(W) must be >= 2; the product
// of W must be >= 100.
func NewIFX(w []int) (*IFX, error) {
	const op = "NewIFX"
	if len(w) < 2 {
		return nil, newErr(KindInvalidArgument, op, "radix vector must have at least 2 positions")
	}
	for _, e := range w {
		if e < 2 || e >= (1<<16) {
			return nil, newErr(KindInvalidArgument, op, "radix vector element %d out of range [2, 2^16)", e)
		}
	}
	product, err := subtle.Product(w)
	if err != nil {
		return nil, newErr(KindArithmeticError, op, "%v", err)
	}
	if product.Cmp(big.NewInt(100)) < 0 {
		return nil, newErr(KindInvalidArgument, op, "product(W) must be >= 100, got %s", product.String())
	}

	factors, err := subtle.Factors(w)
	if err != nil {
		return nil, newErr(KindArithmeticError, op, "%v", err)
	}
	// Sort descending (simple insertion sort; factor lists are short).
	for i := 1; i < len(factors); i++ {
		for j := i; j > 0 && factors[j] > factors[j-1]; j-- {
			factors[j], factors[j-1] = factors[j-1], factors[j]
		}
	}

	sqrtW, err := subtle.Sqrt(product)
	if err != nil {
		return nil, newErr(KindArithmeticError, op, "%v", err)
	}

	u := big.NewInt(1)
	v := big.NewInt(1)
	for _, g := range factors {
		gBig := big.NewInt(int64(g))
		candidate := new(big.Int).Mul(u, gBig)
		if candidate.Cmp(sqrtW) <= 0 {
			u = candidate
		} else {
			v.Mul(v, gBig)
		}
	}

	r, err := subtle.Rounds(u, v)
	if err != nil {
		return nil, newErr(KindArithmeticError, op, "%v", err)
	}

	wCopy := make([]uint16, len(w))
	for i, e := range w {
		wCopy[i] = uint16(e)
	}
	return &IFX{w: wCopy, u: u, v: v, r: r}, nil
}

func (c *IFX) validate(op string, key, tweak []byte, x []uint16) error {
	if key == nil {
		return newErr(KindNull, op, "key is required")
	}
	if !subtle.ValidAESKeyLen(len(key)) {
		return newErr(KindInvalidKey, op, "key length %d is not a valid AES key length", len(key))
	}
	if len(x) != len(c.w) {
		return newErr(KindInvalidArgument, op, "input length %d != radix vector length %d", len(x), len(c.w))
	}
	for i, sym := range x {
		if uint32(sym) >= uint32(c.w[i]) {
			return newErr(KindInvalidArgument, op, "symbol %d at position %d not in [0, %d)", sym, i, c.w[i])
		}
	}
	_ = tweak
	return nil
}

// subkeySeed builds the 16-byte P that every round uses, unchanged, as the
// CBC IV of its round function.
func (c *IFX) subkeySeed(key, tweak []byte) ([]byte, error) {
	const op = "IFX.subkeySeed"
	rBytes := subtle.SignedBytes(big.NewInt(int64(c.r)))
	uBytes := subtle.SignedBytes(c.u)
	vBytes := subtle.SignedBytes(c.v)
	total := len(tweak) + len(uBytes) + len(vBytes) + len(rBytes)
	sBytes := subtle.SignedBytes(big.NewInt(int64(total)))

	zeroPadBig, err := subtle.Mod(big.NewInt(-int64(total)-int64(len(sBytes))), big.NewInt(16))
	if err != nil {
		return nil, fatalErr(op, err)
	}
	zeroPad := int(zeroPadBig.Int64())

	o := make([]byte, 0, len(rBytes)+len(sBytes)+zeroPad+len(tweak)+len(uBytes)+len(vBytes))
	o = append(o, rBytes...)
	o = append(o, sBytes...)
	o = append(o, make([]byte, zeroPad)...)
	o = append(o, tweak...)
	o = append(o, uBytes...)
	o = append(o, vBytes...)
	if len(o)%16 != 0 {
		return nil, fatalErr(op, newErr(KindFatal, op, "O length %d is not a multiple of 16", len(o)))
	}

	cipherText, err := subtle.CbcEncrypt(key, make([]byte, subtle.BlockSize), o)
	if err != nil {
		return nil, &Error{Kind: KindInvalidKey, Op: op, Err: err}
	}
	return cipherText[len(cipherText)-subtle.BlockSize:], nil
}

// roundFunc computes F = CBC-encrypt(K, IV=P, Q) for round i's carry b,
// returning the signed integer f = integer(F) per the bit-exact wire
// commitment: IFX's f is two's-complement signed, unlike FF1/FF3's
// unsigned num(B).
func (c *IFX) roundFunc(key, p []byte, i int, b *big.Int) (*big.Int, error) {
	const op = "IFX.F"
	iBytes := subtle.SignedBytes(big.NewInt(int64(i)))
	bBytes := subtle.SignedBytes(b)

	zeroPadBig, err := subtle.Mod(big.NewInt(-int64(len(iBytes))-int64(len(bBytes))), big.NewInt(16))
	if err != nil {
		return nil, fatalErr(op, err)
	}
	zeroPad := int(zeroPadBig.Int64())

	q := make([]byte, 0, len(iBytes)+zeroPad+len(bBytes))
	q = append(q, iBytes...)
	q = append(q, make([]byte, zeroPad)...)
	q = append(q, bBytes...)
	if len(q) == 0 || len(q)%16 != 0 {
		return nil, fatalErr(op, newErr(KindFatal, op, "Q length %d is not a positive multiple of 16", len(q)))
	}

	cipherText, err := subtle.CbcEncrypt(key, p, q)
	if err != nil {
		return nil, &Error{Kind: KindInvalidKey, Op: op, Err: err}
	}
	f := cipherText[len(cipherText)-subtle.BlockSize:]
	return subtle.SignedInt(f), nil
}

// Encrypt runs IFX forward.
func (c *IFX) Encrypt(key, tweak []byte, x []uint16) ([]uint16, error) {
	const op = "IFX.Encrypt"
	if err := c.validate(op, key, tweak, x); err != nil {
		return nil, err
	}

	xNum, err := subtle.NumMixed(x, c.w)
	if err != nil {
		return nil, newErr(KindInvalidArgument, op, "%v", err)
	}
	a := new(big.Int).Div(xNum, c.v)
	b := new(big.Int).Mod(xNum, c.v)

	p, err := c.subkeySeed(key, tweak)
	if err != nil {
		return nil, err
	}

	for i := 0; i < c.r; i++ {
		d := c.u
		if i%2 != 0 {
			d = c.v
		}
		f, err := c.roundFunc(key, p, i, b)
		if err != nil {
			return nil, err
		}
		sum := new(big.Int).Add(a, f)
		cVal, err := subtle.Mod(sum, d)
		if err != nil {
			return nil, newErr(KindArithmeticError, op, "%v", err)
		}
		a, b = b, cVal
	}

	y := new(big.Int).Mul(a, c.v)
	y.Add(y, b)
	return subtle.StrMixed(y, c.w)
}

// Decrypt runs IFX in reverse.
func (c *IFX) Decrypt(key, tweak []byte, y []uint16) ([]uint16, error) {
	const op = "IFX.Decrypt"
	if err := c.validate(op, key, tweak, y); err != nil {
		return nil, err
	}

	yNum, err := subtle.NumMixed(y, c.w)
	if err != nil {
		return nil, newErr(KindInvalidArgument, op, "%v", err)
	}
	a := new(big.Int).Div(yNum, c.v)
	b := new(big.Int).Mod(yNum, c.v)

	p, err := c.subkeySeed(key, tweak)
	if err != nil {
		return nil, err
	}

	for i := c.r - 1; i >= 0; i-- {
		d := c.u
		if i%2 != 0 {
			d = c.v
		}
		cVal := b
		b = a
		f, err := c.roundFunc(key, p, i, b)
		if err != nil {
			return nil, err
		}
		diff := new(big.Int).Sub(cVal, f)
		a, err = subtle.Mod(diff, d)
		if err != nil {
			return nil, newErr(KindArithmeticError, op, "%v", err)
		}
	}

	x := new(big.Int).Mul(a, c.v)
	x.Add(x, b)
	return subtle.StrMixed(x, c.w)
}
