package fpe

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultedge/fpe/internal/subtle"
)

func TestIFXSampleEmptyTweak(t *testing.T) {
	key := hexKey(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	w := []int{10, 26, 26, 26, 10, 10, 10}
	c, err := NewIFX(w)
	require.NoError(t, err)

	pt := []uint16{0, 1, 2, 3, 4, 5, 6}
	want := []uint16{7, 0, 3, 13, 6, 6, 8}

	ct, err := c.Encrypt(key, nil, pt)
	require.NoError(t, err)
	assert.Equal(t, want, ct)

	back, err := c.Decrypt(key, nil, ct)
	require.NoError(t, err)
	assert.Equal(t, pt, back)
}

func TestIFXSampleWithTweak(t *testing.T) {
	key := hexKey(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	tweak := hexKey(t, "C0C1C2C3C4C5C6C7C8C9CACBCCCDCECF")
	w := []int{10, 26, 26, 26, 10, 10, 10}
	c, err := NewIFX(w)
	require.NoError(t, err)

	pt := []uint16{0, 1, 2, 3, 4, 5, 6}
	want := []uint16{4, 3, 2, 15, 5, 8, 4}

	ct, err := c.Encrypt(key, tweak, pt)
	require.NoError(t, err)
	assert.Equal(t, want, ct)

	back, err := c.Decrypt(key, tweak, ct)
	require.NoError(t, err)
	assert.Equal(t, pt, back)
}

func TestIFXRejectsTooFewPositions(t *testing.T) {
	_, err := NewIFX([]int{10})
	assert.Error(t, err)
}

func TestIFXRejectsSmallProduct(t *testing.T) {
	_, err := NewIFX([]int{2, 3})
	assert.Error(t, err)
}

func TestIFXRejectsOutOfRangeRadixElement(t *testing.T) {
	_, err := NewIFX([]int{10, 1})
	assert.Error(t, err)
	_, err = NewIFX([]int{10, 1 << 16})
	assert.Error(t, err)
}

func TestIFXUVFactorizationInvariant(t *testing.T) {
	w := []int{10, 26, 26, 26, 10, 10, 10}
	c, err := NewIFX(w)
	require.NoError(t, err)

	product, err := subtle.Product(w)
	require.NoError(t, err)
	uv := new(big.Int).Mul(c.u, c.v)
	assert.Equal(t, product.String(), uv.String())

	sqrtProduct, err := subtle.Sqrt(product)
	require.NoError(t, err)
	assert.True(t, c.u.Cmp(sqrtProduct) <= 0)
}

func TestIFXMixedSmallPrimeRadixVector(t *testing.T) {
	key := hexKey(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	w := []int{2, 3, 5, 7, 11, 13}
	c, err := NewIFX(w)
	require.NoError(t, err)

	pt := []uint16{1, 2, 3, 6, 10, 12}
	ct, err := c.Encrypt(key, nil, pt)
	require.NoError(t, err)
	for i, sym := range ct {
		assert.Less(t, int(sym), w[i])
	}

	back, err := c.Decrypt(key, nil, ct)
	require.NoError(t, err)
	assert.Equal(t, pt, back)
}

func TestIFXLongTweak(t *testing.T) {
	key := hexKey(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	tweak := make([]byte, 32)
	for i := range tweak {
		tweak[i] = byte(i)
	}
	w := []int{10, 26, 26, 26, 10, 10, 10}
	c, err := NewIFX(w)
	require.NoError(t, err)

	pt := []uint16{9, 8, 7, 6, 5, 4, 3}
	ct, err := c.Encrypt(key, tweak, pt)
	require.NoError(t, err)
	back, err := c.Decrypt(key, tweak, ct)
	require.NoError(t, err)
	assert.Equal(t, pt, back)
}
