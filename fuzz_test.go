package fpe

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"
)

// randomDigits fills x with symbols in [0, radix) using f, producing a
// plaintext of the given length for a driver's round-trip invariant.
func randomDigits(f *fuzz.Fuzzer, radix uint32, n int) []uint16 {
	x := make([]uint16, n)
	for i := range x {
		var v uint32
		f.Fuzz(&v)
		x[i] = uint16(v % radix)
	}
	return x
}

// TestFuzzFF1RoundTrip exercises the universal "encrypt then decrypt is the
// identity" invariant (spec.md §8, invariant 1) over many random keys,
// tweaks, and plaintexts rather than a handful of hand-picked cases.
func TestFuzzFF1RoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(16, 16)

	for i := 0; i < 50; i++ {
		var key [16]byte
		f.Fuzz(&key)
		var tweakLen uint8
		f.Fuzz(&tweakLen)
		tweak := make([]byte, int(tweakLen)%32)
		f.Fuzz(&tweak)

		var lenSeed uint8
		f.Fuzz(&lenSeed)
		n := 2 + int(lenSeed)%30

		c, err := NewFF1(10, 64)
		require.NoError(t, err)

		x := randomDigits(f, 10, n)
		y, err := c.Encrypt(key[:], tweak, x)
		require.NoError(t, err)
		require.Len(t, y, n)

		back, err := c.Decrypt(key[:], tweak, y)
		require.NoError(t, err)
		require.Equal(t, x, back)
	}
}

// TestFuzzFF3RoundTrip covers FF3's fixed-length tweak and unbalanced
// split across random 2..55-length plaintexts.
func TestFuzzFF3RoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)

	for i := 0; i < 50; i++ {
		var key [16]byte
		f.Fuzz(&key)
		var tweak [8]byte
		f.Fuzz(&tweak)

		var lenSeed uint8
		f.Fuzz(&lenSeed)
		n := 2 + int(lenSeed)%54

		c, err := NewFF3(10)
		require.NoError(t, err)

		x := randomDigits(f, 10, n)
		y, err := c.Encrypt(key[:], tweak[:], x)
		require.NoError(t, err)

		back, err := c.Decrypt(key[:], tweak[:], y)
		require.NoError(t, err)
		require.Equal(t, x, back)
	}
}

// TestFuzzIFXRoundTrip drives IFX's non-uniform radix vector construction
// with randomly generated per-position radices, checking the round-trip
// invariant holds regardless of the u/v factorization chosen for a given
// random W.
func TestFuzzIFXRoundTrip(t *testing.T) {
	f := fuzz.New().NilChance(0)
	radixChoices := []int{2, 3, 5, 7, 10, 13, 16, 26}

	for i := 0; i < 30; i++ {
		var lenSeed uint8
		f.Fuzz(&lenSeed)
		positions := 6 + int(lenSeed)%10

		w := make([]int, positions)
		for j := range w {
			var pick uint8
			f.Fuzz(&pick)
			w[j] = radixChoices[int(pick)%len(radixChoices)]
		}

		c, err := NewIFX(w)
		require.NoError(t, err)

		var key [16]byte
		f.Fuzz(&key)

		x := make([]uint16, positions)
		for j := range x {
			var v uint32
			f.Fuzz(&v)
			x[j] = uint16(v % uint32(w[j]))
		}

		y, err := c.Encrypt(key[:], nil, x)
		require.NoError(t, err)

		back, err := c.Decrypt(key[:], nil, y)
		require.NoError(t, err)
		require.Equal(t, x, back)
	}
}
