package fpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestA2RoundTripBoundaryLengths(t *testing.T) {
	key := hexKey(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	c, err := NewA2()
	require.NoError(t, err)

	for _, n := range []int{8, 9, 13, 19, 31, 32, 128} {
		pt := make([]uint16, n)
		for i := range pt {
			pt[i] = uint16(i % 2)
		}
		ct, err := c.Encrypt(key, nil, pt)
		require.NoError(t, err, "n=%d", n)
		back, err := c.Decrypt(key, nil, ct)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, pt, back, "n=%d", n)
	}
}

func TestA2RejectsOutOfBoundsLength(t *testing.T) {
	key := hexKey(t, "2B7E151628AED2A6ABF7158809CF4F3C")
	c, err := NewA2()
	require.NoError(t, err)

	_, err = c.Encrypt(key, nil, make([]uint16, 7))
	assert.Error(t, err)
	_, err = c.Encrypt(key, nil, make([]uint16, 129))
	assert.Error(t, err)
}

func TestA2RoundScheduleThresholds(t *testing.T) {
	assert.EqualValues(t, 36, a2Rounds(9))
	assert.EqualValues(t, 30, a2Rounds(10))
	assert.EqualValues(t, 30, a2Rounds(13))
	assert.EqualValues(t, 24, a2Rounds(14))
	assert.EqualValues(t, 24, a2Rounds(19))
	assert.EqualValues(t, 18, a2Rounds(20))
	assert.EqualValues(t, 18, a2Rounds(31))
	assert.EqualValues(t, 12, a2Rounds(32))
}
