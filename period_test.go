package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlicePeriod(t *testing.T) {
	slices, _, err := slicePeriod([]byte("ABCDEFGHIJK"), 3)
	require.NoError(t, err)
	require.Len(t, slices, 3)

	// Only whole rows are used, the trailing J K are dropped.
	assert.Equal(t, "ADG", string(slices[0]))
	assert.Equal(t, "BEH", string(slices[1]))
	assert.Equal(t, "CFI", string(slices[2]))
}

func TestSlicePeriod_Degenerate(t *testing.T) {
	_, _, err := slicePeriod([]byte("ABC"), 2)
	assert.ErrorIs(t, err, ErrDegenerateSlice)
}

func TestDetectPeriod(t *testing.T) {
	pt := fixturePlaintext(t)
	sc := Default().Search

	for _, period := range []int{1, 3, 5, 7, 11} {
		for seed := int64(1); seed <= 3; seed++ {
			ct, err := encrypt(pt, randomKey(t, seed*100+int64(period), period))
			require.NoError(t, err)

			res, err := detectPeriod(ct, sc)
			require.NoError(t, err, "period %d seed %d", period, seed)
			assert.Equal(t, period, res.period, "seed %d", seed)
			assert.Len(t, res.slices, period)
			assert.Len(t, res.ioc, period)
			assert.Greater(t, res.ioc[period-1], sc.IoCThreshold)
		}
	}
}

func TestDetectPeriod_RepeatedLetter(t *testing.T) {
	res, err := detectPeriod([]byte("QQQQQQQQQQ"), Default().Search)
	require.NoError(t, err)
	assert.Equal(t, 1, res.period)
}

func TestDetectPeriod_NotFound(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	random := make([]byte, 1000)
	for i := range random {
		random[i] = alphabet[rng.Intn(26)]
	}

	tests := []struct {
		name string
		ct   []byte
	}{
		{"uniform random", random},
		{"short", []byte("ABCDEFGH")},
		{"single letter", []byte("A")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := detectPeriod(tt.ct, Default().Search)
			assert.ErrorIs(t, err, ErrPeriodNotFound)
			assert.Zero(t, res.period)
		})
	}
}

func TestDetectPeriod_MaxPeriod(t *testing.T) {
	ct, err := encrypt(fixturePlaintext(t), randomKey(t, 9, 7))
	require.NoError(t, err)

	sc := Default().Search
	sc.MaxPeriod = 6
	res, err := detectPeriod(ct, sc)
	assert.ErrorIs(t, err, ErrPeriodNotFound)
	assert.Len(t, res.ioc, 6)

	// Never more than half the text, whatever MaxPeriod says.
	sc.MaxPeriod = 100
	res, err = detectPeriod([]byte("ABCDEFGHIJKLMNOPQRST"), sc)
	assert.ErrorIs(t, err, ErrPeriodNotFound)
	assert.Len(t, res.ioc, 10)
}

func TestFixedPeriod(t *testing.T) {
	ct, err := encrypt(fixturePlaintext(t), randomKey(t, 4, 4))
	require.NoError(t, err)

	res, err := fixedPeriod(ct, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, res.period)
	assert.Len(t, res.slices, 4)

	_, err = fixedPeriod(ct[:5], 4)
	assert.ErrorIs(t, err, ErrDegenerateSlice)
}
