package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonogramFrequencies(t *testing.T) {
	f := monogramFrequencies([]byte("AABC"))
	assert.InDelta(t, 0.5, f[0], 1e-12)
	assert.InDelta(t, 0.25, f[1], 1e-12)
	assert.InDelta(t, 0.25, f[2], 1e-12)
	assert.Zero(t, f[25])

	assert.Equal(t, [26]float64{}, monogramFrequencies(nil))
}

func TestMaxRemaining(t *testing.T) {
	freqs := [26]float64{0: 1, 1: 3, 2: 3, 3: 2}
	var used [26]bool

	assert.Equal(t, 1, maxRemaining(&freqs, &used), "ties go to the lower index")
	used[1] = true
	assert.Equal(t, 2, maxRemaining(&freqs, &used))
	used[2] = true
	assert.Equal(t, 3, maxRemaining(&freqs, &used))
	used[3] = true
	assert.Equal(t, 0, maxRemaining(&freqs, &used))

	for i := range used {
		used[i] = true
	}
	assert.Equal(t, -1, maxRemaining(&freqs, &used))
}

// When the observed frequencies are an exact relabelling of the reference
// ones, rank pairing recovers the relabelling.
func TestInitialColumn_Relabelled(t *testing.T) {
	want := randomKey(t, 21, 1)[0]

	var observed [26]float64
	for i := range want {
		observed[want[i]-'A'] = englishMonograms[i]
	}

	got := initialColumn(observed, englishMonograms)
	assert.Equal(t, want.String(), got.String())
}

func TestInitialColumn_AlwaysPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		var observed [26]float64
		for j := range observed {
			observed[j] = float64(rng.Intn(5))
		}
		c := initialColumn(observed, englishMonograms)
		require.True(t, c.isPermutation(), "column %q", c.String())
	}

	// No letters seen at all.
	c := initialColumn([26]float64{}, englishMonograms)
	require.True(t, c.isPermutation())
	assert.Equal(t, byte('A'), c['E'-'A'], "most common reference letter takes the first unused ciphertext letter")
	assert.Equal(t, byte('B'), c['T'-'A'])
}

func TestInitialKey(t *testing.T) {
	slices := [][]byte{[]byte("AAAB"), []byte("ZZZY")}

	k := initialKey(slices, englishMonograms, false)
	require.Len(t, k, 2)
	assert.Equal(t, byte('A'), k[0]['E'-'A'])
	assert.Equal(t, byte('B'), k[0]['T'-'A'])
	assert.Equal(t, byte('Z'), k[1]['E'-'A'])
	assert.Equal(t, byte('Y'), k[1]['T'-'A'])
	require.NoError(t, k.validate())

	k = initialKey(slices, englishMonograms, true)
	assert.Equal(t, k[1], k[0], "every column seeded from the last slice")
	assert.Equal(t, byte('Z'), k[0]['E'-'A'])
}

// The frequency key should already put the common letters of a long
// monoalphabetic text in roughly the right place.
func TestInitialKey_Fixture(t *testing.T) {
	pt := fixturePlaintext(t)
	k := initialKey([][]byte{pt}, englishMonograms, false)
	require.NoError(t, k.validate())

	tab := defaultTestTables(t)
	decoded := make([]byte, len(pt))
	require.NoError(t, decrypt(decoded, pt, k))

	initial, err := tab.fitness(decoded)
	require.NoError(t, err)

	ct, err := encrypt(pt, randomKey(t, 8, 1))
	require.NoError(t, err)
	scrambled, err := tab.fitness(ct)
	require.NoError(t, err)

	assert.Greater(t, initial, scrambled)
}
