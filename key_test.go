package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey(t *testing.T, seed int64, period int) key {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	k := make(key, period)
	for i := range k {
		k[i].randomize(rng)
	}
	require.NoError(t, k.validate())
	return k
}

func TestColumn_RandomizeIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	var c column
	for i := 0; i < 1000; i++ {
		c.randomize(rng)
		require.True(t, c.isPermutation(), "randomize produced %q", c.String())
	}
}

func TestColumn_RandomSwapIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	c := identityColumn()
	for i := 0; i < 10000; i++ {
		before := c
		c.randomSwap(rng)
		require.True(t, c.isPermutation(), "randomSwap produced %q", c.String())

		diff := 0
		for j := range c {
			if c[j] != before[j] {
				diff++
			}
		}
		require.Equal(t, 2, diff, "a swap changes exactly two ranks")
	}
}

func TestColumn_IsPermutation(t *testing.T) {
	c := identityColumn()
	assert.True(t, c.isPermutation())

	c[3] = 'A'
	assert.False(t, c.isPermutation())

	c = identityColumn()
	c[0] = '?'
	assert.False(t, c.isPermutation())
}

func TestColumn_Position(t *testing.T) {
	c := identityColumn()
	for i := 0; i < 26; i++ {
		p, ok := c.position(alphabet[i])
		require.True(t, ok)
		assert.Equal(t, i, p)
	}

	_, ok := c.position('a')
	assert.False(t, ok)
}

// Encrypting with a column and decrypting with the same column gives back
// the original letter for every letter and every column.
func TestDecrypt_RoundTrip(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		k := randomKey(t, seed, int(seed%7)+1)

		for i := range k {
			for r := 0; r < 26; r++ {
				ch := k[i][r]
				p, ok := k[i].position(ch)
				require.True(t, ok)
				assert.Equal(t, ch, k[i][p])
			}
		}

		pt := []byte("THEQUICKBROWNFOXJUMPSOVERTHELAZYDOG")
		ct, err := encrypt(pt, k)
		require.NoError(t, err)

		got := make([]byte, len(ct))
		require.NoError(t, decrypt(got, ct, k))
		assert.Equal(t, string(pt), string(got))

		again, err := encrypt(got, k)
		require.NoError(t, err)
		assert.Equal(t, string(ct), string(again))
	}
}

func TestDecrypt_Identity(t *testing.T) {
	k := key{identityColumn(), identityColumn()}
	ct := []byte("HELLOWORLD")
	pt := make([]byte, len(ct))
	require.NoError(t, decrypt(pt, ct, k))
	assert.Equal(t, "HELLOWORLD", string(pt))
}

func TestDecrypt_InvalidCiphertextChar(t *testing.T) {
	k := key{identityColumn()}
	pt := make([]byte, 3)

	err := decrypt(pt, []byte("AbC"), k)
	assert.ErrorIs(t, err, ErrInvalidCiphertextChar)

	broken := identityColumn()
	broken[1] = 'A' // B is now missing
	err = decrypt(pt, []byte("ABC"), key{broken})
	assert.ErrorIs(t, err, ErrInvalidCiphertextChar)
}

func TestDecrypt_NoColumns(t *testing.T) {
	err := decrypt(make([]byte, 1), []byte("A"), key{})
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestEncrypt_Errors(t *testing.T) {
	_, err := encrypt([]byte("ABC"), key{})
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = encrypt([]byte("AB1"), key{identityColumn()})
	assert.ErrorIs(t, err, ErrInvalidInputChar)
}

func TestKey_CloneIsIndependent(t *testing.T) {
	k := randomKey(t, 3, 2)
	c := k.clone()
	c[0].randomSwap(rand.New(rand.NewSource(1)))
	assert.NotEqual(t, k[0], c[0])

	dst := make(key, 2)
	k.copyTo(dst)
	assert.Equal(t, k, dst)
}
