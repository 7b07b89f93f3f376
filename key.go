package main

import (
	"fmt"
	"math/rand"
)

// column is one position's substitution alphabet: column[i] is the
// ciphertext letter standing for the i-th letter of the alphabet.
// A column is always a permutation of A-Z.
type column [26]byte

// key holds one column per position of the period.
type key []column

func identityColumn() column {
	var c column
	copy(c[:], alphabet)
	return c
}

func (c column) String() string {
	return string(c[:])
}

// position returns the rank of letter ch within the column.
func (c *column) position(ch byte) (int, bool) {
	for i, x := range c {
		if x == ch {
			return i, true
		}
	}
	return 0, false
}

// ranks inverts the column: ranks[ch-'A'] is the rank of ch, valid where
// present[ch-'A'] is set.
func (c *column) ranks() (ranks [26]byte, present [26]bool) {
	for i, x := range c {
		if x < 'A' || x > 'Z' {
			continue
		}
		ranks[x-'A'] = byte(i)
		present[x-'A'] = true
	}
	return
}

func (c *column) isPermutation() bool {
	var seen [26]bool
	for _, x := range c {
		if x < 'A' || x > 'Z' || seen[x-'A'] {
			return false
		}
		seen[x-'A'] = true
	}
	return true
}

// randomize replaces the column with a uniformly random permutation by
// dropping each letter into a random rank that is still empty.
func (c *column) randomize(rng *rand.Rand) {
	var filled [26]bool

	for i := 0; i < 26; i++ {
		j := rng.Intn(26)
		for filled[j] {
			j = rng.Intn(26)
		}
		c[j] = alphabet[i]
		filled[j] = true
	}
}

// randomSwap exchanges two distinct, randomly chosen letters.
func (c *column) randomSwap(rng *rand.Rand) {
	i := rng.Intn(26)
	j := i
	for i == j {
		j = rng.Intn(26)
	}
	c[i], c[j] = c[j], c[i]
}

func (k key) period() int {
	return len(k)
}

func (k key) clone() key {
	ret := make(key, len(k))
	copy(ret, k)
	return ret
}

// copyTo overwrites dst, which must have the same period, with k.
func (k key) copyTo(dst key) {
	copy(dst, k)
}

func (k key) validate() error {
	if len(k) < 1 {
		return fmt.Errorf("%w: no columns", ErrInvalidKey)
	}
	for i := range k {
		if !k[i].isPermutation() {
			return fmt.Errorf("%w: column %d %q is not a permutation of %s", ErrInvalidKey, i+1, k[i].String(), alphabet)
		}
	}
	return nil
}

// decrypt writes the plaintext of ct under k into pt, which must be at
// least as long as ct.
func decrypt(pt, ct []byte, k key) error {
	p := len(k)
	if p < 1 {
		return fmt.Errorf("%w: no columns", ErrInvalidKey)
	}
	ranks := make([][26]byte, p)
	present := make([][26]bool, p)
	for i := range k {
		ranks[i], present[i] = k[i].ranks()
	}

	for i, c := range ct {
		j := i % p
		if c < 'A' || c > 'Z' || !present[j][c-'A'] {
			return fmt.Errorf("%w: %q at offset %d, column %d", ErrInvalidCiphertextChar, c, i, j+1)
		}
		pt[i] = alphabet[ranks[j][c-'A']]
	}
	return nil
}

// encrypt is the inverse of decrypt.
func encrypt(pt []byte, k key) ([]byte, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}

	ct := make([]byte, len(pt))
	for i, c := range pt {
		if !validLetter[c] {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidInputChar, c, i)
		}
		ct[i] = k[i%len(k)][c-'A']
	}
	return ct, nil
}
