package main

// monogramFrequencies returns the relative frequency of each letter in text.
func monogramFrequencies(text []byte) [26]float64 {
	var freqs [26]float64

	if len(text) == 0 {
		return freqs
	}
	for _, c := range text {
		freqs[c-'A']++
	}
	for i := range freqs {
		freqs[i] /= float64(len(text))
	}
	return freqs
}

// maxRemaining returns the index of the largest frequency not yet used.
// Ties go to the lowest index.
func maxRemaining(freqs *[26]float64, used *[26]bool) int {
	idx := -1
	for k := range freqs {
		if used[k] {
			continue
		}
		if idx < 0 || freqs[k] > freqs[idx] {
			idx = k
		}
	}
	return idx
}

// initialColumn pairs letters by frequency rank: the most common ciphertext
// letter stands for the most common reference letter, and so on down.
func initialColumn(observed, reference [26]float64) column {
	var (
		c                column
		usedObs, usedRef [26]bool
	)

	for n := 0; n < 26; n++ {
		f := maxRemaining(&observed, &usedObs)
		r := maxRemaining(&reference, &usedRef)
		c[r] = alphabet[f]
		usedObs[f] = true
		usedRef[r] = true
	}
	return c
}

// initialKey builds the starting key from the slices of the detected
// period. Each column is seeded from its own slice unless fromLast is set,
// in which case every column is seeded from the last slice.
func initialKey(slices [][]byte, reference [26]float64, fromLast bool) key {
	k := make(key, len(slices))
	for i := range k {
		s := slices[i]
		if fromLast {
			s = slices[len(slices)-1]
		}
		k[i] = initialColumn(monogramFrequencies(s), reference)
	}
	return k
}
