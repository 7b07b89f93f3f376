package main

import "fmt"

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Index of coincidence of text, scaled by the alphabet size so that English
// scores around 1.73 and uniformly random letters around 1.0.
// text must hold only the letters A-Z.
func indexOfCoincidence(text []byte) (float64, error) {
	var counts [26]int

	n := len(text)
	if n < 2 {
		return 0, fmt.Errorf("%w: length %d", ErrDegenerateSlice, n)
	}

	for _, c := range text {
		counts[c-'A']++
	}

	numer := 0
	for _, x := range counts {
		numer += x * (x - 1)
	}

	return 26 * float64(numer) / (float64(n) * float64(n-1)), nil
}

// tetragramIndex maps the four letters starting at text[i] to their slot in
// a tetragram table.
func tetragramIndex(text []byte, i int) int {
	return int(text[i]-'A')*26*26*26 +
		int(text[i+1]-'A')*26*26 +
		int(text[i+2]-'A')*26 +
		int(text[i+3]-'A')
}

// fitness is the mean log-likelihood of every overlapping tetragram in text.
func (t *tables) fitness(text []byte) (float64, error) {
	if len(text) < 4 {
		return 0, fmt.Errorf("%w: length %d", ErrTextTooShort, len(text))
	}

	result := 0.0
	for i := 0; i < len(text)-3; i++ {
		result += t.tetragrams[tetragramIndex(text, i)]
	}
	return result / float64(len(text)-3), nil
}
