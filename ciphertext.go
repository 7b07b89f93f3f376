package main

import (
	"bytes"
	"fmt"
)

var validLetter [256]bool

func init() {
	for x := 'A'; x <= 'Z'; x++ {
		validLetter[x] = true
	}
}

// normalize upper-cases text and drops everything that isn't a letter.
func normalize(text []byte) []byte {
	ret := make([]byte, 0, len(text))
	for _, c := range bytes.ToUpper(text) {
		if validLetter[c] {
			ret = append(ret, c)
		}
	}
	return ret
}

// newCiphertext validates one line of input. Blank lines and lines starting
// with '#' yield nil and no error. With clean set, the line is normalized
// first instead of rejected for stray characters.
func newCiphertext(line []byte, maxLen int, clean bool) ([]byte, error) {
	line = bytes.TrimSpace(line)

	// Commented line, ignore
	if len(line) < 1 || line[0] == '#' {
		return nil, nil
	}

	if clean {
		if line = normalize(line); len(line) == 0 {
			return nil, nil
		}
	} else {
		for i, c := range line {
			if !validLetter[c] {
				return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidInputChar, c, i)
			}
		}
	}

	if maxLen > 0 && len(line) > maxLen {
		return nil, fmt.Errorf("%w: %d letters, maximum %d", ErrInputTooLong, len(line), maxLen)
	}

	ct := make([]byte, len(line))
	copy(ct, line)
	return ct, nil
}
