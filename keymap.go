package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

var rxColumn = regexp.MustCompile(`^\[?([A-Z]+)\]?$`)

// parseKey reads key columns written as 26-letter alphabets separated by
// commas or whitespace, e.g. "QWERTYUIOPASDFGHJKLZXCVBNM,MNBVCXZLKJHGFDSAPOIUYTREWQ".
// The bracketed form printed by the text report is accepted too.
func parseKey(line []byte) (key, error) {
	fields := bytes.FieldsFunc(bytes.ToUpper(line), func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no columns in %q", ErrInvalidKey, line)
	}

	k := make(key, 0, len(fields))
	for i, f := range fields {
		m := rxColumn.FindSubmatch(f)
		if m == nil || len(m[1]) != 26 {
			return nil, fmt.Errorf("%w: column %d %q is not 26 letters", ErrInvalidKey, i+1, f)
		}

		var c column
		copy(c[:], m[1])
		k = append(k, c)
	}

	if err := k.validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func (k key) String() string {
	cols := make([]string, len(k))
	for i, c := range k {
		cols[i] = c.String()
	}
	return strings.Join(cols, ",")
}
