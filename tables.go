package main

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
)

const nrTetragrams = 26 * 26 * 26 * 26

//go:embed corpus/english.txt
var englishCorpus []byte

// English single-letter frequencies, A-Z.
var englishMonograms = [26]float64{
	0.08167, 0.01492, 0.02782, 0.04253, 0.12702, 0.02228, 0.02015, // A-G
	0.06094, 0.06966, 0.00153, 0.00772, 0.04025, 0.02406, 0.06749, // H-N
	0.07507, 0.01929, 0.00095, 0.05987, 0.06327, 0.09056, 0.02758, // O-U
	0.00978, 0.02360, 0.00150, 0.01974, 0.00074, // V-Z
}

// tables holds the language statistics the search is scored against.
// It is never written after it is built, so workers share it freely.
type tables struct {
	monograms  [26]float64 // relative frequency of each letter
	tetragrams []float64   // log10 probability, indexed by tetragramIndex
	source     string      // where the tetragrams came from
}

// loadTables builds the reference tables. Empty file names select the
// built-in monograms and the tetragrams trained from the embedded corpus.
func loadTables(monogramFile, tetragramFile string, log *slog.Logger) (*tables, error) {
	t := &tables{monograms: englishMonograms}

	if monogramFile != "" {
		m, err := readFreqFile(monogramFile, 1, log)
		if err != nil {
			return nil, err
		}
		if t.monograms, err = monogramsFromCounts(m); err != nil {
			return nil, fmt.Errorf("%s: %w", monogramFile, err)
		}
	}

	if tetragramFile != "" {
		m, err := readFreqFile(tetragramFile, 4, log)
		if err != nil {
			return nil, err
		}
		counts := make([]float64, nrTetragrams)
		for k, v := range m {
			counts[tetragramIndex([]byte(k), 0)] += v
		}
		if t.tetragrams, err = tetragramsFromCounts(counts); err != nil {
			return nil, fmt.Errorf("%s: %w", tetragramFile, err)
		}
		t.source = tetragramFile
		return t, nil
	}

	var err error
	if t.tetragrams, err = trainTetragrams(englishCorpus); err != nil {
		return nil, fmt.Errorf("embedded corpus: %w", err)
	}
	t.source = "embedded corpus"
	return t, nil
}

// trainTetragrams counts every tetragram in the letters of corpus, ignoring
// case and anything that isn't a letter.
func trainTetragrams(corpus []byte) ([]float64, error) {
	letters := normalize(corpus)
	if len(letters) < 4 {
		return nil, fmt.Errorf("%w: corpus has %d letters", ErrInvalidTable, len(letters))
	}

	counts := make([]float64, nrTetragrams)
	for i := 0; i < len(letters)-3; i++ {
		counts[tetragramIndex(letters, i)]++
	}
	return tetragramsFromCounts(counts)
}

// tetragramsFromCounts turns raw counts into log10 probabilities. Tetragrams
// never seen get the floor log10(0.01/total).
func tetragramsFromCounts(counts []float64) ([]float64, error) {
	total := 0.0
	for _, c := range counts {
		total += c
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: no tetragram counts", ErrInvalidTable)
	}

	floor := math.Log10(0.01 / total)
	logs := make([]float64, len(counts))
	for i, c := range counts {
		if c > 0 {
			logs[i] = math.Log10(c / total)
		} else {
			logs[i] = floor
		}
	}
	return logs, nil
}

func monogramsFromCounts(m map[string]float64) ([26]float64, error) {
	var freqs [26]float64

	total := 0.0
	for k, v := range m {
		freqs[k[0]-'A'] += v
		total += v
	}
	if total <= 0 {
		return freqs, fmt.Errorf("%w: no monogram counts", ErrInvalidTable)
	}

	for i := range freqs {
		freqs[i] /= total
	}
	return freqs, nil
}

// Given a line of letter-group frequencies like:
// TION 13168375
// where TION is a group of exactly width letters A-Z and the number is how
// often that group appears in the language, return the parsed pair.
func parseFreqLine(line []byte, width int) (string, float64, error) {
	l := bytes.Fields(line)

	if len(l) != 2 {
		return "", 0, fmt.Errorf("invalid input (want 2 fields, got %d)", len(l))
	}

	letters := bytes.ToUpper(l[0])
	if len(letters) != width {
		return "", 0, fmt.Errorf("invalid input (%q is not %d letters)", letters, width)
	}
	for _, x := range letters {
		if x < 'A' || x > 'Z' {
			return "", 0, fmt.Errorf("invalid input (invalid character %q)", x)
		}
	}

	f, err := strconv.ParseFloat(string(l[1]), 64)
	if err != nil || f < 0 {
		return "", 0, fmt.Errorf("invalid input (invalid number %q)", l[1])
	}

	return string(letters), f, nil
}

// readFreqFile reads a frequency file, skipping blank lines, # comments and
// lines that don't parse.
func readFreqFile(fn string, width int, log *slog.Logger) (map[string]float64, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	return readFreqs(fh, fn, width, log)
}

func readFreqs(r io.Reader, name string, width int, log *slog.Logger) (map[string]float64, error) {
	m := make(map[string]float64)

	s := bufio.NewScanner(r)
	lno := 0
	for s.Scan() {
		lno++
		line := bytes.TrimSpace(s.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		k, f, err := parseFreqLine(line, width)
		if err != nil {
			log.Warn("skipping frequency line", "file", name, "line", lno, "error", err)
			continue
		}
		m[k] += f
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: %s has no usable lines", ErrInvalidTable, name)
	}

	return m, nil
}

type freqs struct {
	letters string
	pct     float64
}

// monogramRanks lists the letters in descending order of frequency.
func (t *tables) monogramRanks() []freqs {
	freq := make([]freqs, 26)
	for i := range freq {
		freq[i].letters = alphabet[i : i+1]
		freq[i].pct = t.monograms[i]
	}

	sort.SliceStable(freq, func(i, j int) bool { return freq[i].pct > freq[j].pct })
	return freq
}

// topTetragrams returns the n most likely tetragrams with their log10
// probabilities.
func (t *tables) topTetragrams(n int) []freqs {
	idx := make([]int, len(t.tetragrams))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return t.tetragrams[idx[i]] > t.tetragrams[idx[j]] })

	if n > len(idx) {
		n = len(idx)
	}
	ret := make([]freqs, n)
	for i := 0; i < n; i++ {
		x := idx[i]
		ret[i] = freqs{
			letters: string([]byte{
				alphabet[x/(26*26*26)],
				alphabet[x/(26*26)%26],
				alphabet[x/26%26],
				alphabet[x%26],
			}),
			pct: t.tetragrams[x],
		}
	}
	return ret
}

func (t *tables) dispFreqs(w io.Writer, nrTetra int) {
	for _, f := range t.monogramRanks() {
		fmt.Fprintf(w, "%s %4.2f  ", f.letters, f.pct*100)
	}
	fmt.Fprintln(w)

	if nrTetra < 1 {
		return
	}
	fmt.Fprintf(w, "tetragrams (%s):\n", t.source)
	for _, f := range t.topTetragrams(nrTetra) {
		fmt.Fprintf(w, "%s %8.4f\n", f.letters, f.pct)
	}
}
