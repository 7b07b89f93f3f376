package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type candidate struct {
	Fitness   float64  `json:"fitness" yaml:"fitness"`
	Plaintext string   `json:"plaintext" yaml:"plaintext"`
	Key       []string `json:"key" yaml:"key"`
}

// report is what gets printed for one ciphertext.
type report struct {
	RunID       string      `json:"run_id" yaml:"run_id"`
	Length      int         `json:"length" yaml:"length"`
	Period      int         `json:"period" yaml:"period"`
	IoC         []float64   `json:"ioc" yaml:"ioc"`
	Plaintext   string      `json:"plaintext" yaml:"plaintext"`
	Key         []string    `json:"key" yaml:"key"`
	Fitness     float64     `json:"fitness" yaml:"fitness"`
	Evaluations int64       `json:"evaluations" yaml:"evaluations"`
	Elapsed     string      `json:"elapsed" yaml:"elapsed"`
	Cancelled   bool        `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
	Candidates  []candidate `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

func keyStrings(k key) []string {
	ret := make([]string, len(k))
	for i, c := range k {
		ret[i] = c.String()
	}
	return ret
}

func newReport(ct []byte, pr periodResult, best solution, others []solution) *report {
	r := &report{
		Length:    len(ct),
		Period:    pr.period,
		IoC:       pr.ioc,
		Plaintext: best.String(),
		Key:       keyStrings(best.key),
		Fitness:   best.fitness,
	}
	for _, s := range others {
		r.Candidates = append(r.Candidates, candidate{
			Fitness:   s.fitness,
			Plaintext: s.String(),
			Key:       keyStrings(s.key),
		})
	}
	return r
}

func (r *report) write(w io.Writer, format string, showKey bool) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	fmt.Fprintln(w, r.Plaintext)
	if showKey {
		fmt.Fprintln(w, "key alphabets:")
		for _, c := range r.Key {
			fmt.Fprintf(w, "    [%s]\n", c)
		}
	}
	fmt.Fprintf(w, "fitness: %8.4f\n", r.Fitness)
	for i, c := range r.Candidates {
		fmt.Fprintf(w, "candidate %d: Fitness: %0.4f  %s\n", i+2, c.Fitness, c.Plaintext)
	}
	fmt.Fprintf(w, "Evaluated %d keys in %s\n", r.Evaluations, r.Elapsed)
	return nil
}
