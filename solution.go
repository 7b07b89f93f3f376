package main

// solution is a candidate key together with the plaintext it produces.
type solution struct {
	key         key
	plaintext   []byte
	fitness     float64
	worker      int   // climber that found it, -1 for the initial key
	evaluations int64 // keys that worker had scored when it found it
}

func newSolution(k key, pt []byte, fitness float64, worker int, evaluations int64) solution {
	p := make([]byte, len(pt))
	copy(p, pt)
	return solution{
		key:         k.clone(),
		plaintext:   p,
		fitness:     fitness,
		worker:      worker,
		evaluations: evaluations,
	}
}

func (s solution) String() string {
	return string(s.plaintext)
}
