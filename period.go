package main

import "fmt"

type periodResult struct {
	period int
	ioc    []float64 // averaged IoC of each candidate period tried, from 1
	slices [][]byte  // interleaved slices of the accepted period
}

// slicePeriod cuts ct into period interleaved slices, slice i holding every
// period-th letter starting at i. Only whole rows are used, so every slice
// has len(ct)/period letters. It returns the slices and their averaged IoC.
func slicePeriod(ct []byte, period int) ([][]byte, float64, error) {
	rows := len(ct) / period
	if rows < 2 {
		return nil, 0, fmt.Errorf("%w: period %d leaves %d letters per slice of %d", ErrDegenerateSlice, period, rows, len(ct))
	}

	slices := make([][]byte, period)
	ioc := 0.0
	for i := range slices {
		s := make([]byte, rows)
		for j := range s {
			s[j] = ct[period*j+i]
		}

		x, err := indexOfCoincidence(s)
		if err != nil {
			return nil, 0, err
		}
		ioc += x
		slices[i] = s
	}

	return slices, ioc / float64(period), nil
}

// detectPeriod tries periods 1, 2, ... and accepts the first one whose
// averaged IoC is above the threshold and jumps by at least the multiplier
// over the previous period's. Period 1 only has to pass the threshold.
// Periods beyond min(len(ct)/2, maxPeriod) are not tried.
func detectPeriod(ct []byte, sc SearchConfig) (periodResult, error) {
	res := periodResult{}

	maxPeriod := len(ct) / 2
	if sc.MaxPeriod > 0 && sc.MaxPeriod < maxPeriod {
		maxPeriod = sc.MaxPeriod
	}

	prev := 0.0
	for p := 1; p <= maxPeriod; p++ {
		slices, ioc, err := slicePeriod(ct, p)
		if err != nil {
			return res, err
		}
		res.ioc = append(res.ioc, ioc)

		if ioc > sc.IoCThreshold && (p == 1 || ioc > sc.IoCMultiplier*prev) {
			res.period = p
			res.slices = slices
			return res, nil
		}
		prev = ioc
	}

	return res, fmt.Errorf("%w: tried periods 1-%d of %d letters (threshold %.2f, multiplier %.2f)",
		ErrPeriodNotFound, maxPeriod, len(ct), sc.IoCThreshold, sc.IoCMultiplier)
}

// fixedPeriod skips detection when the period is already known.
func fixedPeriod(ct []byte, period int) (periodResult, error) {
	slices, ioc, err := slicePeriod(ct, period)
	if err != nil {
		return periodResult{}, err
	}
	return periodResult{period: period, ioc: []float64{ioc}, slices: slices}, nil
}
