// Command slippery breaks periodic polyalphabetic substitution ciphers
// from ciphertext alone: it finds the period with the index of coincidence,
// guesses a starting key from letter frequencies and then hill-climbs on
// tetragram fitness.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) startProfiling() error {
	if a.cpuprofile == "" {
		return nil
	}

	f, err := os.Create(a.cpuprofile)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("could not start CPU profile: %w", err)
	}
	a.cpuFile = f
	return nil
}

func (a *app) stopProfiling() error {
	if a.cpuFile != nil {
		pprof.StopCPUProfile()
		a.cpuFile.Close()
		a.cpuFile = nil
	}

	if a.memprofile == "" {
		return nil
	}
	f, err := os.Create(a.memprofile)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer f.Close()
	runtime.GC() // get up-to-date statistics
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}
	return nil
}

// openInput returns the text given on the command line, the named file,
// or stdin, in that order of preference.
func openInput(text string, args []string, stdin io.Reader) (io.ReadCloser, error) {
	if text != "" {
		return io.NopCloser(strings.NewReader(text)), nil
	}
	if len(args) > 0 && args[0] != "-" {
		return os.Open(args[0])
	}
	return io.NopCloser(stdin), nil
}

// eachLine calls fn for every line of r. Lines may be as long as maxLen
// letters plus some slack for separators stripped by normalization.
func eachLine(r io.Reader, maxLen int, fn func(lno int, line []byte) error) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 4*maxLen+64*1024)

	lno := 0
	for s.Scan() {
		lno++
		if err := fn(lno, s.Bytes()); err != nil {
			return err
		}
	}
	return s.Err()
}

// solveAll reads ciphertexts one per line and solves each in turn. A line
// that fails is reported and skipped; the count of failures is returned as
// an error at the end.
func (a *app) solveAll(ctx context.Context, r io.Reader, out io.Writer) error {
	tab, err := loadTables(a.cfg.Tables.Monograms, a.cfg.Tables.Tetragrams, a.log)
	if err != nil {
		return err
	}

	sv := &solver{cfg: a.cfg, tab: tab, m: a.metrics, log: a.log, progressOut: a.progressOut}

	failed := 0
	err = eachLine(r, a.cfg.Input.MaxTextLen, func(lno int, line []byte) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ct, err := newCiphertext(line, a.cfg.Input.MaxTextLen, a.cfg.Input.Normalize)
		if err != nil {
			failed++
			a.log.Error("skipping ciphertext", "line", lno, "error", err)
			return nil
		}
		if ct == nil {
			return nil
		}

		rep, err := sv.solve(ctx, ct)
		if err != nil {
			failed++
			a.log.Error("skipping ciphertext", "line", lno, "error", err)
			return nil
		}
		return rep.write(out, a.cfg.Output.Format, a.cfg.Output.Key)
	})
	if errors.Is(err, context.Canceled) {
		a.log.Warn("interrupted, remaining input skipped")
		err = nil
	}
	if err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d ciphertext(s) could not be solved", failed)
	}
	return nil
}
