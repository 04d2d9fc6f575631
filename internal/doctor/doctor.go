// Package doctor checks that a trained model's artifacts are present,
// consistent with each other and hold normalized probability tables.
package doctor

import (
	"fmt"
	"io"
	"math"

	"github.com/example/go-walign/internal/artifact"
	"github.com/example/go-walign/internal/ibm1"
	"github.com/spf13/afero"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// DefaultTolerance bounds |sum - 1| for a normalized table row.
const DefaultTolerance = 1e-6

// Config holds injectable dependencies for each doctor check.
type Config struct {
	Fs     afero.Fs
	Prefix string
	// Tolerance defaults to DefaultTolerance when zero.
	Tolerance float64
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	tol := cfg.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	store := artifact.NewStore(cfg.Fs, cfg.Prefix)

	// ---- artifact files ---------------------------------------------------
	for _, ext := range []string{artifact.ExtSourceVocab, artifact.ExtTargetVocab, artifact.ExtModel} {
		path := store.Path(ext)
		if ok, err := afero.Exists(cfg.Fs, path); err != nil || !ok {
			res.fail(fmt.Sprintf("artifact %s: not found", path))
			fmt.Fprintf(w, "%s artifact %s: not found\n", FailMark, path)
		} else {
			fmt.Fprintf(w, "%s artifact: %s\n", PassMark, path)
		}
	}
	if res.Failed() {
		return res
	}

	// ---- bundle -----------------------------------------------------------
	bundle, err := store.LoadBundle()
	if err != nil {
		res.fail(fmt.Sprintf("load: %v", err))
		fmt.Fprintf(w, "%s load: %v\n", FailMark, err)
		return res
	}
	m := bundle.Model
	fmt.Fprintf(w, "%s model shape: %d source x %d target words\n", PassMark, m.FSize, m.ESize)

	if uniform(m) {
		fmt.Fprintf(w, "%s tables: untrained (uniform 1/%d)\n", PassMark, m.ESize+1)
	} else {
		checkTables(&res, bundle, tol, w)
	}

	// ---- viterbi output ---------------------------------------------------
	viterbi := store.Path(artifact.ExtViterbi)
	if ok, _ := afero.Exists(cfg.Fs, viterbi); ok {
		fmt.Fprintf(w, "%s viterbi: %s\n", PassMark, viterbi)
	} else {
		fmt.Fprintf(w, "%s viterbi: skipped (not written)\n", PassMark)
	}

	return res
}

func checkTables(res *Result, bundle artifact.Bundle, tol float64, w io.Writer) {
	m := bundle.Model

	// ---- t_fe rows --------------------------------------------------------
	bad, empty := 0, 0
	for f := 0; f < m.FSize; f++ {
		sum, ok := rowSum(m.Row(uint32(f)))
		switch {
		case !ok || (sum != 0 && math.Abs(sum-1) > tol):
			if bad == 0 {
				word, _ := bundle.Source.Word(uint32(f))
				res.fail(fmt.Sprintf("t_fe row %q sums to %v", word, sum))
			}
			bad++
		case sum == 0:
			empty++
		}
	}
	if bad > 0 {
		fmt.Fprintf(w, "%s t_fe: %d of %d rows not normalized\n", FailMark, bad, m.FSize)
	} else {
		fmt.Fprintf(w, "%s t_fe: %d rows normalized, %d unobserved\n", PassMark, m.FSize-empty, empty)
	}

	// ---- t_0e -------------------------------------------------------------
	sum, ok := rowSum(m.T0E)
	if !ok || (m.ESize > 0 && sum != 0 && math.Abs(sum-1) > tol) {
		res.fail(fmt.Sprintf("t_0e sums to %v", sum))
		fmt.Fprintf(w, "%s t_0e: sums to %v\n", FailMark, sum)
	} else {
		fmt.Fprintf(w, "%s t_0e: sums to %.6f\n", PassMark, sum)
	}
}

// rowSum adds a probability row, reporting false if any entry lies outside [0, 1].
func rowSum(row []float64) (float64, bool) {
	var sum float64
	for _, v := range row {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return math.NaN(), false
		}
		sum += v
	}
	return sum, true
}

// uniform reports whether m is still at its untrained initial values.
func uniform(m *ibm1.Model) bool {
	init := 1 / (float64(m.ESize) + 1)
	for _, v := range m.TFE {
		if v != init {
			return false
		}
	}
	for _, v := range m.T0E {
		if v != init {
			return false
		}
	}
	return true
}
