// Package alignment holds word alignments and their "source-target" text form.
package alignment

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/go-walign/internal/corpus"
)

// Edge links one target position to one source position (both 0-origin).
type Edge struct {
	Source uint32
	Target uint32
}

// Alignment is the edge set of one sentence pair, in ascending target order.
// Target positions without an edge are aligned to NULL.
type Alignment []Edge

// Aligner produces the Viterbi alignment of a sentence pair.
type Aligner interface {
	Align(pair corpus.SentencePair) Alignment
}

// AlignAll aligns every pair, preserving corpus order.
func AlignAll(a Aligner, pairs []corpus.SentencePair) Document {
	doc := make(Document, len(pairs))
	for i, p := range pairs {
		doc[i] = a.Align(p)
	}
	return doc
}

// String renders the alignment as space separated "s-t" pairs.
func (a Alignment) String() string {
	var sb strings.Builder
	for i, e := range a {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatUint(uint64(e.Source), 10))
		sb.WriteByte('-')
		sb.WriteString(strconv.FormatUint(uint64(e.Target), 10))
	}
	return sb.String()
}

// Parse reads one line produced by String.
func Parse(line string) (Alignment, error) {
	fields := strings.Fields(line)
	a := make(Alignment, 0, len(fields))

	for _, f := range fields {
		s, t, ok := strings.Cut(f, "-")
		if !ok {
			return nil, fmt.Errorf("alignment: malformed edge %q", f)
		}
		src, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("alignment: edge %q source: %w", f, err)
		}
		tgt, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("alignment: edge %q target: %w", f, err)
		}
		a = append(a, Edge{Source: uint32(src), Target: uint32(tgt)})
	}

	return a, nil
}

// Document is the per-line alignment output of a whole corpus.
type Document []Alignment

// WriteTo writes one line per alignment; an empty line means all NULL.
func (d Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)

	var total int64
	for i, a := range d {
		n, err := bw.WriteString(a.String() + "\n")
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("alignment: write line %d: %w", i+1, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return total, fmt.Errorf("alignment: flush: %w", err)
	}

	return total, nil
}
