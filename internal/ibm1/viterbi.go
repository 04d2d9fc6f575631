package ibm1

import (
	"github.com/example/go-walign/internal/alignment"
	"github.com/example/go-walign/internal/corpus"
)

var _ alignment.Aligner = (*Model)(nil)

// Align returns the Viterbi alignment of pair. Each target word picks the
// earliest source position with the highest t_fe and keeps it only when that
// score is strictly above its NULL score.
func (m *Model) Align(pair corpus.SentencePair) alignment.Alignment {
	var edges alignment.Alignment

	for i, e := range pair.Target {
		bestJ := 0
		bestT := -1.0
		for j, f := range pair.Source {
			if t := m.T(f, e); t > bestT {
				bestJ = j
				bestT = t
			}
		}

		if bestT > m.T0(e) {
			edges = append(edges, alignment.Edge{Source: uint32(bestJ), Target: uint32(i)})
		}
	}

	return edges
}
