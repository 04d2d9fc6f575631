package ibm1

import (
	"math"
	"time"

	"github.com/example/go-walign/internal/corpus"
	"github.com/sourcegraph/conc/pool"
)

// epsilon is added to every normalizer so that unobserved words divide cleanly.
const epsilon = 1e-30

// EpochStats describes one completed EM epoch.
type EpochStats struct {
	Epoch    int // 1-based
	NLL      float64
	Pairs    int
	Duration time.Duration
}

// Observer receives per-epoch diagnostics. It must not retain or mutate the model.
type Observer func(EpochStats)

// TrainOptions configures Train.
type TrainOptions struct {
	Iterations uint32
	// Workers > 1 shards each epoch's E-step across goroutines.
	Workers  int
	Observer Observer
}

// Train runs EM over the corpus, sizing the tables from its vocabularies.
func Train(c *corpus.Corpus, opts TrainOptions) *Model {
	return TrainPairs(c.Pairs, c.Source.Size(), c.Target.Size(), opts)
}

// TrainPairs runs opts.Iterations EM epochs from the uniform model.
// Every id in pairs must be below fSize (source) or eSize (target).
func TrainPairs(pairs []corpus.SentencePair, fSize, eSize int, opts TrainOptions) *Model {
	m := NewUniform(fSize, eSize)

	shards := shardRanges(len(pairs), opts.Workers)
	acc := make([]*counts, len(shards))
	for i := range acc {
		acc[i] = newCounts(fSize, eSize)
	}

	for it := uint32(0); it < opts.Iterations; it++ {
		start := time.Now()

		if len(shards) == 1 {
			acc[0].reset()
			acc[0].addPairs(m, pairs)
		} else {
			p := pool.New().WithMaxGoroutines(len(shards))
			for i, r := range shards {
				i, r := i, r // per-iteration copies (pre-Go 1.22 loop semantics)
				p.Go(func() {
					acc[i].reset()
					acc[i].addPairs(m, pairs[r.lo:r.hi])
				})
			}
			p.Wait()

			for _, shard := range acc[1:] {
				acc[0].merge(shard)
			}
		}

		m.maximize(acc[0])

		if opts.Observer != nil {
			opts.Observer(EpochStats{
				Epoch:    int(it) + 1,
				NLL:      acc[0].nll,
				Pairs:    len(pairs),
				Duration: time.Since(start),
			})
		}
	}

	return m
}

// counts are the expected counts of one epoch (or one shard of it).
//
//	fe[f*E+e] = count(f, e)
//	e0[e]     = count(NULL, e)
//	f[f]      = sum_e count(f, e)
//	zero      = sum_e count(NULL, e)
type counts struct {
	fe   []float64
	e0   []float64
	f    []float64
	zero float64
	nll  float64

	z []float64 // per-target-position normalizers, reused across pairs
}

func newCounts(fSize, eSize int) *counts {
	return &counts{
		fe: make([]float64, fSize*eSize),
		e0: make([]float64, eSize),
		f:  make([]float64, fSize),
	}
}

func (c *counts) reset() {
	clear(c.fe)
	clear(c.e0)
	clear(c.f)
	c.zero = 0
	c.nll = 0
}

func (c *counts) addPairs(m *Model, pairs []corpus.SentencePair) {
	for _, p := range pairs {
		c.addPair(m, p)
	}
}

// addPair is the E-step for one sentence pair. It reads m and writes only c.
func (c *counts) addPair(m *Model, p corpus.SentencePair) {
	src, tgt := p.Source, p.Target
	if len(tgt) == 0 {
		return
	}
	stride := m.ESize

	if cap(c.z) < len(tgt) {
		c.z = make([]float64, len(tgt))
	}
	z := c.z[:len(tgt)]

	var logLikelihood float64
	for i, e := range tgt {
		var sum float64
		for _, f := range src {
			sum += m.TFE[int(f)*stride+int(e)]
		}
		sum += m.T0E[e]
		sum += epsilon

		z[i] = sum
		logLikelihood += math.Log2(sum)
	}
	c.nll -= logLikelihood - float64(len(tgt))*math.Log2(float64(len(src)+1))

	for i, e := range tgt {
		for _, f := range src {
			idx := int(f)*stride + int(e)
			delta := m.TFE[idx] / z[i]
			c.fe[idx] += delta
			c.f[f] += delta
		}
		delta := m.T0E[e] / z[i]
		c.e0[e] += delta
		c.zero += delta
	}
}

// merge adds o into c element-wise.
func (c *counts) merge(o *counts) {
	for i, v := range o.fe {
		c.fe[i] += v
	}
	for i, v := range o.e0 {
		c.e0[i] += v
	}
	for i, v := range o.f {
		c.f[i] += v
	}
	c.zero += o.zero
	c.nll += o.nll
}

// maximize is the M-step: renormalize the counts into probabilities.
func (m *Model) maximize(c *counts) {
	for f := 0; f < m.FSize; f++ {
		row := m.TFE[f*m.ESize : (f+1)*m.ESize]
		if c.f[f] == 0 {
			// Source word absent from every pair this epoch.
			clear(row)
			continue
		}

		crow := c.fe[f*m.ESize : (f+1)*m.ESize]
		total := c.f[f] + epsilon
		for e := range row {
			row[e] = crow[e] / total
		}
	}

	if c.zero == 0 {
		clear(m.T0E)
		return
	}
	total := c.zero + epsilon
	for e := range m.T0E {
		m.T0E[e] = c.e0[e] / total
	}
}

type shardRange struct{ lo, hi int }

// shardRanges splits n pairs into at most workers contiguous ranges.
// It always returns at least one range so a single accumulator exists.
func shardRanges(n, workers int) []shardRange {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = max(n, 1)
	}

	size := (n + workers - 1) / workers
	out := make([]shardRange, 0, workers)
	for lo := 0; lo < n || len(out) == 0; lo += size {
		out = append(out, shardRange{lo: lo, hi: min(lo+size, n)})
		if size == 0 {
			break
		}
	}

	return out
}
