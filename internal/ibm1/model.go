// Package ibm1 trains and applies IBM Model 1 word translation tables.
//
// The model is two dense tables: t_fe[f][e] = P(e|f) over the source and
// target vocabularies, and t_0e[e] = P(e|NULL). Both are plain float64
// slices indexed by word id; t_fe is row-major with index f*ESize+e.
package ibm1

// Model holds the translation tables.
type Model struct {
	FSize int
	ESize int
	TFE   []float64
	T0E   []float64
}

// NewUniform returns a model with every probability set to 1/(eSize+1).
func NewUniform(fSize, eSize int) *Model {
	m := &Model{
		FSize: fSize,
		ESize: eSize,
		TFE:   make([]float64, fSize*eSize),
		T0E:   make([]float64, eSize),
	}

	init := 1 / (float64(eSize) + 1)
	for i := range m.TFE {
		m.TFE[i] = init
	}
	for i := range m.T0E {
		m.T0E[i] = init
	}

	return m
}

// T returns P(e|f). Ids outside the trained vocabularies read as 0.
func (m *Model) T(f, e uint32) float64 {
	if int(f) >= m.FSize || int(e) >= m.ESize {
		return 0
	}
	return m.TFE[int(f)*m.ESize+int(e)]
}

// T0 returns P(e|NULL). Ids outside the trained vocabulary read as 0.
func (m *Model) T0(e uint32) float64 {
	if int(e) >= m.ESize {
		return 0
	}
	return m.T0E[e]
}

// Row returns the t_fe row of source word f.
func (m *Model) Row(f uint32) []float64 {
	off := int(f) * m.ESize
	return m.TFE[off : off+m.ESize]
}
