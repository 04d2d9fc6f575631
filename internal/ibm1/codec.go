package ibm1

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxCells bounds f_size*e_size when reading (2 GiB of t_fe).
const maxCells = 1 << 28

// maxPrealloc caps how many floats are allocated ahead of the data actually
// read; tables grow past it as the stream delivers them.
const maxPrealloc = 1 << 16

// WriteTo encodes the model as
//
//	f_size:u32 e_size:u32 t_fe[f_size*e_size]:f64 t_0e[e_size]:f64
//
// all little-endian, t_fe row-major.
func (m *Model) WriteTo(w io.Writer) (int64, error) {
	if uint64(m.FSize) > math.MaxUint32 || uint64(m.ESize) > math.MaxUint32 {
		return 0, fmt.Errorf("ibm1: table shape %dx%d exceeds u32", m.FSize, m.ESize)
	}
	if len(m.TFE) != m.FSize*m.ESize || len(m.T0E) != m.ESize {
		return 0, fmt.Errorf("ibm1: tables do not match shape %dx%d", m.FSize, m.ESize)
	}

	bw := bufio.NewWriter(w)

	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], uint32(m.FSize))
	binary.LittleEndian.PutUint32(header[4:8], uint32(m.ESize))
	if _, err := bw.Write(header[:]); err != nil {
		return 0, fmt.Errorf("ibm1: write header: %w", err)
	}

	written := int64(len(header))
	var buf [8]byte
	for _, table := range [][]float64{m.TFE, m.T0E} {
		for _, v := range table {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			if _, err := bw.Write(buf[:]); err != nil {
				return written, fmt.Errorf("ibm1: write table: %w", err)
			}
			written += 8
		}
	}

	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("ibm1: flush: %w", err)
	}

	return written, nil
}

// ReadModel decodes a model written by WriteTo.
func ReadModel(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)

	var header [8]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("ibm1: read header: %w", unexpected(err))
	}

	fSize := int(binary.LittleEndian.Uint32(header[0:4]))
	eSize := int(binary.LittleEndian.Uint32(header[4:8]))
	if uint64(fSize)*uint64(eSize) > maxCells {
		return nil, fmt.Errorf("ibm1: table shape %dx%d too large", fSize, eSize)
	}

	m := &Model{FSize: fSize, ESize: eSize}

	var err error
	if m.TFE, err = readFloats(br, fSize*eSize); err != nil {
		return nil, fmt.Errorf("ibm1: read t_fe: %w", err)
	}
	if m.T0E, err = readFloats(br, eSize); err != nil {
		return nil, fmt.Errorf("ibm1: read t_0e: %w", err)
	}

	return m, nil
}

// readFloats reads n little-endian float64 values.
func readFloats(r io.Reader, n int) ([]float64, error) {
	out := make([]float64, 0, min(n, maxPrealloc))

	var buf [8]byte
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, unexpected(err)
		}
		out = append(out, math.Float64frombits(binary.LittleEndian.Uint64(buf[:])))
	}

	return out, nil
}

// unexpected maps a clean EOF inside a fixed-size record to ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
