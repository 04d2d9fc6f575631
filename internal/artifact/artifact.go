// Package artifact reads and writes the files of a trained aligner, named
// "<prefix>.<ext>", on an afero filesystem.
package artifact

import (
	"fmt"
	"io"

	"github.com/example/go-walign/internal/ibm1"
	"github.com/example/go-walign/internal/vocab"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
)

// Artifact extensions.
const (
	ExtSourceVocab = "source.vocab"
	ExtTargetVocab = "target.vocab"
	ExtModel       = "ibm1"
	ExtViterbi     = "viterbi"
)

// Bundle is everything needed to align new sentence pairs.
type Bundle struct {
	Source *vocab.Vocabulary
	Target *vocab.Vocabulary
	Model  *ibm1.Model
}

// Store resolves artifact names against a path prefix.
type Store struct {
	fs     afero.Fs
	prefix string
}

// NewStore returns a store writing "<prefix>.<ext>" files on fs.
func NewStore(fs afero.Fs, prefix string) *Store {
	return &Store{fs: fs, prefix: prefix}
}

// Path returns the file name of the artifact with extension ext.
func (s *Store) Path(ext string) string {
	return s.prefix + "." + ext
}

// Write creates (or truncates) the artifact and streams src into it.
func (s *Store) Write(ext string, src io.WriterTo) error {
	return WriteFile(s.fs, s.Path(ext), src)
}

// Read opens the artifact and hands it to fn.
func (s *Store) Read(ext string, fn func(io.Reader) error) error {
	return ReadFile(s.fs, s.Path(ext), fn)
}

// SaveBundle writes both vocabularies and the model, stopping at the first
// failure. Files already written are left in place.
func (s *Store) SaveBundle(b Bundle) error {
	steps := []struct {
		ext string
		src io.WriterTo
	}{
		{ExtSourceVocab, b.Source},
		{ExtTargetVocab, b.Target},
		{ExtModel, b.Model},
	}
	for _, step := range steps {
		if err := s.Write(step.ext, step.src); err != nil {
			return err
		}
	}
	return nil
}

// LoadBundle reads the artifacts written by SaveBundle and checks that the
// model shape matches the vocabularies.
func (s *Store) LoadBundle() (Bundle, error) {
	var b Bundle

	err := s.Read(ExtSourceVocab, func(r io.Reader) (err error) {
		b.Source, err = vocab.Read(r)
		return err
	})
	if err != nil {
		return Bundle{}, err
	}

	err = s.Read(ExtTargetVocab, func(r io.Reader) (err error) {
		b.Target, err = vocab.Read(r)
		return err
	})
	if err != nil {
		return Bundle{}, err
	}

	err = s.Read(ExtModel, func(r io.Reader) (err error) {
		b.Model, err = ibm1.ReadModel(r)
		return err
	})
	if err != nil {
		return Bundle{}, err
	}

	if b.Model.FSize != b.Source.Size() || b.Model.ESize != b.Target.Size() {
		return Bundle{}, fmt.Errorf(
			"artifact: model shape %dx%d does not match vocabularies %dx%d",
			b.Model.FSize, b.Model.ESize, b.Source.Size(), b.Target.Size(),
		)
	}

	return b, nil
}

// WriteFile creates path on fs and streams src into it. Close errors are
// reported alongside write errors.
func WriteFile(fs afero.Fs, path string, src io.WriterTo) (err error) {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("artifact: create %s: %w", path, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	if _, err := src.WriteTo(f); err != nil {
		return fmt.Errorf("artifact: write %s: %w", path, err)
	}

	return nil
}

// ReadFile opens path on fs and hands it to fn.
func ReadFile(fs afero.Fs, path string, fn func(io.Reader) error) (err error) {
	f, err := fs.Open(path)
	if err != nil {
		return fmt.Errorf("artifact: open %s: %w", path, err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))

	if err := fn(f); err != nil {
		return fmt.Errorf("artifact: read %s: %w", path, err)
	}

	return nil
}
