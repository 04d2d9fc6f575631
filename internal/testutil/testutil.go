// Package testutil provides shared corpus fixtures for package tests.
//
// Typical usage:
//
//	func TestTrain(t *testing.T) {
//	    c := testutil.MustLoadCorpus(t, testutil.ToyCorpus)
//	    ...
//	}
package testutil

import (
	"strings"
	"testing"

	"github.com/example/go-walign/internal/corpus"
	"github.com/spf13/afero"
)

// ToyCorpus is the two-pair English/French corpus used across tests.
// "the"/"le" co-occur twice; the nouns co-occur once each.
const ToyCorpus = "the cat ||| le chat\nthe dog ||| le chien\n"

// LargerCorpus has enough overlap for EM to separate every noun.
const LargerCorpus = `the cat ||| le chat
the dog ||| le chien
a cat ||| un chat
a dog ||| un chien
the house ||| la maison
a house ||| une maison
the cat sleeps ||| le chat dort
the dog sleeps ||| le chien dort
`

// MustLoadCorpus parses text as a fast-align corpus or fails the test.
func MustLoadCorpus(tb testing.TB, text string) *corpus.Corpus {
	tb.Helper()

	c, err := corpus.Load(strings.NewReader(text))
	if err != nil {
		tb.Fatalf("load corpus: %v", err)
	}

	return c
}

// MemFS returns an in-memory filesystem holding the given files.
func MemFS(tb testing.TB, files map[string]string) afero.Fs {
	tb.Helper()

	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
	}

	return fs
}

// ID returns the id of word in the source or target vocabulary, failing the
// test if it is absent.
func ID(tb testing.TB, c *corpus.Corpus, target bool, word string) uint32 {
	tb.Helper()

	v := c.Source
	if target {
		v = c.Target
	}

	id, ok := v.ID(word)
	if !ok {
		tb.Fatalf("word %q not in vocabulary", word)
	}

	return id
}
