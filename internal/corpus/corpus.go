// Package corpus encodes a fast-align parallel corpus into id sequences
// referencing one source and one target vocabulary.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/example/go-walign/internal/vocab"
)

// Separator divides the source and target token runs of a fast-align line.
const Separator = "|||"

const maxLineBytes = 16 << 20

// Errors wrapped by ParseError.
var (
	ErrMissingSeparator = errors.New("separator \"" + Separator + "\" not found")
	ErrInvalidUTF8      = errors.New("invalid UTF-8")
)

// ParseError reports a malformed corpus line.
type ParseError struct {
	Line int // 1-based
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("corpus: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Sentence is an ordered sequence of word ids; position is the alignment coordinate.
type Sentence []uint32

// SentencePair is one line of the corpus.
type SentencePair struct {
	Source Sentence
	Target Sentence
}

// Corpus holds the encoded pairs in input order together with both vocabularies.
type Corpus struct {
	Source *vocab.Vocabulary
	Target *vocab.Vocabulary
	Pairs  []SentencePair
}

// Load parses a fast-align stream into a corpus with fresh vocabularies.
func Load(r io.Reader) (*Corpus, error) {
	return LoadWith(r, vocab.New(), vocab.New())
}

// LoadWith parses a fast-align stream, extending the given vocabularies.
// Unknown words receive ids past the end of any model trained on them.
func LoadWith(r io.Reader, source, target *vocab.Vocabulary) (*Corpus, error) {
	c := &Corpus{Source: source, Target: target}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for sc.Scan() {
		line++

		pair, err := c.encodeLine(sc.Text())
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		c.Pairs = append(c.Pairs, pair)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("corpus: read line %d: %w", line+1, err)
	}

	return c, nil
}

func (c *Corpus) encodeLine(text string) (SentencePair, error) {
	if !utf8.ValidString(text) {
		return SentencePair{}, ErrInvalidUTF8
	}

	tokens := strings.Fields(text)

	sep := -1
	for i, tok := range tokens {
		if tok == Separator {
			sep = i
			break
		}
	}
	if sep < 0 {
		return SentencePair{}, ErrMissingSeparator
	}

	return SentencePair{
		Source: encode(tokens[:sep], c.Source),
		Target: encode(tokens[sep+1:], c.Target),
	}, nil
}

func encode(words []string, v *vocab.Vocabulary) Sentence {
	s := make(Sentence, len(words))
	for i, w := range words {
		s[i] = v.GetOrCreateID(w)
	}
	return s
}

// Words decodes a pair back into its source and target tokens.
func (c *Corpus) Words(pair SentencePair) (source, target []string) {
	return decode(pair.Source, c.Source), decode(pair.Target, c.Target)
}

func decode(s Sentence, v *vocab.Vocabulary) []string {
	words := make([]string, len(s))
	for i, id := range s {
		words[i], _ = v.Word(id)
	}
	return words
}
