// Package vocab provides the append-only word/id table used on each side of a
// parallel corpus, plus its line-oriented text encoding.
package vocab

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrMissingCount is returned when a vocabulary stream has no size line.
	ErrMissingCount = errors.New("vocab: missing size line")
	// ErrDuplicateWord is returned when a vocabulary stream lists a word twice.
	ErrDuplicateWord = errors.New("vocab: duplicate word")
	// ErrTrailingData is returned when a stream continues past its declared size.
	ErrTrailingData = errors.New("vocab: data after last word")
	// ErrInvalidWord is returned by WriteTo for a word the line format cannot hold.
	ErrInvalidWord = errors.New("vocab: word cannot be encoded")
)

// maxPrealloc caps the capacity reserved from an untrusted size line.
const maxPrealloc = 1 << 16

// Vocabulary maps words to dense ids assigned in first-seen order.
type Vocabulary struct {
	ids   map[string]uint32
	words []string
}

// New returns an empty vocabulary.
func New() *Vocabulary {
	return &Vocabulary{ids: make(map[string]uint32)}
}

// GetOrCreateID returns the id of word, assigning the next id if the word is new.
// Words must be non-empty and free of line breaks to survive WriteTo.
func (v *Vocabulary) GetOrCreateID(word string) uint32 {
	if id, ok := v.ids[word]; ok {
		return id
	}

	id := uint32(len(v.words))
	v.ids[word] = id
	v.words = append(v.words, word)

	return id
}

// ID looks up word without inserting it.
func (v *Vocabulary) ID(word string) (uint32, bool) {
	id, ok := v.ids[word]
	return id, ok
}

// Word returns the word registered under id.
func (v *Vocabulary) Word(id uint32) (string, bool) {
	if int(id) >= len(v.words) {
		return "", false
	}
	return v.words[id], true
}

// Size returns the number of distinct words.
func (v *Vocabulary) Size() int {
	return len(v.words)
}

// WriteTo writes the size line followed by one word per line in id order.
// It writes nothing if any word is empty or contains a line break.
func (v *Vocabulary) WriteTo(w io.Writer) (int64, error) {
	for id, word := range v.words {
		if word == "" || strings.ContainsAny(word, "\r\n") {
			return 0, fmt.Errorf("%w: id %d %q", ErrInvalidWord, id, word)
		}
	}

	bw := bufio.NewWriter(w)

	var total int64
	n, err := fmt.Fprintf(bw, "%d\n", len(v.words))
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("vocab: write size: %w", err)
	}

	for _, word := range v.words {
		n, err = bw.WriteString(word)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("vocab: write word: %w", err)
		}
		if err = bw.WriteByte('\n'); err != nil {
			return total, fmt.Errorf("vocab: write word: %w", err)
		}
		total++
	}

	if err := bw.Flush(); err != nil {
		return total, fmt.Errorf("vocab: flush: %w", err)
	}

	return total, nil
}

// Read decodes a vocabulary written by WriteTo. Line k+2 becomes id k.
func Read(r io.Reader) (*Vocabulary, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("vocab: read size: %w", err)
		}
		return nil, ErrMissingCount
	}

	size, err := strconv.ParseUint(strings.TrimSpace(sc.Text()), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("vocab: invalid size line %q: %w", sc.Text(), err)
	}

	prealloc := int(min(size, maxPrealloc))
	v := &Vocabulary{
		ids:   make(map[string]uint32, prealloc),
		words: make([]string, 0, prealloc),
	}
	for i := uint64(0); i < size; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("vocab: read word %d: %w", i, err)
			}
			return nil, fmt.Errorf("vocab: expected %d words, got %d", size, i)
		}

		word := sc.Text()
		if word == "" {
			return nil, fmt.Errorf("vocab: empty word on line %d", i+2)
		}
		if _, dup := v.ids[word]; dup {
			return nil, fmt.Errorf("%w %q on line %d", ErrDuplicateWord, word, i+2)
		}
		v.GetOrCreateID(word)
	}

	if sc.Scan() {
		return nil, fmt.Errorf("%w: line %d", ErrTrailingData, size+2)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read: %w", err)
	}

	return v, nil
}
