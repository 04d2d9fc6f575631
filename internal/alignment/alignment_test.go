package alignment

import (
	"bytes"
	"testing"

	"github.com/example/go-walign/internal/corpus"
)

func TestAlignment_String(t *testing.T) {
	tests := []struct {
		name string
		in   Alignment
		want string
	}{
		{name: "empty", in: nil, want: ""},
		{name: "single", in: Alignment{{Source: 0, Target: 0}}, want: "0-0"},
		{name: "several", in: Alignment{{Source: 1, Target: 0}, {Source: 0, Target: 2}}, want: "1-0 0-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	a, err := Parse("1-0 0-2  3-5")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a.String() != "1-0 0-2 3-5" {
		t.Errorf("Parse round trip = %q", a.String())
	}

	empty, err := Parse("")
	if err != nil || len(empty) != 0 {
		t.Errorf("Parse(\"\") = %v, %v; want empty, nil", empty, err)
	}

	for _, bad := range []string{"1", "a-1", "1-b", "1-2-3"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded; want error", bad)
		}
	}
}

type firstSource struct{}

func (firstSource) Align(p corpus.SentencePair) Alignment {
	if len(p.Source) == 0 {
		return nil
	}
	a := make(Alignment, len(p.Target))
	for i := range p.Target {
		a[i] = Edge{Source: 0, Target: uint32(i)}
	}
	return a
}

func TestAlignAll_PreservesOrderAndWrites(t *testing.T) {
	pairs := []corpus.SentencePair{
		{Source: corpus.Sentence{0}, Target: corpus.Sentence{0, 1}},
		{Source: nil, Target: corpus.Sentence{2}},
		{Source: corpus.Sentence{1, 2}, Target: corpus.Sentence{3}},
	}

	doc := AlignAll(firstSource{}, pairs)
	if len(doc) != len(pairs) {
		t.Fatalf("got %d alignments; want %d", len(doc), len(pairs))
	}

	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	want := "0-0 0-1\n\n0-0\n"
	if buf.String() != want {
		t.Errorf("WriteTo wrote %q; want %q", buf.String(), want)
	}
	if n != int64(len(want)) {
		t.Errorf("WriteTo returned %d; want %d", n, len(want))
	}
}
