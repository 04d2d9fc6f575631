package artifact

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/example/go-walign/internal/ibm1"
	"github.com/example/go-walign/internal/testutil"
	"github.com/example/go-walign/internal/vocab"
	"github.com/spf13/afero"
)

var errInjected = errors.New("injected create failure")

// failingFs refuses to create files whose name ends in suffix.
type failingFs struct {
	afero.Fs
	suffix string
}

func (f failingFs) Create(name string) (afero.File, error) {
	if strings.HasSuffix(name, f.suffix) {
		return nil, errInjected
	}
	return f.Fs.Create(name)
}

func trainedBundle(t *testing.T) Bundle {
	t.Helper()

	c := testutil.MustLoadCorpus(t, testutil.ToyCorpus)
	return Bundle{
		Source: c.Source,
		Target: c.Target,
		Model:  ibm1.Train(c, ibm1.TrainOptions{Iterations: 3}),
	}
}

func TestStore_Path(t *testing.T) {
	s := NewStore(afero.NewMemMapFs(), "out/run1")

	tests := map[string]string{
		ExtSourceVocab: "out/run1.source.vocab",
		ExtTargetVocab: "out/run1.target.vocab",
		ExtModel:       "out/run1.ibm1",
		ExtViterbi:     "out/run1.viterbi",
	}
	for ext, want := range tests {
		if got := s.Path(ext); got != want {
			t.Errorf("Path(%q) = %q; want %q", ext, got, want)
		}
	}
}

func TestSaveBundle_WritesVocabularies(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "model")

	if err := s.SaveBundle(trainedBundle(t)); err != nil {
		t.Fatalf("SaveBundle: %v", err)
	}

	src, err := afero.ReadFile(fs, "model.source.vocab")
	if err != nil {
		t.Fatalf("read source vocab: %v", err)
	}
	if string(src) != "3\nthe\ncat\ndog\n" {
		t.Errorf("source vocab = %q", src)
	}

	tgt, err := afero.ReadFile(fs, "model.target.vocab")
	if err != nil {
		t.Fatalf("read target vocab: %v", err)
	}
	if string(tgt) != "3\nle\nchat\nchien\n" {
		t.Errorf("target vocab = %q", tgt)
	}

	info, err := fs.Stat("model.ibm1")
	if err != nil {
		t.Fatalf("stat model: %v", err)
	}
	if want := int64(8 + 8*(9+3)); info.Size() != want {
		t.Errorf("model size = %d; want %d", info.Size(), want)
	}
}

func TestLoadBundle_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "model")
	want := trainedBundle(t)

	if err := s.SaveBundle(want); err != nil {
		t.Fatalf("SaveBundle: %v", err)
	}

	got, err := s.LoadBundle()
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}

	for id := uint32(0); id < uint32(want.Source.Size()); id++ {
		w, _ := want.Source.Word(id)
		g, _ := got.Source.Word(id)
		if w != g {
			t.Errorf("source word %d = %q; want %q", id, g, w)
		}
	}
	for i := range want.Model.TFE {
		if math.Float64bits(got.Model.TFE[i]) != math.Float64bits(want.Model.TFE[i]) {
			t.Fatalf("TFE[%d] = %v; want %v", i, got.Model.TFE[i], want.Model.TFE[i])
		}
	}

	// Re-saving the loaded vocabulary is byte-identical.
	var a, b bytes.Buffer
	if _, err := want.Target.WriteTo(&a); err != nil {
		t.Fatal(err)
	}
	if _, err := got.Target.WriteTo(&b); err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Errorf("target vocab re-save = %q; want %q", b.String(), a.String())
	}
}

func TestLoadBundle_ShapeMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewStore(fs, "model")

	b := trainedBundle(t)
	b.Source = vocab.New()
	b.Source.GetOrCreateID("only")

	if err := s.SaveBundle(b); err != nil {
		t.Fatalf("SaveBundle: %v", err)
	}
	if _, err := s.LoadBundle(); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}

func TestLoadBundle_Missing(t *testing.T) {
	_, err := NewStore(afero.NewMemMapFs(), "nothing").LoadBundle()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v; want os.ErrNotExist", err)
	}
}

func TestSaveBundle_PartialFailureLeavesEarlierFiles(t *testing.T) {
	mem := afero.NewMemMapFs()
	s := NewStore(failingFs{Fs: mem, suffix: "." + ExtModel}, "model")

	err := s.SaveBundle(trainedBundle(t))
	if !errors.Is(err, errInjected) {
		t.Fatalf("error = %v; want injected failure", err)
	}

	for _, name := range []string{"model.source.vocab", "model.target.vocab"} {
		if ok, _ := afero.Exists(mem, name); !ok {
			t.Errorf("%s missing after partial failure", name)
		}
	}
	if ok, _ := afero.Exists(mem, "model.ibm1"); ok {
		t.Error("model.ibm1 exists despite failure")
	}
}

type failingWriterTo struct{}

func (failingWriterTo) WriteTo(io.Writer) (int64, error) { return 0, io.ErrShortWrite }

func TestWriteFile_PropagatesWriteError(t *testing.T) {
	err := WriteFile(afero.NewMemMapFs(), "x", failingWriterTo{})
	if !errors.Is(err, io.ErrShortWrite) {
		t.Fatalf("error = %v; want io.ErrShortWrite", err)
	}
	if !strings.Contains(err.Error(), "x") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestWriteFile_ReadOnlyFs(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	if err := WriteFile(fs, "x", vocab.New()); err == nil {
		t.Fatal("expected create error on read-only filesystem")
	}
}
