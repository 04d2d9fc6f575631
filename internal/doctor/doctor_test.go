package doctor_test

import (
	"strings"
	"testing"

	"github.com/example/go-walign/internal/artifact"
	"github.com/example/go-walign/internal/doctor"
	"github.com/example/go-walign/internal/ibm1"
	"github.com/example/go-walign/internal/testutil"
	"github.com/spf13/afero"
)

func hasFailureContaining(failures []string, substr string) bool {
	for _, f := range failures {
		if strings.Contains(f, substr) {
			return true
		}
	}
	return false
}

func saveTrained(t *testing.T, fs afero.Fs, iterations uint32) {
	t.Helper()

	c := testutil.MustLoadCorpus(t, testutil.LargerCorpus)
	m := ibm1.Train(c, ibm1.TrainOptions{Iterations: iterations})
	err := artifact.NewStore(fs, "m").SaveBundle(artifact.Bundle{Source: c.Source, Target: c.Target, Model: m})
	if err != nil {
		t.Fatalf("SaveBundle: %v", err)
	}
}

// ---------------------------------------------------------------------------
// all-pass scenarios
// ---------------------------------------------------------------------------

func TestRun_TrainedModelPasses(t *testing.T) {
	fs := afero.NewMemMapFs()
	saveTrained(t, fs, 5)

	var out strings.Builder
	result := doctor.Run(doctor.Config{Fs: fs, Prefix: "m"}, &out)

	if result.Failed() {
		t.Errorf("expected all checks to pass; failures: %v\n%s", result.Failures(), out.String())
	}

	if !strings.Contains(out.String(), "t_fe") || !strings.Contains(out.String(), "t_0e") {
		t.Errorf("output should report both tables:\n%s", out.String())
	}

	if strings.Contains(out.String(), doctor.FailMark) {
		t.Errorf("output contains a failure mark:\n%s", out.String())
	}
}

func TestRun_UntrainedModelPasses(t *testing.T) {
	fs := afero.NewMemMapFs()
	saveTrained(t, fs, 0)

	var out strings.Builder
	result := doctor.Run(doctor.Config{Fs: fs, Prefix: "m"}, &out)

	if result.Failed() {
		t.Errorf("uniform model should pass; failures: %v", result.Failures())
	}

	if !strings.Contains(out.String(), "untrained") {
		t.Errorf("output should flag the model as untrained:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// failures
// ---------------------------------------------------------------------------

func TestRun_MissingArtifactsFail(t *testing.T) {
	var out strings.Builder
	result := doctor.Run(doctor.Config{Fs: afero.NewMemMapFs(), Prefix: "absent"}, &out)

	if !result.Failed() {
		t.Fatal("expected failure when artifacts are missing")
	}

	if len(result.Failures()) != 3 {
		t.Errorf("expected one failure per artifact, got: %v", result.Failures())
	}

	if !hasFailureContaining(result.Failures(), "absent.ibm1") {
		t.Errorf("expected failure mentioning absent.ibm1, got: %v", result.Failures())
	}
}

func TestRun_UnnormalizedRowFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := testutil.MustLoadCorpus(t, testutil.ToyCorpus)
	m := ibm1.Train(c, ibm1.TrainOptions{Iterations: 2})
	m.Row(0)[0] += 0.5

	err := artifact.NewStore(fs, "m").SaveBundle(artifact.Bundle{Source: c.Source, Target: c.Target, Model: m})
	if err != nil {
		t.Fatalf("SaveBundle: %v", err)
	}

	var out strings.Builder
	result := doctor.Run(doctor.Config{Fs: fs, Prefix: "m"}, &out)

	if !result.Failed() {
		t.Fatalf("expected failure for a corrupted row:\n%s", out.String())
	}

	if !hasFailureContaining(result.Failures(), `"the"`) {
		t.Errorf("expected failure naming the source word, got: %v", result.Failures())
	}
}

func TestRun_CorruptModelFails(t *testing.T) {
	fs := testutil.MemFS(t, map[string]string{
		"m.source.vocab": "1\na\n",
		"m.target.vocab": "1\nx\n",
		"m.ibm1":         "short",
	})

	var out strings.Builder
	result := doctor.Run(doctor.Config{Fs: fs, Prefix: "m"}, &out)

	if !hasFailureContaining(result.Failures(), "load") {
		t.Errorf("expected load failure, got: %v", result.Failures())
	}
}
