package testutil

import (
	"path/filepath"
	"os"
	"testing"
)

// withTempGoldenDir chdirs into a scratch directory for the duration of
// the test, so CompareWithGolden's "testdata/..." relative path writes
// and reads there instead of the package's real testdata/.
func withTempGoldenDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestCompareWithGoldenRoundTrips(t *testing.T) {
	withTempGoldenDir(t)
	prevUpdate := UpdateGoldens
	t.Cleanup(func() { UpdateGoldens = prevUpdate })

	actual := map[string]interface{}{"instr": "LIT", "value": float64(42)}

	UpdateGoldens = true
	CompareWithGolden(t, "sample", "literal", actual)

	UpdateGoldens = false
	CompareWithGolden(t, "sample", "literal", actual)
}

func TestCompareWithGoldenDetectsMismatch(t *testing.T) {
	withTempGoldenDir(t)
	prevUpdate := UpdateGoldens
	t.Cleanup(func() { UpdateGoldens = prevUpdate })

	UpdateGoldens = true
	CompareWithGolden(t, "sample", "baseline", map[string]interface{}{"value": float64(1)})
	UpdateGoldens = false

	rec := &failureRecorder{TB: t}
	CompareWithGolden(rec, "sample", "baseline", map[string]interface{}{"value": float64(2)})
	if !rec.failed {
		t.Fatalf("expected the mismatched comparison to fail")
	}
}

// failureRecorder wraps the running test so that a mismatch reported
// through Errorf is recorded instead of failing the enclosing test.
type failureRecorder struct {
	testing.TB
	failed bool
}

func (r *failureRecorder) Helper() {}

func (r *failureRecorder) Errorf(format string, args ...interface{}) { r.failed = true }

func TestLoadGoldenFileReturnsWrittenData(t *testing.T) {
	withTempGoldenDir(t)
	prevUpdate := UpdateGoldens
	t.Cleanup(func() { UpdateGoldens = prevUpdate })

	UpdateGoldens = true
	CompareWithGolden(t, "sample", "loadable", map[string]interface{}{"name": "add"})
	UpdateGoldens = false

	data := LoadGoldenFile(t, "sample", "loadable")
	m, ok := data.(map[string]interface{})
	if !ok || m["name"] != "add" {
		t.Fatalf("expected loaded golden data {name: add}, got %#v", data)
	}
}

func TestGetGoldenPathJoinsFeatureAndName(t *testing.T) {
	got := GetGoldenPath("ast", "literal_int")
	want := filepath.Join("testdata", "ast", "literal_int.golden.json")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestAssertGoldenJSONAcceptsRawJSON(t *testing.T) {
	withTempGoldenDir(t)
	prevUpdate := UpdateGoldens
	t.Cleanup(func() { UpdateGoldens = prevUpdate })

	UpdateGoldens = true
	AssertGoldenJSON(t, "sample", "raw", []byte(`{"instr":"LIT","value":42}`))
	UpdateGoldens = false
	AssertGoldenJSON(t, "sample", "raw", []byte(`{"value": 42, "instr": "LIT"}`))
}
