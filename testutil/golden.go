// Package testutil provides golden-file comparison for JSON-encodable test
// output such as AST dumps and type stringifications (SPEC_FULL.md
// §10.4). Only this package's own tests call it.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// UpdateGoldens regenerates golden files instead of comparing against
// them: UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenMeta captures the platform a golden file was recorded on, purely
// informational (it is not part of the comparison).
type GoldenMeta struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GoldenFile is a golden file's on-disk shape: recording metadata
// alongside the data so a stale golden is traceable to the toolchain
// that produced it.
type GoldenFile struct {
	Meta GoldenMeta  `json:"meta"`
	Data interface{} `json:"data"`
}

// GetGoldenPath returns the on-disk path for a feature/name golden pair.
func GetGoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden.json")
}

// CompareWithGolden compares actual (anything JSON-marshalable — an AST
// dump string, a types.Type's String(), a *errors.Report) against the
// feature/name golden file, or writes it when UpdateGoldens is set.
func CompareWithGolden(t testing.TB, feature, name string, actual interface{}) {
	t.Helper()

	path := GetGoldenPath(feature, name)
	golden := GoldenFile{
		Meta: GoldenMeta{GoVersion: runtime.Version(), OS: runtime.GOOS, Arch: runtime.GOARCH},
		Data: actual,
	}

	actualJSON, err := marshalDeterministic(golden)
	if err != nil {
		t.Fatalf("marshaling actual data: %v", err)
	}

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating golden directory: %v", err)
		}
		if err := os.WriteFile(path, actualJSON, 0o644); err != nil {
			t.Fatalf("writing golden file: %v", err)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expectedJSON, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s (run with UPDATE_GOLDENS=true to create)", path)
		}
		t.Fatalf("reading golden file: %v", err)
	}

	if !jsonEqual(actualJSON, expectedJSON) {
		t.Errorf("golden mismatch for %s/%s:\n%s", feature, name, diffLines(string(expectedJSON), string(actualJSON)))
	}
}

// AssertGoldenJSON is CompareWithGolden for a caller that already has a
// JSON-encoded actual value in hand.
func AssertGoldenJSON(t *testing.T, feature, name string, actualJSON []byte) {
	t.Helper()
	var actual interface{}
	if err := json.Unmarshal(actualJSON, &actual); err != nil {
		t.Fatalf("unmarshaling actual JSON: %v", err)
	}
	CompareWithGolden(t, feature, name, actual)
}

// LoadGoldenFile reads back a golden file's Data payload, for a test
// that wants to assert against specific fields rather than full equality.
func LoadGoldenFile(t *testing.T, feature, name string) interface{} {
	t.Helper()
	data, err := os.ReadFile(GetGoldenPath(feature, name))
	if err != nil {
		t.Fatalf("loading golden file %s/%s: %v", feature, name, err)
	}
	var golden GoldenFile
	if err := json.Unmarshal(data, &golden); err != nil {
		t.Fatalf("unmarshaling golden file: %v", err)
	}
	return golden.Data
}

// marshalDeterministic marshals v, then round-trips through
// Unmarshal/MarshalIndent so Go's map-key sorting applies consistently
// regardless of the concrete type's original field order.
func marshalDeterministic(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return json.MarshalIndent(generic, "", "  ")
}

func jsonEqual(a, b []byte) bool {
	var aData, bData interface{}
	if err := json.Unmarshal(a, &aData); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bData); err != nil {
		return false
	}
	aJSON, _ := json.Marshal(aData)
	bJSON, _ := json.Marshal(bData)
	return string(aJSON) == string(bJSON)
}

// diffLines renders a minimal line-by-line expected/actual diff for a
// failed golden comparison.
func diffLines(expected, actual string) string {
	expLines := strings.Split(expected, "\n")
	actLines := strings.Split(actual, "\n")
	max := len(expLines)
	if len(actLines) > max {
		max = len(actLines)
	}
	var b strings.Builder
	for i := 0; i < max; i++ {
		var exp, act string
		if i < len(expLines) {
			exp = expLines[i]
		}
		if i < len(actLines) {
			act = actLines[i]
		}
		if exp != act {
			b.WriteString("- " + exp + "\n")
			b.WriteString("+ " + act + "\n")
		}
	}
	return b.String()
}
