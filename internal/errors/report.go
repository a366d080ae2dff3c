// Package errors is the structured error reporting layer shared by every
// pipeline phase (lex, parse, import, validate, evaluate). It mirrors the
// teacher's ailang/internal/errors package: a schema-versioned Report
// value that survives error-chain unwrapping, plus deterministic JSON and
// human-readable rendering (spec.md §7, SPEC_FULL.md §10.1).
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Position is the minimal source location a Report carries; it mirrors
// ast.Pos without importing the ast package (errors sits below ast in the
// dependency graph).
type Position struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

func (p Position) String() string {
	if p.Line == 0 && p.Col == 0 {
		return "EOF"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Report is the canonical structured error type for Plang.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Pos     *Position      `json:"pos,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error so structured reports survive
// errors.As() unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for the given phase/code/message/position.
func New(phase, code string, pos Position, message string, data map[string]any) *Report {
	return &Report{
		Schema:  "plang.error/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Pos:     &pos,
		Data:    data,
	}
}

// ToJSON renders the Report deterministically (sorted map keys, stdlib
// json.Marshal already sorts map[string]any keys).
func (r *Report) ToJSON(indent bool) (string, error) {
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(r, "", "  ")
	} else {
		data, err = json.Marshal(r)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Render prints a caret diagnostic: the offending source line followed by
// a `^` under the reported column, the teacher's CLI style of pairing a
// human-facing render with the machine-facing Report (SPEC_FULL.md §12).
func (r *Report) Render(w io.Writer, src []string) {
	fmt.Fprintf(w, "%s: %s\n", r.Code, r.Message)
	if r.Pos == nil || r.Pos.Line < 1 || r.Pos.Line > len(src) {
		return
	}
	line := src[r.Pos.Line-1]
	fmt.Fprintf(w, "  %4d | %s\n", r.Pos.Line, line)
	caretCol := r.Pos.Col
	if caretCol < 1 {
		caretCol = 1
	}
	fmt.Fprintf(w, "       | %s^\n", strings.Repeat(" ", caretCol-1))
}

// SortedDataKeys returns Data's keys in sorted order, for callers that
// want to iterate deterministically without re-marshaling.
func (r *Report) SortedDataKeys() []string {
	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
