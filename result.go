package twigcs

import (
	"fmt"
	"strings"
)

// DisplayMode selects which violations reporters render
type DisplayMode int

const (
	DisplayAll      DisplayMode = iota // every violation
	DisplayBlocking                    // only violations that fail the run
)

// ParseDisplayMode accepts "all" or "blocking"
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return DisplayAll, nil
	case "blocking":
		return DisplayBlocking, nil
	default:
		return DisplayAll, fmt.Errorf("unknown display mode %q (expected all or blocking)", s)
	}
}

func (d DisplayMode) String() string {
	if d == DisplayBlocking {
		return "blocking"
	}
	return "all"
}

// FileResult is the outcome of linting one template
type FileResult struct {
	File        string
	Violations  []Violation  // Ordered by line, column, then rule registration
	SyntaxError *SyntaxError // Set when the template could not be tokenized
}

// Reported returns the violations that count for the file: its rule
// violations, or a single Error violation when it has a syntax error.
func (f FileResult) Reported() []Violation {
	if f.SyntaxError != nil {
		return []Violation{syntaxViolation(f.File, f.SyntaxError)}
	}
	return f.Violations
}

// SeverityCounts tallies violations per severity
type SeverityCounts struct {
	Ignore  int `json:"ignore"`
	Info    int `json:"info"`
	Warning int `json:"warning"`
	Error   int `json:"error"`
}

// Add counts one violation of severity s
func (c *SeverityCounts) Add(s Severity) {
	switch s {
	case SeverityError:
		c.Error++
	case SeverityWarning:
		c.Warning++
	case SeverityInfo:
		c.Info++
	default:
		c.Ignore++
	}
}

// Total returns the number of counted violations
func (c SeverityCounts) Total() int {
	return c.Ignore + c.Info + c.Warning + c.Error
}

// LintResult aggregates per-file results for one run
type LintResult struct {
	Files        []FileResult   // In the caller's input order
	Counts       SeverityCounts // Over the full, unfiltered violation set
	Threshold    Severity       // Minimum severity that fails the run
	Display      DisplayMode
	HasBlocking  bool // At least one violation meets the threshold
	SyntaxErrors int  // Templates that failed to tokenize
}

// Aggregate builds a LintResult from per-file results. files is not copied.
func Aggregate(files []FileResult, threshold Severity, display DisplayMode) *LintResult {
	result := &LintResult{Files: files, Threshold: threshold, Display: display}
	for _, f := range files {
		if f.SyntaxError != nil {
			result.SyntaxErrors++
		}
		reported := f.Reported()
		for _, v := range reported {
			result.Counts.Add(v.Severity)
		}
		if HasBlocking(reported, threshold) {
			result.HasBlocking = true
		}
	}
	return result
}

// FilterBySeverity returns the violations that count towards the threshold.
// With an Ignore threshold nothing is filtered out.
func FilterBySeverity(violations []Violation, threshold Severity) []Violation {
	out := make([]Violation, 0, len(violations))
	for _, v := range violations {
		if threshold == SeverityIgnore || v.Blocking(threshold) {
			out = append(out, v)
		}
	}
	return out
}

// HasBlocking reports whether any violation fails a run at threshold
func HasBlocking(violations []Violation, threshold Severity) bool {
	for _, v := range violations {
		if v.Blocking(threshold) {
			return true
		}
	}
	return false
}

// Displayed projects the result through its display mode. Each returned
// file's Violations holds exactly what reporters render, syntax errors
// included. Files left without violations are kept.
func (r *LintResult) Displayed() []FileResult {
	out := make([]FileResult, len(r.Files))
	for i, f := range r.Files {
		violations := f.Reported()
		if r.Display == DisplayBlocking {
			violations = FilterBySeverity(violations, r.Threshold)
		}
		out[i] = FileResult{File: f.File, Violations: violations, SyntaxError: f.SyntaxError}
	}
	return out
}

// Violations returns every reported violation of the run in file order
func (r *LintResult) Violations() []Violation {
	var out []Violation
	for _, f := range r.Files {
		out = append(out, f.Reported()...)
	}
	return out
}

// ExitCode returns 1 when the run has blocking violations, 0 otherwise
func (r *LintResult) ExitCode() int {
	if r.HasBlocking {
		return 1
	}
	return 0
}
