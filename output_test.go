package twigcs

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleResult mirrors a two-template run: one warning + one error, one syntax error
func sampleResult(threshold Severity, display DisplayMode) *LintResult {
	files := []FileResult{
		{
			File: "templates/a.html.twig",
			Violations: []Violation{
				{File: "templates/a.html.twig", Line: 1, Column: 8, Severity: SeverityWarning, RuleName: "unused-variable",
					Message: `Unused variable "foo".`, SourceLine: "{% set foo = 1 %}"},
				{File: "templates/a.html.twig", Line: 2, Column: 3, Severity: SeverityError, RuleName: "delimiter-spacing",
					Message: "There should be 1 space between the delimiter and its content.", SourceLine: "\t{{x }}"},
			},
		},
		{File: "templates/clean.html.twig"},
		{File: "templates/broken.html.twig", SyntaxError: &SyntaxError{Line: 1, Column: 17, Message: `Unexpected "}".`}},
	}
	return Aggregate(files, threshold, display)
}

func TestBuildCaretIndicator(t *testing.T) {
	tests := []struct {
		name       string
		sourceLine string
		column     int
		want       string
	}{
		{"spaces only", "  {{foo}}", 5, "    ^"},
		{"tabs and spaces", "\t\t{{x}}", 5, "\t\t  ^"},
		{"start of line", "{{x}}", 1, "^"},
		{"column 0 fallback", "some line", 0, "^"},
		{"column beyond line length", "short", 100, "     ^"},
		{"multibyte prefix", "éé{{x}}", 5, "    ^"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, buildCaretIndicator(tt.sourceLine, tt.column))
		})
	}
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(&buf, ReportConfig{}).Write(sampleResult(SeverityError, DisplayAll)))

	want := strings.Join([]string{
		"templates/a.html.twig",
		`l.1 c.8 : WARNING Unused variable "foo".`,
		"l.2 c.3 : ERROR There should be 1 space between the delimiter and its content.",
		"templates/broken.html.twig",
		`l.1 c.17 : ERROR Unexpected "}".`,
		"3 violation(s) found",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTextReporterBlockingOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(&buf, ReportConfig{}).Write(sampleResult(SeverityError, DisplayBlocking)))

	out := buf.String()
	assert.NotContains(t, out, "WARNING")
	assert.Contains(t, out, "l.2 c.3 : ERROR There should be 1 space between the delimiter and its content.")
	assert.Contains(t, out, "2 violation(s) found")
}

func TestTextReporterPrintLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextReporter(&buf, ReportConfig{PrintLines: true}).Write(sampleResult(SeverityError, DisplayAll)))

	assert.Contains(t, buf.String(), "\t\t{{x }}\n\t\t ^\n")
}

func TestTextReporterClean(t *testing.T) {
	var buf bytes.Buffer
	result := Aggregate([]FileResult{{File: "a.twig"}}, SeverityWarning, DisplayAll)
	require.NoError(t, NewTextReporter(&buf, ReportConfig{}).Write(result))
	assert.Equal(t, "No violation found.\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult(SeverityError, DisplayBlocking)))

	want := `{
    "failures": 2,
    "files": [
        {
            "file": "templates/a.html.twig",
            "violations": [
                {
                    "line": 2,
                    "column": 3,
                    "severity": 3,
                    "type": "error",
                    "message": "There should be 1 space between the delimiter and its content."
                }
            ]
        },
        {
            "file": "templates/broken.html.twig",
            "violations": [
                {
                    "line": 1,
                    "column": 17,
                    "severity": 3,
                    "type": "error",
                    "message": "Unexpected \"}\"."
                }
            ]
        }
    ]
}
`
	assert.Equal(t, want, buf.String())
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, Aggregate(nil, SeverityError, DisplayAll)))
	assert.Equal(t, "{\n    \"failures\": 0,\n    \"files\": []\n}\n", buf.String())
}

func TestWriteEmacs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEmacs(&buf, sampleResult(SeverityError, DisplayAll)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `templates/a.html.twig:1:8: warning - Unused variable "foo".`, lines[0])
	assert.Equal(t, `templates/broken.html.twig:1:17: error - Unexpected "}".`, lines[2])
}

func TestWriteGitHub(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGitHub(&buf, sampleResult(SeverityError, DisplayAll)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `::warning file=templates/a.html.twig,line=1,col=8,title=unused-variable::Unused variable "foo".`, lines[0])
	assert.Equal(t, `::error file=templates/broken.html.twig,line=1,col=17,title=syntax-error::Unexpected "}".`, lines[2])
}

func TestWriteCheckstyle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCheckstyle(&buf, sampleResult(SeverityError, DisplayAll)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<file name="templates/a.html.twig">`)
	assert.Contains(t, out, `<error line="1" column="8" severity="warning" message="Unused variable &#34;foo&#34;." source="twigcs.unused-variable"></error>`)
	assert.NotContains(t, out, "clean.html.twig")
}

func TestParseOutputFormat(t *testing.T) {
	for _, f := range OutputFormats {
		got, err := ParseOutputFormat(strings.ToUpper(string(f)))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := ParseOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputText, got)

	_, err = ParseOutputFormat("yaml")
	require.Error(t, err)
}

func TestDetermineOutputFormat(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	got, err := DetermineOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputGitHub, got)

	got, err = DetermineOutputFormat("json")
	require.NoError(t, err)
	assert.Equal(t, OutputJSON, got)

	t.Setenv("GITHUB_ACTIONS", "")
	got, err = DetermineOutputFormat("")
	require.NoError(t, err)
	assert.Equal(t, OutputText, got)
}

func TestWriteOutputUnknownFormat(t *testing.T) {
	err := WriteOutput(&bytes.Buffer{}, sampleResult(SeverityError, DisplayAll), OutputFormat("yaml"), ReportConfig{})
	require.Error(t, err)
}

func TestRuleCounts(t *testing.T) {
	got := RuleCounts(sampleResult(SeverityError, DisplayBlocking))
	assert.Equal(t, []RuleCount{
		{Rule: "delimiter-spacing", Count: 1},
		{Rule: SyntaxErrorRule, Count: 1},
		{Rule: "unused-variable", Count: 1},
	}, got)
}

func TestStatsReporter(t *testing.T) {
	var buf bytes.Buffer
	NewStatsReporter(&buf, ReportConfig{}).Write(
		sampleResult(SeverityError, DisplayAll),
		ScanStats{FilesDiscovered: 4, FilesScanned: 3, FilesSkipped: 1},
	)

	out := buf.String()
	assert.Contains(t, out, "Templates Checked:  3\n")
	assert.Contains(t, out, "Templates Skipped:  1\n")
	assert.Contains(t, out, "Syntax Errors:      1\n")
	assert.Contains(t, out, "Errors:             2\n")
	assert.Contains(t, out, "Warnings:           1\n")
	assert.Contains(t, out, "1. delimiter-spacing - 1 violation(s)\n")
}

// failingWriter accepts a fixed number of writes, then fails
type failingWriter struct {
	writes int
}

var errWriteFailed = errors.New("disk full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes == 0 {
		return 0, errWriteFailed
	}
	w.writes--
	return len(p), nil
}

func TestTextReporterWriteErrors(t *testing.T) {
	tests := []struct {
		name   string
		writes int
		config ReportConfig
	}{
		{"file header", 0, ReportConfig{}},
		{"violation line", 1, ReportConfig{}},
		{"source line", 2, ReportConfig{PrintLines: true}},
		{"summary", 5, ReportConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &failingWriter{writes: tt.writes}
			err := NewTextReporter(w, tt.config).Write(sampleResult(SeverityError, DisplayAll))
			require.ErrorIs(t, err, errWriteFailed)
		})
	}
}
