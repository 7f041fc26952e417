package twigcs

import (
	"encoding/json"
	"io"
)

// JSONOutput represents the structured JSON export schema
type JSONOutput struct {
	Failures int        `json:"failures"`
	Files    []JSONFile `json:"files"`
}

// JSONFile lists the displayed violations of one template
type JSONFile struct {
	File       string          `json:"file"`
	Violations []JSONViolation `json:"violations"`
}

// JSONViolation represents a single violation
type JSONViolation struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity int    `json:"severity"` // 0 ignore, 1 info, 2 warning, 3 error
	Type     string `json:"type"`     // "warning"
	Message  string `json:"message"`
}

// WriteJSON writes the displayed violations as JSON.
// Templates without violations are omitted.
func WriteJSON(w io.Writer, result *LintResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(buildJSONOutput(result))
}

// buildJSONOutput converts LintResult to JSONOutput
func buildJSONOutput(result *LintResult) JSONOutput {
	output := JSONOutput{Files: []JSONFile{}}
	for _, file := range result.Displayed() {
		if len(file.Violations) == 0 {
			continue
		}
		jsonFile := JSONFile{File: file.File, Violations: make([]JSONViolation, len(file.Violations))}
		for i, v := range file.Violations {
			jsonFile.Violations[i] = JSONViolation{
				Line:     v.Line,
				Column:   v.Column,
				Severity: int(v.Severity),
				Type:     v.Severity.String(),
				Message:  v.Message,
			}
		}
		output.Failures += len(file.Violations)
		output.Files = append(output.Files, jsonFile)
	}
	return output
}
