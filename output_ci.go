package twigcs

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// WriteEmacs writes one "file:line:column: severity - message" line per violation
func WriteEmacs(w io.Writer, result *LintResult) error {
	for _, file := range result.Displayed() {
		for _, v := range file.Violations {
			if _, err := fmt.Fprintf(w, "%s:%d:%d: %s - %s\n", v.File, v.Line, v.Column, v.Severity, v.Message); err != nil {
				return err
			}
		}
	}
	return nil
}

// githubLevel maps a severity to a workflow command
func githubLevel(s Severity) string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "notice"
	}
}

// githubEscaper escapes workflow command data
var githubEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

// githubPropertyEscaper escapes workflow command properties
var githubPropertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")

// WriteGitHub writes GitHub Actions annotations
func WriteGitHub(w io.Writer, result *LintResult) error {
	for _, file := range result.Displayed() {
		for _, v := range file.Violations {
			_, err := fmt.Fprintf(w, "::%s file=%s,line=%d,col=%d,title=%s::%s\n",
				githubLevel(v.Severity),
				githubPropertyEscaper.Replace(v.File),
				v.Line,
				v.Column,
				githubPropertyEscaper.Replace(v.RuleName),
				githubEscaper.Replace(v.Message))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

type checkstyleReport struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Version string           `xml:"version,attr"`
	Files   []checkstyleFile `xml:"file"`
}

type checkstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []checkstyleError `xml:"error"`
}

type checkstyleError struct {
	Line     int    `xml:"line,attr"`
	Column   int    `xml:"column,attr"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

// WriteCheckstyle writes a Checkstyle XML report
func WriteCheckstyle(w io.Writer, result *LintResult) error {
	report := checkstyleReport{Version: "4.3"}
	for _, file := range result.Displayed() {
		if len(file.Violations) == 0 {
			continue
		}
		cf := checkstyleFile{Name: file.File}
		for _, v := range file.Violations {
			cf.Errors = append(cf.Errors, checkstyleError{
				Line:     v.Line,
				Column:   v.Column,
				Severity: v.Severity.String(),
				Message:  v.Message,
				Source:   "twigcs." + v.RuleName,
			})
		}
		report.Files = append(report.Files, cf)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
