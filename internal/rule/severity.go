package rule

import (
	"fmt"
	"strings"
)

// Severity ranks how serious a violation is
type Severity int

const (
	Ignore Severity = iota
	Info
	Warning
	Error
)

var severityNames = [...]string{
	Ignore:  "ignore",
	Info:    "info",
	Warning: "warning",
	Error:   "error",
}

// Valid reports whether s is a defined severity
func (s Severity) Valid() bool {
	return s >= Ignore && s <= Error
}

func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity converts a case-insensitive severity name
func ParseSeverity(name string) (Severity, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for s, n := range severityNames {
		if n == needle {
			return Severity(s), nil
		}
	}
	return Ignore, fmt.Errorf("unknown severity %q (expected ignore, info, warning or error)", name)
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
