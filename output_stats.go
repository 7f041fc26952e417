package twigcs

import (
	"fmt"
	"io"
	"sort"
)

// RuleCount tallies reported violations of one rule
type RuleCount struct {
	Rule  string
	Count int
}

// RuleCounts returns per-rule violation counts, most frequent first
func RuleCounts(result *LintResult) []RuleCount {
	counts := make(map[string]int)
	for _, v := range result.Violations() {
		counts[v.RuleName]++
	}

	out := make([]RuleCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, RuleCount{Rule: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}

// StatsReporter prints run statistics, used in verbose mode
type StatsReporter struct {
	w         io.Writer
	useColors bool
}

// NewStatsReporter creates a statistics reporter
func NewStatsReporter(w io.Writer, config ReportConfig) *StatsReporter {
	return &StatsReporter{
		w:         w,
		useColors: shouldUseColors(config, w),
	}
}

// Write outputs discovery and severity statistics, then the most
// frequently violated rules
func (r *StatsReporter) Write(result *LintResult, scan ScanStats) {
	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleCyan, "Lint Statistics", r.useColors))
	fmt.Fprintln(r.w, "---------------")

	fmt.Fprintf(r.w, "Templates Found:    %d\n", scan.FilesDiscovered)
	fmt.Fprintf(r.w, "Templates Checked:  %d\n", scan.FilesScanned)
	fmt.Fprintf(r.w, "Templates Skipped:  %d\n", scan.FilesSkipped)
	fmt.Fprintf(r.w, "Syntax Errors:      %d\n", result.SyntaxErrors)
	fmt.Fprintf(r.w, "Errors:             %d\n", result.Counts.Error)
	fmt.Fprintf(r.w, "Warnings:           %d\n", result.Counts.Warning)
	fmt.Fprintf(r.w, "Info:               %d\n", result.Counts.Info)
	fmt.Fprintf(r.w, "Ignored:            %d\n", result.Counts.Ignore)

	rules := RuleCounts(result)
	if len(rules) == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	fmt.Fprintln(r.w, RenderStyle(StyleYellow, "Top Rules", r.useColors))
	fmt.Fprintln(r.w, "---------")
	for i, rc := range rules {
		if i >= 10 {
			break
		}
		fmt.Fprintf(r.w, "%d. %s - %d violation(s)\n", i+1, rc.Rule, rc.Count)
	}
}
