package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/twigcs"
	"github.com/yacobolo/twigcs/internal/config"
)

// inProject switches into a fresh directory holding the given files
func inProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
	t.Setenv("GITHUB_ACTIONS", "")
	t.Setenv("NO_COLOR", "1")
	return dir
}

func execute(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestLintClean(t *testing.T) {
	inProject(t, map[string]string{"templates/page.html.twig": "{{ foo }}\n"})

	out, err := execute("templates")
	require.NoError(t, err)
	assert.Equal(t, "No violation found.\n", out)
}

func TestLintViolations(t *testing.T) {
	inProject(t, map[string]string{"templates/page.html.twig": "{{foo}}\n"})

	out, err := execute("lint", "templates")
	require.ErrorIs(t, err, errBlocking)
	assert.Contains(t, out, filepath.Join("templates", "page.html.twig")+"\n")
	assert.Contains(t, out, "l.1 c.3 : ERROR")
	assert.Contains(t, out, "2 violation(s) found")
	assert.Equal(t, 1, exitCode(err))
}

func TestLintSeverityThreshold(t *testing.T) {
	files := map[string]string{"page.twig": "{% set foo = 1 %}\n"}

	t.Run("warning blocks by default", func(t *testing.T) {
		inProject(t, files)
		out, err := execute("lint")
		require.ErrorIs(t, err, errBlocking)
		assert.Contains(t, out, `l.1 c.8 : WARNING Unused variable "foo".`)
	})

	t.Run("error threshold passes warnings", func(t *testing.T) {
		inProject(t, files)
		out, err := execute("lint", "--severity", "error")
		require.NoError(t, err)
		assert.Contains(t, out, "WARNING")
	})

	t.Run("blocking display hides warnings", func(t *testing.T) {
		inProject(t, files)
		out, err := execute("lint", "--severity", "error", "--display", "blocking")
		require.NoError(t, err)
		assert.Equal(t, "No violation found.\n", out)
	})

	t.Run("rule disabled", func(t *testing.T) {
		inProject(t, files)
		out, err := execute("lint", "--rule", "unused-variable=off")
		require.NoError(t, err)
		assert.Equal(t, "No violation found.\n", out)
	})
}

func TestLintJSONReporter(t *testing.T) {
	inProject(t, map[string]string{"a.twig": "{% set foo = 1 %}\n", "b.twig": "{{ ok }}\n"})

	out, err := execute("lint", "--reporter", "json", ".")
	require.ErrorIs(t, err, errBlocking)

	var report twigcs.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 1, report.Failures)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "a.twig", report.Files[0].File)
	assert.Equal(t, "warning", report.Files[0].Violations[0].Type)
}

func TestLintConfigFile(t *testing.T) {
	inProject(t, map[string]string{
		config.FileName:       "severity: error\nrules:\n  unused-variable: error\n",
		"page.twig":           "{% set foo = 1 %}\n",
		"legacy/.twigcs.yaml": "rules:\n  unused-variable: off\n",
		"legacy/old.twig":     "{% set bar = 1 %}\n",
	})

	out, err := execute("lint")
	require.ErrorIs(t, err, errBlocking)
	assert.Contains(t, out, `ERROR Unused variable "foo".`)
	assert.NotContains(t, out, "bar")
}

func TestLintExclude(t *testing.T) {
	inProject(t, map[string]string{
		"page.twig":       "{{ ok }}\n",
		"vendor/lib.twig": "{{bad}}\n",
	})

	out, err := execute("lint", "--exclude", "vendor")
	require.NoError(t, err)
	assert.Equal(t, "No violation found.\n", out)
}

func TestLintSyntaxError(t *testing.T) {
	files := map[string]string{"broken.twig": "{{ foo\n"}

	t.Run("reported as violation", func(t *testing.T) {
		inProject(t, files)
		out, err := execute("lint", "--reporter", "emacs")
		require.ErrorIs(t, err, errBlocking)
		assert.Equal(t, "broken.twig:2:1: error - Unclosed \"variable\".\n", out)
	})

	t.Run("thrown", func(t *testing.T) {
		inProject(t, files)
		_, err := execute("lint", "--throw-syntax-error")
		require.Error(t, err)
		assert.NotErrorIs(t, err, errBlocking)

		var fileErr *twigcs.FileError
		require.ErrorAs(t, err, &fileErr)
		assert.Equal(t, "broken.twig", fileErr.File)
	})
}

func TestLintUnknownRule(t *testing.T) {
	inProject(t, map[string]string{"page.twig": "{{ ok }}\n"})

	_, err := execute("lint", "--rule", "no-such-rule=error")
	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestLintQuietAndMetrics(t *testing.T) {
	dir := inProject(t, map[string]string{"page.twig": "{{foo}}\n"})
	metricsPath := filepath.Join(dir, "twigcs.prom")

	out, err := execute("lint", "--quiet", "--metrics-file", metricsPath)
	require.ErrorIs(t, err, errBlocking)
	assert.Empty(t, out)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `twigcs_violations_total{rule="delimiter-spacing",severity="error"} 1`)
	assert.Contains(t, string(data), "twigcs_last_run_blocking 1")
}

func TestLintMissingPath(t *testing.T) {
	inProject(t, nil)
	_, err := execute("lint", "does-not-exist")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errBlocking)
}

func TestRulesCommand(t *testing.T) {
	inProject(t, map[string]string{config.FileName: "rules:\n  tab-indentation: off\n  unused-variable: error\n"})

	out, err := execute("rules")
	require.NoError(t, err)
	for _, name := range twigcs.StandardRuleset().Names() {
		assert.Contains(t, out, name)
	}
	assert.Regexp(t, `tab-indentation\s*│\s*off`, out)
	assert.Regexp(t, `unused-variable\s*│\s*error`, out)
}

func TestInitCommand_CreatesConfigFile(t *testing.T) {
	inProject(t, nil)

	out, err := execute("init")
	require.NoError(t, err)
	assert.Equal(t, "Created .twigcs.yaml\n", out)

	cfg, err := config.Load(config.FileName)
	require.NoError(t, err)
	assert.Equal(t, "warning", cfg.Severity)
	assert.Len(t, cfg.Rules, twigcs.StandardRuleset().Len())
	assert.Equal(t, "warning", cfg.Rules["unused-variable"])
}

func TestInitCommand_RefusesOverwrite(t *testing.T) {
	inProject(t, map[string]string{config.FileName: "existing"})

	_, err := execute("init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCommand_ForceOverwrite(t *testing.T) {
	inProject(t, map[string]string{config.FileName: "existing"})

	_, err := execute("init", "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(config.FileName)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rules:")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute("version")
	require.NoError(t, err)
	assert.Equal(t, "twigcs dev\n", out)
}

func TestWatchHelpers(t *testing.T) {
	dir := inProject(t, map[string]string{
		"templates/a/page.twig": "",
		"templates/.cache/x":    "",
		"other.twig":            "",
	})

	dirs, err := watchDirs([]string{"templates", "other.twig"})
	require.NoError(t, err)
	assert.Equal(t, []string{"templates", filepath.Join("templates", "a"), "."}, dirs)

	assert.True(t, relevant(filepath.Join(dir, "page.html.twig")))
	assert.True(t, relevant(filepath.Join(dir, config.FileName)))
	assert.False(t, relevant(filepath.Join(dir, "notes.md")))
}

func TestLintVerboseStatistics(t *testing.T) {
	inProject(t, map[string]string{"page.twig": "{{foo}}\n"})

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"lint", "--verbose"})
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	require.ErrorIs(t, cmd.Execute(), errBlocking)

	assert.Contains(t, errOut.String(), `msg="discovered templates"`)
	assert.Contains(t, errOut.String(), "Lint Statistics")
	assert.Contains(t, errOut.String(), "1. delimiter-spacing - 1 violation(s)")
}
