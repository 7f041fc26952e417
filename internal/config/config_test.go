package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/twigcs/internal/rule"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
severity: Error
display: blocking
reporter: json
paths:
  - templates
exclude:
  - vendor
workers: 4
throw-syntax-error: true
rules:
  unused-variable: ERROR
  tab-indentation: off
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Severity)
	assert.Equal(t, "blocking", cfg.Display)
	assert.Equal(t, "json", cfg.Reporter)
	assert.Equal(t, []string{"templates"}, cfg.Paths)
	assert.Equal(t, []string{"vendor"}, cfg.Exclude)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.ThrowSyntaxError)
	assert.Equal(t, map[string]string{"unused-variable": "error", "tab-indentation": "off"}, cfg.Rules)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown severity", "severity: fatal\n", `Severity: "fatal" is not one of ignore, info, warning, error`},
		{"unknown reporter", "reporter: xml\n", "Reporter"},
		{"negative workers", "workers: -1\n", "Workers: must be at least 0"},
		{"bad rule value", "rules:\n  unused-variable: loud\n", "Rules[unused-variable]"},
		{"malformed yaml", "rules: [\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)

			_, err := Load(path)
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, path, cfgErr.Path)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestApplyRules(t *testing.T) {
	base := rule.Standard()

	rs, err := ApplyRules(base, map[string]string{
		"unused-variable":     "error",
		"trailing-whitespace": Off,
	})
	require.NoError(t, err)
	assert.Equal(t, rule.Error, rs.EffectiveSeverity("unused-variable"))
	_, _, ok := rs.Lookup("trailing-whitespace")
	assert.False(t, ok)
	assert.Equal(t, base.Len()-1, rs.Len())

	// base is untouched
	assert.Equal(t, rule.Warning, base.EffectiveSeverity("unused-variable"))

	_, err = ApplyRules(base, map[string]string{"no-such-rule": "error"})
	require.ErrorIs(t, err, rule.ErrUnknownRule)

	same, err := ApplyRules(base, nil)
	require.NoError(t, err)
	assert.Same(t, base, same)
}

func TestCascade(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "rules:\n  quote-style: off\n")
	writeFile(t, filepath.Join(root, "a", FileName), "rules:\n  trailing-whitespace: off\n  unused-variable: info\n")
	writeFile(t, filepath.Join(root, "a", "b", FileName), "rules:\n  trailing-whitespace: warning\n")
	writeFile(t, filepath.Join(root, "c", FileName), "rules:\n  tab-indentation: off\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "c", "d", ".git"), 0o755))

	cascade, err := NewCascade(rule.Standard(), root, map[string]string{"unused-variable": "error"})
	require.NoError(t, err)

	t.Run("root directory uses project rules", func(t *testing.T) {
		rs, err := cascade.RulesetFor(filepath.Join(root, "page.twig"))
		require.NoError(t, err)
		assert.Equal(t, rule.Error, rs.EffectiveSeverity("unused-variable"))
		// the root file is the project configuration, handled by the caller
		_, _, ok := rs.Lookup("quote-style")
		assert.True(t, ok)
	})

	t.Run("nested file overrides project rules", func(t *testing.T) {
		rs, err := cascade.RulesetFor(filepath.Join(root, "a", "page.twig"))
		require.NoError(t, err)
		assert.Equal(t, rule.Info, rs.EffectiveSeverity("unused-variable"))
		_, _, ok := rs.Lookup("trailing-whitespace")
		assert.False(t, ok)
	})

	t.Run("closer file wins", func(t *testing.T) {
		rs, err := cascade.RulesetFor(filepath.Join(root, "a", "b", "page.twig"))
		require.NoError(t, err)
		assert.Equal(t, rule.Warning, rs.EffectiveSeverity("trailing-whitespace"))
		assert.Equal(t, rule.Info, rs.EffectiveSeverity("unused-variable"))
	})

	t.Run("stops at git directory", func(t *testing.T) {
		rs, err := cascade.RulesetFor(filepath.Join(root, "c", "d", "e", "page.twig"))
		require.NoError(t, err)
		_, _, ok := rs.Lookup("tab-indentation")
		assert.True(t, ok)
	})

	t.Run("memoized per directory", func(t *testing.T) {
		first, err := cascade.RulesetFor(filepath.Join(root, "a", "one.twig"))
		require.NoError(t, err)
		second, err := cascade.RulesetFor(filepath.Join(root, "a", "two.twig"))
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("outside root", func(t *testing.T) {
		rs, err := cascade.RulesetFor(filepath.Join(t.TempDir(), "page.twig"))
		require.NoError(t, err)
		assert.Equal(t, rule.Error, rs.EffectiveSeverity("unused-variable"))
	})
}

func TestCascadeUnknownRule(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", FileName)
	writeFile(t, nested, "rules:\n  no-such-rule: error\n")

	cascade, err := NewCascade(rule.Standard(), root, nil)
	require.NoError(t, err)

	_, err = cascade.RulesetFor(filepath.Join(root, "a", "page.twig"))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, nested, cfgErr.Path)
	assert.ErrorIs(t, err, rule.ErrUnknownRule)

	_, err = NewCascade(rule.Standard(), root, map[string]string{"bogus": "error"})
	require.ErrorIs(t, err, rule.ErrUnknownRule)
}
