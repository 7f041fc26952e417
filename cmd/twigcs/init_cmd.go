package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yacobolo/twigcs"
	"github.com/yacobolo/twigcs/internal/config"
)

const configHeader = `# twigcs configuration
# rules: name -> ignore | info | warning | error | off
`

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default .twigcs.yaml config file",
		Long:  `Create a .twigcs.yaml configuration file in the current directory listing every rule with its default severity.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(config.FileName); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
			}

			data, err := renderDefaultConfig()
			if err != nil {
				return err
			}
			if err := os.WriteFile(config.FileName, data, 0o644); err != nil {
				return fmt.Errorf("writing config file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite existing config file")
	return cmd
}

// defaultConfig lists every standard rule at its default severity
func defaultConfig() config.Config {
	rules := make(map[string]string)
	for _, r := range twigcs.StandardRuleset().Rules() {
		rules[r.Name] = r.Severity.String()
	}
	return config.Config{
		Severity: "warning",
		Display:  "all",
		Paths:    []string{"templates"},
		Exclude:  []string{"vendor"},
		Rules:    rules,
	}
}

func renderDefaultConfig() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(configHeader)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(defaultConfig()); err != nil {
		return nil, fmt.Errorf("rendering config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("rendering config: %w", err)
	}
	return buf.Bytes(), nil
}
