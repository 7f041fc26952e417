package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/yacobolo/twigcs"
	"github.com/yacobolo/twigcs/internal/config"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the rules of the standard ruleset",
		Long: `List every rule with the severity it has after applying the rules map of
the config file. Disabled rules are shown as "off".`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Decode(k, configPath)
			if err != nil {
				return err
			}
			standard := twigcs.StandardRuleset()
			effective, err := config.ApplyRules(standard, cfg.Rules)
			if err != nil {
				return &config.ConfigurationError{Path: configPath, Err: err}
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("RULE", "SEVERITY", "DESCRIPTION")
			for _, r := range standard.Rules() {
				severity := config.Off
				if _, _, ok := effective.Lookup(r.Name); ok {
					severity = effective.EffectiveSeverity(r.Name).String()
				}
				t.Row(r.Name, severity, r.Description)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}
}
