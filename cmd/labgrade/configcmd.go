package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hanaasagi/labgrade/internal/config"
)

func newConfigCommand(app *AppConfig) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the grading configuration",
		Args:  cobra.NoArgs,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file in use",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				doc, err := config.Load(app.configPath)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.OutOrStdout(), doc.Source)
				if doc.Source == config.EmbeddedSource {
					fmt.Fprintf(c.OutOrStdout(), "create %s to customize\n", config.DefaultPath())
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Print the effective config document as TOML",
			Args:  cobra.NoArgs,
			RunE: func(c *cobra.Command, args []string) error {
				doc, err := config.Load(app.configPath)
				if err != nil {
					return err
				}
				if _, err := doc.Config(); err != nil {
					return err
				}
				return doc.Encode(c.OutOrStdout())
			},
		},
	)

	return configCmd
}
