package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/supersafe-org/go-safe-apps/pkg/renderers/text"
)

func appsCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List the apps available on the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			apps := p.Apps()
			if asJSON {
				return writeJSON(cmd, apps)
			}
			return text.New().RenderApps(cmd.OutOrStdout(), apps)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a summary")
	return cmd
}

func configCmd(c *cli) *cobra.Command {
	var (
		asJSON bool
		uiURL  string
		defURL string
	)
	cmd := &cobra.Command{
		Use:   "config <app-id>",
		Short: "Fetch and merge the UI schema and program definition of an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			cfg, err := p.ResolveAppConfig(cmd.Context(), args[0], uiURL, defURL)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, cfg)
			}
			return text.New().RenderAppConfig(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a summary")
	cmd.Flags().StringVar(&uiURL, "ui", "", "UI schema URL or file overriding the registry")
	cmd.Flags().StringVar(&defURL, "definition", "", "program definition URL or file overriding the registry")
	return cmd
}

func logoCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "logo <app-id>",
		Short: "Download an app logo with unsafe SVG markup removed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			logo, err := p.Logo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(append(logo, '\n'))
				return err
			}
			if err := os.WriteFile(output, logo, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logo written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
