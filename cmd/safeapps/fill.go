package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/supersafe-org/go-safe-apps/pkg/renderers/tui"
)

func fillCmd(c *cli) *cobra.Command {
	var (
		format   string
		set      []string
		proposer string
		multisig string
		treasury string
		owners   []string
	)
	cmd := &cobra.Command{
		Use:   "fill <app-id> <instruction>",
		Short: "Fill the fields of an app instruction interactively",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.provider()
			if err != nil {
				return err
			}
			cfg, err := p.ResolveAppConfig(cmd.Context(), args[0], "", "")
			if err != nil {
				return err
			}
			ix, ok := cfg.Find(args[1])
			if !ok {
				return fmt.Errorf("app %s has no instruction %q", args[0], args[1])
			}

			prefill, err := parseAssignments(set)
			if err != nil {
				return err
			}
			wallet := tui.Wallet{Proposer: proposer, Multisig: multisig, Treasury: treasury}
			for _, owner := range owners {
				wallet.Owners = append(wallet.Owners, tui.Choice{Label: owner, Value: owner})
			}

			r, err := tui.New(tui.WithOutputFormat(tui.OutputFormat(format)), tui.WithWallet(wallet))
			if err != nil {
				return err
			}
			out, err := r.Render(cmd.Context(), ix, prefill)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&format, "format", string(tui.OutputFormatJSON), "output format (json, pretty)")
	flags.StringArrayVar(&set, "set", nil, "prefill a field as name=value (repeatable)")
	flags.StringVar(&proposer, "proposer", "", "transaction proposer public key")
	flags.StringVar(&multisig, "multisig", "", "multisig account public key")
	flags.StringVar(&treasury, "treasury", "", "multisig treasury public key")
	flags.StringSliceVar(&owners, "owner", nil, "multisig owner public keys")
	return cmd
}

func parseAssignments(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected name=value", pair)
		}
		out[strings.TrimSpace(name)] = value
	}
	return out, nil
}
