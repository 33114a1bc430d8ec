package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config is an optional YAML or TOML config file. Flags below override
	// the values it sets.
	Config    string
	Database  string
	Pool      string
	Billboard string
	Fee       string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the lottery CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lottery",
		Short: "Ticket lottery program host",
		Long: `Host and drive a ticket lottery program on a local ledger.

Players sign in for tickets, the administrator rolls a weighted draw and
pays out every winner recorded on the billboard.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.Config, "config", "", "config file (.yaml, .yml or .toml)")
	flags.StringVar(&opts.Database, "db", "", "ledger database path (overrides config)")
	flags.StringVar(&opts.Pool, "pool", "", "pool account (overrides config)")
	flags.StringVar(&opts.Billboard, "billboard", "", "billboard account (overrides config)")
	flags.StringVar(&opts.Fee, "fee", "", "fee account (overrides config)")

	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewAirdropCommand(opts))
	cmd.AddCommand(NewCreatePoolCommand(opts))
	cmd.AddCommand(NewInitializeCommand(opts))
	cmd.AddCommand(NewSignInCommand(opts))
	cmd.AddCommand(NewGMCommand(opts))
	cmd.AddCommand(NewRollCommand(opts))
	cmd.AddCommand(NewRewardCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewScheduleCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
