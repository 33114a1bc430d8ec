package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solongwallet/lottery/internal/ledger"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Target string
}

// ReplayResult holds the replay outcome.
type ReplayResult struct {
	Source       string   `json:"source"`
	Target       string   `json:"target"`
	Transactions int      `json:"transactions"`
	Diverged     []int64  `json:"diverged"`
	Mismatched   []string `json:"mismatched"`
	Reproduced   bool     `json:"reproduced"`
}

func (r ReplayResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Replayed %d transactions from %s into %s\n", r.Transactions, r.Source, r.Target)
	for _, seq := range r.Diverged {
		fmt.Fprintf(&b, "  ✗ seq %d produced a different outcome\n", seq)
	}
	for _, key := range r.Mismatched {
		fmt.Fprintf(&b, "  ✗ account %s differs\n", key)
	}
	if r.Reproduced {
		b.WriteString("✓ Final state reproduced")
	} else {
		b.WriteString("✗ Replay diverged")
	}
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the transaction log and verify determinism",
		Long: `Re-execute every logged transaction against a fresh ledger, using the
logged clock values, and compare the final accounts with the source.

Exit codes:
  0 - Final state reproduced
  1 - An outcome or account differs
  2 - Command error (database not found, non-empty target, etc.)

Examples:
  lottery replay --db ./lottery.db
  lottery replay --db ./lottery.db --target ./copy.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Target, "target", ":memory:", "empty database to replay into")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	dst, err := ledger.Open(opts.Target, s.cfg.ProgramKey(), s.cfg.AdminKey(), ledger.WithLogger(s.logger))
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "failed to open replay target", err)
	}
	defer dst.Close()

	report, err := ledger.Replay(cmd.Context(), s.ledger, dst)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "replay failed", err)
	}

	result := ReplayResult{
		Source:       s.cfg.Database,
		Target:       opts.Target,
		Transactions: report.Transactions,
		Diverged:     append([]int64{}, report.Diverged...),
		Mismatched:   make([]string, len(report.Mismatched)),
		Reproduced:   report.OK(),
	}
	for i, key := range report.Mismatched {
		result.Mismatched[i] = key.String()
	}

	if err := s.out.Success(result); err != nil {
		return err
	}
	if !result.Reproduced {
		return NewExitError(ExitFailure, "replay diverged from the transaction log")
	}
	return nil
}
