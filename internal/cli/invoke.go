package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/solongwallet/lottery/internal/config"
	"github.com/solongwallet/lottery/internal/instruction"
	"github.com/solongwallet/lottery/internal/ledger"
	"github.com/solongwallet/lottery/internal/progerr"
)

// InvokeOptions holds flags for the instruction commands.
type InvokeOptions struct {
	*RootOptions
	Keypair string
	Fund    uint64
	Price   uint64
	Payee   string
}

// InvokeResult describes a committed instruction.
type InvokeResult struct {
	Instruction string `json:"instruction"`
	Seq         int64  `json:"seq"`
	ID          string `json:"id"`
	Clock       int64  `json:"clock"`
}

func (r InvokeResult) String() string {
	return fmt.Sprintf("%s committed (seq %d, clock %d, id %s)", r.Instruction, r.Seq, r.Clock, r.ID)
}

// builder turns the configured accounts and the signer into an instruction.
type builder func(cfg *config.Config, signer solana.PublicKey) (solana.Instruction, error)

func newInvokeCommand(opts *InvokeOptions, use, short, long string, build builder) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(opts, cmd, build)
		},
	}
	cmd.Flags().StringVarP(&opts.Keypair, "keypair", "k", "", "signer keypair file (required)")
	_ = cmd.MarkFlagRequired("keypair")
	return cmd
}

// NewInitializeCommand creates the initialize command.
func NewInitializeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}
	cmd := newInvokeCommand(opts, "initialize", "Reset the pool and billboard",
		`Reset the pool and billboard and set the draw configuration.

Only the administrator may initialize. The pool is linked to the configured
billboard and fee accounts.

Example:
  lottery initialize --keypair admin.json --fund 1000000000 --price 0`,
		func(cfg *config.Config, signer solana.PublicKey) (solana.Instruction, error) {
			if err := requireAccounts(cfg, "pool", "billboard", "fee"); err != nil {
				return nil, err
			}
			return instruction.NewInitializeInstruction(cfg.ProgramKey(), signer,
				cfg.PoolKey(), cfg.BillboardKey(), cfg.FeeKey(), opts.Fund, opts.Price), nil
		})
	cmd.Flags().Uint64Var(&opts.Fund, "fund", 0, "fixed award per draw, in lamports")
	cmd.Flags().Uint64Var(&opts.Price, "price", 0, "ticket price in lamports (0 for free sign-in)")
	return cmd
}

// NewSignInCommand creates the signin command.
func NewSignInCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}
	return newInvokeCommand(opts, "signin", "Enter the current round",
		`Enter the current round as the keypair's owner.

A new player joins with one ticket; a returning player gains one more. When
the pool charges a price, it is paid to the fee account.

Example:
  lottery signin --keypair player.json`,
		func(cfg *config.Config, signer solana.PublicKey) (solana.Instruction, error) {
			if err := requireAccounts(cfg, "pool"); err != nil {
				return nil, err
			}
			return instruction.NewSignInInstruction(cfg.ProgramKey(), signer, cfg.PoolKey(), cfg.FeeKey()), nil
		})
}

// NewGMCommand creates the gm (adjust fund) command.
func NewGMCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}
	cmd := newInvokeCommand(opts, "gm", "Adjust the fund and ticket price",
		`Overwrite the pool's fixed award and ticket price.

Players and the award accumulator are untouched.

Example:
  lottery gm --keypair admin.json --fund 2000000000 --price 10000`,
		func(cfg *config.Config, signer solana.PublicKey) (solana.Instruction, error) {
			if err := requireAccounts(cfg, "pool"); err != nil {
				return nil, err
			}
			return instruction.NewAdjustFundInstruction(cfg.ProgramKey(), signer, cfg.PoolKey(), opts.Fund, opts.Price), nil
		})
	cmd.Flags().Uint64Var(&opts.Fund, "fund", 0, "fixed award per draw, in lamports")
	cmd.Flags().Uint64Var(&opts.Price, "price", 0, "ticket price in lamports")
	return cmd
}

// NewRollCommand creates the roll command.
func NewRollCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}
	return newInvokeCommand(opts, "roll", "Draw a winner and start a new round",
		`Draw a winner weighted by ticket count and post it to the billboard.

Rolling a pool without tickets commits and changes nothing.

Example:
  lottery roll --keypair admin.json`,
		func(cfg *config.Config, signer solana.PublicKey) (solana.Instruction, error) {
			if err := requireAccounts(cfg, "pool", "billboard"); err != nil {
				return nil, err
			}
			return instruction.NewRollInstruction(cfg.ProgramKey(), signer, cfg.PoolKey(), cfg.BillboardKey()), nil
		})
}

// NewRewardCommand creates the reward command.
func NewRewardCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}
	cmd := newInvokeCommand(opts, "reward", "Pay unrewarded billboard entries",
		`Pay every unrewarded billboard entry from the administrator's balance.

With --payee, only that winner's entries are paid. Entries paid before a
failed transfer stay paid.

Example:
  lottery reward --keypair admin.json
  lottery reward --keypair admin.json --payee <pubkey>`,
		func(cfg *config.Config, signer solana.PublicKey) (solana.Instruction, error) {
			if err := requireAccounts(cfg, "billboard"); err != nil {
				return nil, err
			}
			var payee solana.PublicKey
			if opts.Payee != "" {
				key, err := parseKey("payee", opts.Payee)
				if err != nil {
					return nil, err
				}
				payee = key
			}
			return instruction.NewRewardInstruction(cfg.ProgramKey(), signer, cfg.BillboardKey(), payee), nil
		})
	cmd.Flags().StringVar(&opts.Payee, "payee", "", "pay only this winner's entries")
	return cmd
}

func runInvoke(opts *InvokeOptions, cmd *cobra.Command, build builder) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	signer, err := loadKeypair(opts.Keypair)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeKeypair, "failed to load keypair", err)
	}

	ix, err := build(s.cfg, signer.PublicKey())
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeInput, "invalid "+cmd.Name()+" request", err)
	}

	tx, err := ledger.SignInstruction(ix, signer)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeKeypair, "failed to sign "+cmd.Name(), err)
	}
	s.out.VerboseLog("submitting %s signed by %s", cmd.Name(), signer.PublicKey())

	receipt, err := s.ledger.Submit(cmd.Context(), tx)
	if err != nil {
		code, ok := progerr.CodeOf(err)
		if !ok || receipt == nil {
			return s.out.Fail(ExitCommandError, CodeLedger, "failed to submit "+cmd.Name(), err)
		}
		details := map[string]any{
			"kind":  code.String(),
			"seq":   receipt.Seq,
			"id":    receipt.ID,
			"clock": receipt.Clock,
		}
		if outErr := s.out.Error(ProgramErrorCode(code), err.Error(), details); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, cmd.Name()+" failed", err)
	}

	return s.out.Success(InvokeResult{
		Instruction: cmd.Name(),
		Seq:         receipt.Seq,
		ID:          receipt.ID,
		Clock:       receipt.Clock,
	})
}
