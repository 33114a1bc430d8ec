package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/solongwallet/lottery/internal/state"
)

// AirdropResult describes a credited account.
type AirdropResult struct {
	Account    string `json:"account"`
	Lamports   uint64 `json:"lamports"`
	Balance    uint64 `json:"balance"`
	BalanceSOL string `json:"balance_sol"`
}

func (r AirdropResult) String() string {
	return fmt.Sprintf("Airdropped %d lamports to %s\nbalance: %d lamports (%s SOL)",
		r.Lamports, r.Account, r.Balance, r.BalanceSOL)
}

// NewAirdropCommand creates the airdrop command.
func NewAirdropCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop <pubkey> <lamports>",
		Short: "Credit lamports to an account",
		Long: `Credit lamports to an account on the local ledger, creating it if needed.

Example:
  lottery airdrop 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin 1000000000`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAirdrop(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runAirdrop(opts *RootOptions, cmd *cobra.Command, account, amount string) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	key, err := parseKey("account", account)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeInput, "invalid airdrop request", err)
	}
	lamports, err := strconv.ParseUint(amount, 10, 64)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeInput, "invalid airdrop request", fmt.Errorf("lamports: %w", err))
	}

	balance, err := s.ledger.Airdrop(cmd.Context(), key, lamports)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "airdrop failed", err)
	}

	return s.out.Success(AirdropResult{
		Account:    key.String(),
		Lamports:   lamports,
		Balance:    balance,
		BalanceSOL: formatSOL(balance),
	})
}

// CreatePoolOptions holds flags for the create-pool command.
type CreatePoolOptions struct {
	*RootOptions
	Lamports uint64
}

// CreatePoolResult describes the allocated state accounts.
type CreatePoolResult struct {
	Pool          string `json:"pool"`
	PoolSize      int    `json:"pool_size"`
	Billboard     string `json:"billboard"`
	BillboardSize int    `json:"billboard_size"`
}

func (r CreatePoolResult) String() string {
	return fmt.Sprintf("Created pool %s (%d bytes)\nCreated billboard %s (%d bytes)",
		r.Pool, r.PoolSize, r.Billboard, r.BillboardSize)
}

// NewCreatePoolCommand creates the create-pool command.
func NewCreatePoolCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreatePoolOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create-pool",
		Short: "Allocate the pool and billboard accounts",
		Long: `Allocate zeroed pool and billboard accounts owned by the program.

The accounts come from the config file or the --pool and --billboard flags.
Run initialize afterwards to configure the draw.

Example:
  lottery create-pool --pool <pubkey> --billboard <pubkey>`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreatePool(opts, cmd)
		},
	}

	cmd.Flags().Uint64Var(&opts.Lamports, "lamports", 0, "lamports to fund each account with")

	return cmd
}

func runCreatePool(opts *CreatePoolOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := requireAccounts(s.cfg, "pool", "billboard"); err != nil {
		return s.out.Fail(ExitCommandError, CodeInput, "invalid create-pool request", err)
	}

	ctx := cmd.Context()
	program := s.cfg.ProgramKey()
	if err := s.ledger.CreateAccount(ctx, s.cfg.PoolKey(), program, state.PoolStateLen, opts.Lamports); err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "failed to create pool", err)
	}
	if err := s.ledger.CreateAccount(ctx, s.cfg.BillboardKey(), program, state.AwardLedgerLen, opts.Lamports); err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "failed to create billboard", err)
	}

	return s.out.Success(CreatePoolResult{
		Pool:          s.cfg.PoolKey().String(),
		PoolSize:      state.PoolStateLen,
		Billboard:     s.cfg.BillboardKey().String(),
		BillboardSize: state.AwardLedgerLen,
	})
}
