package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/solongwallet/lottery/internal/state"
)

// PoolReport is the readable form of a pool account.
type PoolReport struct {
	Pool           string         `json:"pool"`
	Price          uint64         `json:"price"`
	PriceSOL       string         `json:"price_sol"`
	Fund           uint64         `json:"fund"`
	FundSOL        string         `json:"fund_sol"`
	Accumulator    uint64         `json:"accumulator"`
	AccumulatorSOL string         `json:"accumulator_sol"`
	FeeAccount     string         `json:"fee_account"`
	Billboard      string         `json:"billboard"`
	Players        []PlayerReport `json:"players"`
}

// PlayerReport is one pool entrant.
type PlayerReport struct {
	Account  string `json:"account"`
	Tickets  uint16 `json:"tickets"`
	SignedIn bool   `json:"signed_in"`
}

func (r PoolReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pool %s\n", r.Pool)
	fmt.Fprintf(&b, "  price:       %d lamports (%s SOL)\n", r.Price, r.PriceSOL)
	fmt.Fprintf(&b, "  fund:        %d lamports (%s SOL)\n", r.Fund, r.FundSOL)
	fmt.Fprintf(&b, "  accumulator: %d lamports (%s SOL)\n", r.Accumulator, r.AccumulatorSOL)
	fmt.Fprintf(&b, "  fee account: %s\n", r.FeeAccount)
	fmt.Fprintf(&b, "  billboard:   %s\n", r.Billboard)
	fmt.Fprintf(&b, "  players:     %d", len(r.Players))
	for _, p := range r.Players {
		mark := " "
		if p.SignedIn {
			mark = "*"
		}
		fmt.Fprintf(&b, "\n    %s %s tickets=%d", mark, p.Account, p.Tickets)
	}
	return b.String()
}

// BillboardReport is the readable form of a billboard account.
type BillboardReport struct {
	Billboard string        `json:"billboard"`
	Pending   int           `json:"pending"`
	Entries   []EntryReport `json:"entries"`
}

// EntryReport is one draw result.
type EntryReport struct {
	Winner    string `json:"winner"`
	Amount    uint64 `json:"amount"`
	AmountSOL string `json:"amount_sol"`
	Rewarded  bool   `json:"rewarded"`
	Timestamp int64  `json:"timestamp"`
}

func (r BillboardReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Billboard %s\n", r.Billboard)
	fmt.Fprintf(&b, "  entries: %d (%d pending)", len(r.Entries), r.Pending)
	for i, e := range r.Entries {
		status := "pending"
		if e.Rewarded {
			status = "rewarded"
		}
		fmt.Fprintf(&b, "\n  #%d %s %d lamports (%s SOL) at %d, %s",
			i, e.Winner, e.Amount, e.AmountSOL, e.Timestamp, status)
	}
	return b.String()
}

// NewShowCommand creates the show command and its pool and billboard
// subcommands.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display pool or billboard state",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(&cobra.Command{
		Use:           "pool",
		Short:         "Display the pool: configuration and current players",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowPool(rootOpts, cmd)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "billboard",
		Short:         "Display the billboard: every draw result",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowBillboard(rootOpts, cmd)
		},
	})

	return cmd
}

func runShowPool(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := requireAccounts(s.cfg, "pool"); err != nil {
		return s.out.Fail(ExitCommandError, CodeInput, "invalid show request", err)
	}
	acc, err := s.ledger.Account(cmd.Context(), s.cfg.PoolKey())
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "failed to read pool", err)
	}
	pool, err := state.UnpackPoolState(acc.Data)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "failed to decode pool", err)
	}

	report := PoolReport{
		Pool:           acc.Key.String(),
		Price:          pool.Price,
		PriceSOL:       formatSOL(pool.Price),
		Fund:           pool.Fund,
		FundSOL:        formatSOL(pool.Fund),
		Accumulator:    pool.AwardAccumulator,
		AccumulatorSOL: formatSOL(pool.AwardAccumulator),
		FeeAccount:     pool.FeeAccountID.String(),
		Billboard:      pool.BillboardAccountID.String(),
		Players:        make([]PlayerReport, len(pool.Players)),
	}
	for i, p := range pool.Players {
		report.Players[i] = PlayerReport{
			Account:  p.AccountID.String(),
			Tickets:  p.TicketCount,
			SignedIn: p.SignedIn,
		}
	}
	return s.out.Success(report)
}

func runShowBillboard(opts *RootOptions, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := requireAccounts(s.cfg, "billboard"); err != nil {
		return s.out.Fail(ExitCommandError, CodeInput, "invalid show request", err)
	}
	acc, err := s.ledger.Account(cmd.Context(), s.cfg.BillboardKey())
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "failed to read billboard", err)
	}
	board, err := state.UnpackAwardLedger(acc.Data)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeLedger, "failed to decode billboard", err)
	}

	report := BillboardReport{
		Billboard: acc.Key.String(),
		Pending:   board.Pending(),
		Entries:   make([]EntryReport, len(board.Entries)),
	}
	for i, e := range board.Entries {
		report.Entries[i] = EntryReport{
			Winner:    e.Winner.String(),
			Amount:    e.Amount,
			AmountSOL: formatSOL(e.Amount),
			Rewarded:  e.Rewarded,
			Timestamp: e.Timestamp,
		}
	}
	return s.out.Success(report)
}
