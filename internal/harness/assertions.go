package harness

import (
	"context"
	"fmt"
	"slices"
)

// evaluateAssertions checks every assertion against the final ledger and
// returns one message per failure.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := h.evaluateAssertion(ctx, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i+1, a.Type, err))
		}
	}
	return errs
}

func (h *Harness) evaluateAssertion(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertBalance:
		got, err := h.balance(ctx, a.Account)
		if err != nil {
			return err
		}
		if got != *a.Lamports {
			return fmt.Errorf("%s holds %d lamports, want %d", a.Account, got, *a.Lamports)
		}

	case AssertAccumulator:
		pool, err := h.pool(ctx)
		if err != nil {
			return err
		}
		if pool.AwardAccumulator != *a.Lamports {
			return fmt.Errorf("accumulator is %d, want %d", pool.AwardAccumulator, *a.Lamports)
		}

	case AssertPlayers:
		pool, err := h.pool(ctx)
		if err != nil {
			return err
		}
		got := make([]string, len(pool.Players))
		for i, p := range pool.Players {
			got[i] = h.nameOf(p.AccountID)
		}
		if !slices.Equal(got, a.Aliases) {
			return fmt.Errorf("players are %v, want %v", got, a.Aliases)
		}

	case AssertWinners:
		board, err := h.billboard(ctx)
		if err != nil {
			return err
		}
		got := make([]string, len(board.Entries))
		for i, e := range board.Entries {
			got[i] = h.nameOf(e.Winner)
		}
		if !slices.Equal(got, a.Aliases) {
			return fmt.Errorf("winners are %v, want %v", got, a.Aliases)
		}

	case AssertPending:
		board, err := h.billboard(ctx)
		if err != nil {
			return err
		}
		if got := board.Pending(); got != *a.Count {
			return fmt.Errorf("%d entries pending, want %d", got, *a.Count)
		}

	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
