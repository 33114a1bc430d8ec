package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
)

// ReplayReport summarises a Replay run.
type ReplayReport struct {
	Transactions int
	// Diverged lists source seqs whose replayed outcome (status or error
	// code) differs from the logged one.
	Diverged []int64
	// Mismatched lists accounts whose final owner, balance or data differ.
	Mismatched []solana.PublicKey
}

// OK reports whether replay reproduced the source exactly.
func (r *ReplayReport) OK() bool {
	return len(r.Diverged) == 0 && len(r.Mismatched) == 0
}

// Replay re-executes src's log against dst, which must be empty, using the
// logged clock values, then compares the final account sets.
func Replay(ctx context.Context, src, dst *Ledger) (*ReplayReport, error) {
	existing, err := dst.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("replay: target ledger holds %d transactions", len(existing))
	}

	entries, err := src.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	report := &ReplayReport{Transactions: len(entries)}
	for _, e := range entries {
		diverged, err := replayEntry(ctx, dst, e)
		if err != nil {
			return nil, fmt.Errorf("replay seq %d: %w", e.Seq, err)
		}
		if diverged {
			report.Diverged = append(report.Diverged, e.Seq)
		}
	}

	mismatched, err := compareAccounts(ctx, src, dst)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	report.Mismatched = mismatched

	src.logger.Info("replay finished",
		"transactions", report.Transactions,
		"diverged", len(report.Diverged),
		"mismatched", len(report.Mismatched),
	)
	return report, nil
}

func replayEntry(ctx context.Context, dst *Ledger, e LogEntry) (bool, error) {
	switch e.Kind {
	case KindCreateAccount:
		if len(e.Accounts) < 2 {
			return false, fmt.Errorf("create_account entry has %d accounts", len(e.Accounts))
		}
		return false, dst.CreateAccount(ctx, e.Accounts[0].Key, e.Accounts[1].Key, e.Space, e.Amount)

	case KindAirdrop:
		if len(e.Accounts) < 1 {
			return false, errors.New("airdrop entry has no account")
		}
		_, err := dst.Airdrop(ctx, e.Accounts[0].Key, e.Amount)
		return false, err

	case KindInvoke:
		tx := e.Tx()
		if err := dst.admit(tx); err != nil {
			return false, err
		}
		receipt, err := dst.execute(ctx, tx, e.Clock)
		if receipt == nil {
			return false, err
		}
		code, failed := receipt.Code()
		switch {
		case failed != (e.Status == StatusFailed):
			return true, nil
		case failed && (e.Code == nil || *e.Code != code):
			return true, nil
		}
		return false, nil
	}
	return false, fmt.Errorf("unknown entry kind %q", e.Kind)
}

func compareAccounts(ctx context.Context, a, b *Ledger) ([]solana.PublicKey, error) {
	left, err := a.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	right, err := b.Accounts(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[solana.PublicKey]AccountInfo, len(right))
	for _, acc := range right {
		byKey[acc.Key] = acc
	}

	var mismatched []solana.PublicKey
	for _, acc := range left {
		other, ok := byKey[acc.Key]
		delete(byKey, acc.Key)
		if !ok || !sameAccount(acc, other) {
			mismatched = append(mismatched, acc.Key)
		}
	}
	for key := range byKey {
		mismatched = append(mismatched, key)
	}

	sort.Slice(mismatched, func(i, j int) bool {
		return bytes.Compare(mismatched[i][:], mismatched[j][:]) < 0
	})
	return mismatched, nil
}

func sameAccount(a, b AccountInfo) bool {
	return a.Owner == b.Owner && a.Lamports == b.Lamports && bytes.Equal(a.Data, b.Data)
}
