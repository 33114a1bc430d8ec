package ledger

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/solongwallet/lottery/internal/instruction"
	"github.com/solongwallet/lottery/internal/state"
	"github.com/solongwallet/lottery/internal/testutil"
)

var (
	programID = testutil.PublicKey("program")
	adminKey  = testutil.Keypair("admin")
	poolKey   = testutil.PublicKey("pool")
	boardKey  = testutil.PublicKey("billboard")
	feeKey    = testutil.PublicKey("fee")
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestLedger opens a ledger in a temp dir with a settable clock.
func createTestLedger(t *testing.T, admin solana.PublicKey) (*Ledger, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock(1608273769)
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path, programID, admin, WithClock(clock), WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, clock
}

// deployPool creates the pool and billboard accounts and funds the admin.
func deployPool(t *testing.T, l *Ledger) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, l.CreateAccount(ctx, poolKey, programID, state.PoolStateLen, 1))
	require.NoError(t, l.CreateAccount(ctx, boardKey, programID, state.AwardLedgerLen, 1))
	_, err := l.Airdrop(ctx, adminKey.PublicKey(), 1_000_000)
	require.NoError(t, err)
}

func submit(t *testing.T, l *Ledger, ix solana.Instruction, keys ...solana.PrivateKey) (*Receipt, error) {
	t.Helper()
	tx, err := SignInstruction(ix, keys...)
	require.NoError(t, err)
	return l.Submit(context.Background(), tx)
}

func initialize(t *testing.T, l *Ledger, fund, price uint64) {
	t.Helper()
	ix := instruction.NewInitializeInstruction(programID, adminKey.PublicKey(), poolKey, boardKey, feeKey, fund, price)
	_, err := submit(t, l, ix, adminKey)
	require.NoError(t, err)
}

func signIn(t *testing.T, l *Ledger, player solana.PrivateKey) (*Receipt, error) {
	t.Helper()
	ix := instruction.NewSignInInstruction(programID, player.PublicKey(), poolKey, feeKey)
	return submit(t, l, ix, player)
}

func readPool(t *testing.T, l *Ledger) *state.PoolState {
	t.Helper()
	acc, err := l.Account(context.Background(), poolKey)
	require.NoError(t, err)
	pool, err := state.UnpackPoolState(acc.Data)
	require.NoError(t, err)
	return pool
}

func readBillboard(t *testing.T, l *Ledger) *state.AwardLedger {
	t.Helper()
	acc, err := l.Account(context.Background(), boardKey)
	require.NoError(t, err)
	board, err := state.UnpackAwardLedger(acc.Data)
	require.NoError(t, err)
	return board
}

func balance(t *testing.T, l *Ledger, key solana.PublicKey) uint64 {
	t.Helper()
	acc, err := l.Account(context.Background(), key)
	require.NoError(t, err)
	return acc.Lamports
}
