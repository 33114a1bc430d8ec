package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solongwallet/lottery/internal/instruction"
	"github.com/solongwallet/lottery/internal/testutil"
)

// buildHistory runs a short lottery history with a few failures mixed in.
func buildHistory(t *testing.T, l *Ledger, clock *testutil.Clock) {
	t.Helper()
	deployPool(t, l)
	initialize(t, l, 1_000, 0)

	alice := testutil.Keypair("alice")
	bob := testutil.Keypair("bob")
	for _, p := range []solana.PrivateKey{alice, bob, alice} {
		signIn(t, l, p) // the repeated sign-in fails and is logged
	}

	clock.Set(1_700_000_001)
	_, err := submit(t, l, instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey), adminKey)
	require.NoError(t, err)
	_, err = submit(t, l, instruction.NewRewardInstruction(programID, adminKey.PublicKey(), boardKey, solana.PublicKey{}), adminKey)
	require.NoError(t, err)
	_, err = submit(t, l, instruction.NewAdjustFundInstruction(programID, adminKey.PublicKey(), poolKey, 2_000, 0), adminKey)
	require.NoError(t, err)
}

func openReplayTarget(t *testing.T, admin solana.PublicKey) *Ledger {
	t.Helper()
	// The target clock is never read during replay.
	dst, err := Open(filepath.Join(t.TempDir(), "replay.db"), programID, admin,
		WithClock(testutil.NewClock(-1)), WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { dst.Close() })
	return dst
}

func TestReplay_ReproducesState(t *testing.T) {
	src, clock := createTestLedger(t, adminKey.PublicKey())
	buildHistory(t, src, clock)
	dst := openReplayTarget(t, adminKey.PublicKey())

	report, err := Replay(context.Background(), src, dst)
	require.NoError(t, err)
	assert.True(t, report.OK(), "diverged=%v mismatched=%v", report.Diverged, report.Mismatched)

	srcLog, err := src.Transactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(srcLog), report.Transactions)

	dstLog, err := dst.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, dstLog, len(srcLog))
	for i := range srcLog {
		assert.Equal(t, srcLog[i].Kind, dstLog[i].Kind)
		assert.Equal(t, srcLog[i].Clock, dstLog[i].Clock)
		assert.Equal(t, srcLog[i].Status, dstLog[i].Status)
	}
}

func TestReplay_DetectsDivergence(t *testing.T) {
	src, clock := createTestLedger(t, adminKey.PublicKey())
	buildHistory(t, src, clock)

	// A host configured with another administrator rejects every admin call.
	dst := openReplayTarget(t, testutil.PublicKey("other-admin"))

	report, err := Replay(context.Background(), src, dst)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.NotEmpty(t, report.Diverged)
	assert.Contains(t, report.Mismatched, poolKey)
	assert.Contains(t, report.Mismatched, boardKey)
}

func TestReplay_RequiresEmptyTarget(t *testing.T) {
	src, clock := createTestLedger(t, adminKey.PublicKey())
	buildHistory(t, src, clock)

	_, err := Replay(context.Background(), src, src)
	assert.Error(t, err)
}

func TestTransactions_RoundTripsEntries(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())
	deployPool(t, l)
	initialize(t, l, 9, 0)

	log, err := l.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, log, 4)

	assert.Equal(t, KindCreateAccount, log[0].Kind)
	assert.Equal(t, 350090, log[0].Space)
	assert.Equal(t, []AccountRef{{Key: poolKey, Writable: true}, {Key: programID}}, log[0].Accounts)
	assert.Equal(t, KindAirdrop, log[2].Kind)
	assert.Equal(t, uint64(1_000_000), log[2].Amount)

	inv := log[3]
	assert.Equal(t, KindInvoke, inv.Kind)
	assert.Equal(t, StatusOK, inv.Status)
	assert.Nil(t, inv.Code)
	assert.Equal(t, programID, inv.ProgramID)
	assert.Equal(t, int64(1608273769), inv.Clock)
	assert.NoError(t, inv.Tx().Verify(), "logged signatures still verify")
	for i := 1; i < len(log); i++ {
		assert.Greater(t, log[i].Seq, log[i-1].Seq)
		assert.NotEqual(t, log[i].ID, log[i-1].ID)
	}
}
