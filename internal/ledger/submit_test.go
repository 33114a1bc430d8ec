package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solongwallet/lottery/internal/instruction"
	"github.com/solongwallet/lottery/internal/progerr"
	"github.com/solongwallet/lottery/internal/testutil"
)

func TestSubmit_FullRound(t *testing.T) {
	l, clock := createTestLedger(t, adminKey.PublicKey())
	deployPool(t, l)
	initialize(t, l, 5_000, 0)

	players := []solana.PrivateKey{
		testutil.Keypair("alice"),
		testutil.Keypair("bob"),
		testutil.Keypair("carol"),
	}
	for _, p := range players {
		_, err := signIn(t, l, p)
		require.NoError(t, err)
	}
	require.Len(t, readPool(t, l).Players, 3)

	clock.Set(4) // 4 mod 3 + 1 = 2 -> bob
	receipt, err := submit(t, l, instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey), adminKey)
	require.NoError(t, err)
	assert.Equal(t, int64(4), receipt.Clock)
	assert.NotEmpty(t, receipt.ID)

	entries := readBillboard(t, l).Entries
	require.Len(t, entries, 1)
	assert.Equal(t, players[1].PublicKey(), entries[0].Winner)
	assert.Equal(t, uint64(5_000), entries[0].Amount)
	assert.Empty(t, readPool(t, l).Players)

	_, err = submit(t, l, instruction.NewRewardInstruction(programID, adminKey.PublicKey(), boardKey, solana.PublicKey{}), adminKey)
	require.NoError(t, err)

	assert.True(t, readBillboard(t, l).Entries[0].Rewarded)
	assert.Equal(t, uint64(5_000), balance(t, l, players[1].PublicKey()))
	assert.Equal(t, uint64(1_000_000-5_000), balance(t, l, adminKey.PublicKey()))
}

func TestSubmit_ProgramFailureIsLogged(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())
	deployPool(t, l)
	initialize(t, l, 10, 0)

	alice := testutil.Keypair("alice")
	_, err := signIn(t, l, alice)
	require.NoError(t, err)
	before := readPool(t, l)

	receipt, err := signIn(t, l, alice)
	require.Error(t, err)
	assert.True(t, errors.Is(err, progerr.ErrAlreadySignin))
	require.NotNil(t, receipt)
	code, ok := receipt.Code()
	require.True(t, ok)
	assert.Equal(t, progerr.CodeAlreadySignin, code)
	assert.Equal(t, before, readPool(t, l))

	log, err := l.Transactions(context.Background())
	require.NoError(t, err)
	last := log[len(log)-1]
	assert.Equal(t, receipt.Seq, last.Seq)
	assert.Equal(t, KindInvoke, last.Kind)
	assert.Equal(t, StatusFailed, last.Status)
	require.NotNil(t, last.Code)
	assert.Equal(t, progerr.CodeAlreadySignin, *last.Code)
}

func TestSubmit_RejectsBadSignature(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())
	deployPool(t, l)

	ix := instruction.NewInitializeInstruction(programID, adminKey.PublicKey(), poolKey, boardKey, feeKey, 1, 0)
	tx, err := SignInstruction(ix, adminKey)
	require.NoError(t, err)
	tx.Data[1] ^= 0xFF // tamper after signing

	before, err := l.Transactions(context.Background())
	require.NoError(t, err)

	receipt, err := l.Submit(context.Background(), tx)
	assert.Nil(t, receipt)
	assert.True(t, errors.Is(err, ErrSignature))

	after, err := l.Transactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after), "rejected transactions are not logged")
}

func TestSubmit_RejectsMissingSignature(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())

	tx, err := NewTx(instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey))
	require.NoError(t, err)

	_, err = l.Submit(context.Background(), tx)
	assert.True(t, errors.Is(err, ErrSignature))
}

func TestSubmit_ForgedSigner(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())
	deployPool(t, l)

	// Mallory signs a roll naming the admin key with her own key.
	mallory := testutil.Keypair("mallory")
	tx, err := NewTx(instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey))
	require.NoError(t, err)
	sig, err := mallory.Sign(tx.Message())
	require.NoError(t, err)
	tx.Signatures = []solana.Signature{sig}

	_, err = l.Submit(context.Background(), tx)
	assert.True(t, errors.Is(err, ErrSignature))
}

func TestSubmit_RejectsFlippedAccountFlags(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())
	deployPool(t, l)

	tx, err := SignInstruction(instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey), adminKey)
	require.NoError(t, err)
	tx.Accounts[1].Writable = !tx.Accounts[1].Writable

	receipt, err := l.Submit(context.Background(), tx)
	assert.Nil(t, receipt)
	assert.True(t, errors.Is(err, ErrSignature))
}

func TestTx_MessageCoversProgramAndFlags(t *testing.T) {
	tx, err := NewTx(instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey))
	require.NoError(t, err)
	base := tx.Message()

	other := *tx
	other.ProgramID = testutil.PublicKey("other-program")
	assert.NotEqual(t, base, other.Message())

	flipped := *tx
	flipped.Accounts = append([]AccountRef(nil), tx.Accounts...)
	flipped.Accounts[0].Signer = false
	assert.NotEqual(t, base, flipped.Message())

	assert.Len(t, base, 32+len(tx.Data)+len(tx.Accounts)*33)
}

func TestSubmit_UnknownProgram(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())

	other := testutil.PublicKey("other-program")
	_, err := submit(t, l, instruction.NewRollInstruction(other, adminKey.PublicKey(), poolKey, boardKey), adminKey)
	assert.True(t, errors.Is(err, ErrUnknownProgram))
}

func TestSubmit_NonAdminSignerRejectedByProgram(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())
	deployPool(t, l)
	initialize(t, l, 10, 0)

	mallory := testutil.Keypair("mallory")
	ix := instruction.NewAdjustFundInstruction(programID, mallory.PublicKey(), poolKey, 1, 0)
	receipt, err := submit(t, l, ix, mallory)
	require.NotNil(t, receipt)
	assert.True(t, errors.Is(err, progerr.ErrInvalidPermission))
	assert.Equal(t, uint64(10), readPool(t, l).Fund)
}

func TestSubmit_TicketPurchase(t *testing.T) {
	l, _ := createTestLedger(t, adminKey.PublicKey())
	deployPool(t, l)
	initialize(t, l, 100, 25)

	ctx := context.Background()
	alice := testutil.Keypair("alice")
	_, err := l.Airdrop(ctx, alice.PublicKey(), 30)
	require.NoError(t, err)

	_, err = signIn(t, l, alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), balance(t, l, alice.PublicKey()))
	assert.Equal(t, uint64(25), balance(t, l, feeKey), "fee account is created by the transfer")
	assert.Equal(t, uint64(25), readPool(t, l).AwardAccumulator)

	bob := testutil.Keypair("bob")
	_, err = signIn(t, l, bob)
	assert.True(t, errors.Is(err, progerr.ErrLowBalance))
	_, err = l.Account(ctx, bob.PublicKey())
	assert.True(t, errors.Is(err, ErrAccountNotFound), "failed purchase creates no account")
}

func TestSubmit_RewardPartialFailureCommitsPaidEntries(t *testing.T) {
	l, clock := createTestLedger(t, adminKey.PublicKey())
	ctx := context.Background()
	require.NoError(t, l.CreateAccount(ctx, poolKey, programID, 350090, 0))
	require.NoError(t, l.CreateAccount(ctx, boardKey, programID, 49002, 0))
	_, err := l.Airdrop(ctx, adminKey.PublicKey(), 150)
	require.NoError(t, err)

	initialize(t, l, 100, 0)
	alice := testutil.Keypair("alice")
	for i := 0; i < 2; i++ {
		_, err := signIn(t, l, alice)
		require.NoError(t, err)
		clock.Advance(1)
		_, err = submit(t, l, instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey), adminKey)
		require.NoError(t, err)
	}

	// Two entries of 100 each; the admin can only fund one.
	receipt, err := submit(t, l, instruction.NewRewardInstruction(programID, adminKey.PublicKey(), boardKey, solana.PublicKey{}), adminKey)
	require.NotNil(t, receipt)
	assert.True(t, errors.Is(err, progerr.ErrInsufficientFunds))

	entries := readBillboard(t, l).Entries
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Rewarded)
	assert.False(t, entries[1].Rewarded)
	assert.Equal(t, uint64(100), balance(t, l, alice.PublicKey()))
	assert.Equal(t, uint64(50), balance(t, l, adminKey.PublicKey()))
}

func TestTx_SignRequiresEveryKey(t *testing.T) {
	ix := instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey)

	_, err := SignInstruction(ix, testutil.Keypair("someone-else"))
	assert.Error(t, err)

	tx, err := SignInstruction(ix, adminKey)
	require.NoError(t, err)
	assert.Equal(t, []solana.PublicKey{adminKey.PublicKey()}, tx.Signers())
	assert.NoError(t, tx.Verify())
}

func TestTx_MessageCoversAccounts(t *testing.T) {
	tx, err := SignInstruction(instruction.NewRollInstruction(programID, adminKey.PublicKey(), poolKey, boardKey), adminKey)
	require.NoError(t, err)

	tx.Accounts[2].Key = testutil.PublicKey("swapped")
	assert.True(t, errors.Is(tx.Verify(), ErrSignature))
}
