package instruction

import (
	"github.com/gagliardetto/solana-go"
)

// Builders assemble complete program instructions with the account order the
// engine expects. Front-ends sign and submit the result; none of them touch
// ledger state.

// NewInitializeInstruction builds an Initialize instruction.
// Accounts: admin (signer), pool, billboard, fee account.
func NewInitializeInstruction(programID, admin, pool, billboard, fee solana.PublicKey, fund, price uint64) *solana.GenericInstruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, false, true),
		solana.NewAccountMeta(pool, true, false),
		solana.NewAccountMeta(billboard, true, false),
		solana.NewAccountMeta(fee, false, false),
	}, Encode(Initialize{Fund: fund, Price: price}))
}

// NewSignInInstruction builds a SignIn instruction.
// Accounts: player (signer), pool, fee account. The fee account is only
// consulted when the pool charges a ticket price.
func NewSignInInstruction(programID, player, pool, fee solana.PublicKey) *solana.GenericInstruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(player, true, true),
		solana.NewAccountMeta(pool, true, false),
		solana.NewAccountMeta(fee, true, false),
	}, Encode(SignIn{}))
}

// NewAdjustFundInstruction builds an AdjustFund instruction.
// Accounts: admin (signer), pool.
func NewAdjustFundInstruction(programID, admin, pool solana.PublicKey, fund, price uint64) *solana.GenericInstruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, false, true),
		solana.NewAccountMeta(pool, true, false),
	}, Encode(AdjustFund{Fund: fund, Price: price}))
}

// NewRollInstruction builds a Roll instruction.
// Accounts: admin (signer), pool, billboard.
func NewRollInstruction(programID, admin, pool, billboard solana.PublicKey) *solana.GenericInstruction {
	return solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, false, true),
		solana.NewAccountMeta(pool, true, false),
		solana.NewAccountMeta(billboard, true, false),
	}, Encode(Roll{}))
}

// NewRewardInstruction builds a Reward instruction.
// Accounts: admin (signer, funding account), billboard, and optionally the
// payee to restrict payouts to. A zero payee pays every pending entry.
func NewRewardInstruction(programID, admin, billboard, payee solana.PublicKey) *solana.GenericInstruction {
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(admin, true, true),
		solana.NewAccountMeta(billboard, true, false),
	}
	if !payee.IsZero() {
		accounts = append(accounts, solana.NewAccountMeta(payee, true, false))
	}
	return solana.NewInstruction(programID, accounts, Encode(Reward{}))
}
