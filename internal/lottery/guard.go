package lottery

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solongwallet/lottery/internal/progerr"
)

// Guard validates identities, signatures, ownership and buffer lengths
// before any handler decodes or mutates state. It has no side effects.
type Guard struct {
	ProgramID solana.PublicKey
	Admin     solana.PublicKey
}

// RequireAdmin checks that acc is the configured administrator and signed
// the invocation.
func (g Guard) RequireAdmin(acc *Account) error {
	if acc.Key != g.Admin {
		return progerr.New(progerr.CodeInvalidPermission, "%s is not the administrator", acc.Key)
	}
	return g.RequireSigner(acc)
}

// RequireSigner checks that acc signed the invocation.
func (g Guard) RequireSigner(acc *Account) error {
	if !acc.IsSigner {
		return progerr.New(progerr.CodeInvalidPermission, "%s did not sign", acc.Key)
	}
	return nil
}

// RequireState checks that acc is a writable account owned by the program
// whose buffer is exactly wantLen bytes. Ownership is checked before length.
func (g Guard) RequireState(acc *Account, wantLen int) error {
	if acc.Owner != g.ProgramID {
		return progerr.New(progerr.CodeInvalidPermission,
			"%s is owned by %s, not the program", acc.Key, acc.Owner)
	}
	if !acc.IsWritable {
		return progerr.New(progerr.CodeInvalidPermission, "%s is not writable", acc.Key)
	}
	if len(acc.Data) != wantLen {
		return progerr.New(progerr.CodeInvalidAccountLength,
			"%s is %d bytes, want %d", acc.Key, len(acc.Data), wantLen)
	}
	return nil
}

// requireAccounts checks that at least n accounts were supplied.
func requireAccounts(accounts []*Account, n int) error {
	if len(accounts) < n {
		return progerr.New(progerr.CodeNotEnoughAccounts, "need %d accounts, got %d", n, len(accounts))
	}
	for i := 0; i < n; i++ {
		if accounts[i] == nil {
			return progerr.New(progerr.CodeNotEnoughAccounts, "account %d is missing", i)
		}
	}
	return nil
}
