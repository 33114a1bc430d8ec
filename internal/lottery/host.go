package lottery

import (
	"github.com/gagliardetto/solana-go"
)

// Account is one account handed to the program for a single invocation.
//
// The host fills Owner and IsSigner after verifying them; the program only
// inspects them. Data is the account's full storage buffer and is written
// back in place.
type Account struct {
	Key        solana.PublicKey
	Owner      solana.PublicKey
	IsSigner   bool
	IsWritable bool
	Lamports   uint64
	Data       []byte
}

// Clock supplies the draw entropy for Roll.
type Clock interface {
	UnixTimestamp() int64
}

// Transferer moves value between accounts. Implementations must either move
// the full amount or fail without moving anything.
type Transferer interface {
	Transfer(from, to solana.PublicKey, amount uint64) error
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() int64

// UnixTimestamp implements Clock.
func (f ClockFunc) UnixTimestamp() int64 { return f() }
