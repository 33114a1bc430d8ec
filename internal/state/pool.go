package state

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solongwallet/lottery/internal/progerr"
)

// MaxPlayers is the capacity of the player list in a PoolState.
const MaxPlayers = 10000

const (
	poolHeaderLen = 8 + 8 + 8 + 32 + 32 + 2
	playerStride  = 32 + 2 + 1
)

// PoolStateLen is the fixed byte length of a pool account.
const PoolStateLen = poolHeaderLen + MaxPlayers*playerStride

// PlayerRecord is one entrant in the current round.
type PlayerRecord struct {
	AccountID   solana.PublicKey
	TicketCount uint16
	SignedIn    bool
}

// PoolState holds the draw configuration and the bounded player list.
type PoolState struct {
	Price              uint64
	Fund               uint64
	AwardAccumulator   uint64
	FeeAccountID       solana.PublicKey
	BillboardAccountID solana.PublicKey
	Players            []PlayerRecord
}

// FindPlayer returns the index of the player with the given account id,
// or -1 if the account has not signed in this round.
func (p *PoolState) FindPlayer(id solana.PublicKey) int {
	for i := range p.Players {
		if p.Players[i].AccountID == id {
			return i
		}
	}
	return -1
}

// ResetRound clears the player list and the award accumulator.
// Price, fund and the linked account ids persist.
func (p *PoolState) ResetRound() {
	p.Players = nil
	p.AwardAccumulator = 0
}

// MarshalBinary encodes the pool into a new PoolStateLen buffer.
func (p *PoolState) MarshalBinary() ([]byte, error) {
	buf := make([]byte, PoolStateLen)
	if err := p.PackInto(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// PackInto encodes the pool into dst, zeroing capacity past the last player.
// dst must hold at least the header and every populated stride.
func (p *PoolState) PackInto(dst []byte) error {
	if len(p.Players) > MaxPlayers {
		return progerr.New(progerr.CodeInvalidAccountLength,
			"%d players exceed capacity %d", len(p.Players), MaxPlayers)
	}

	c := &cursor{buf: dst}
	c.putU64(p.Price)
	c.putU64(p.Fund)
	c.putU64(p.AwardAccumulator)
	c.putKey(p.FeeAccountID)
	c.putKey(p.BillboardAccountID)
	c.putU16(uint16(len(p.Players)))
	for _, pl := range p.Players {
		c.putKey(pl.AccountID)
		c.putU16(pl.TicketCount)
		c.putBool(pl.SignedIn)
	}
	c.zeroRest()
	return c.err
}

// UnmarshalBinary decodes a pool from src. Only the populated strides are
// read; src may be longer than they require.
func (p *PoolState) UnmarshalBinary(src []byte) error {
	c := &cursor{buf: src}
	out := PoolState{
		Price:              c.u64(),
		Fund:               c.u64(),
		AwardAccumulator:   c.u64(),
		FeeAccountID:       c.key(),
		BillboardAccountID: c.key(),
	}
	count := int(c.u16())
	if c.err != nil {
		return c.err
	}
	if count > MaxPlayers {
		return progerr.New(progerr.CodeInvalidAccountLength,
			"player count %d exceeds capacity %d", count, MaxPlayers)
	}

	if count > 0 {
		out.Players = make([]PlayerRecord, count)
		for i := range out.Players {
			out.Players[i] = PlayerRecord{
				AccountID:   c.key(),
				TicketCount: c.u16(),
				SignedIn:    c.bool(),
			}
		}
	}
	if c.err != nil {
		return c.err
	}

	*p = out
	return nil
}

// UnpackPoolState decodes a pool account buffer.
func UnpackPoolState(src []byte) (*PoolState, error) {
	p := &PoolState{}
	if err := p.UnmarshalBinary(src); err != nil {
		return nil, err
	}
	return p, nil
}
