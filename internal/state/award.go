package state

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solongwallet/lottery/internal/progerr"
)

// MaxAwards is the capacity of the entry list in an AwardLedger.
const MaxAwards = 1000

const (
	awardHeaderLen = 2
	awardStride    = 32 + 8 + 1 + 8
)

// AwardLedgerLen is the fixed byte length of a billboard account.
const AwardLedgerLen = awardHeaderLen + MaxAwards*awardStride

// AwardEntry records one draw outcome. Rewarded moves from false to true
// exactly once.
type AwardEntry struct {
	Winner    solana.PublicKey
	Amount    uint64
	Rewarded  bool
	Timestamp int64
}

// AwardLedger is the append-only list of draw results, also called the
// billboard.
type AwardLedger struct {
	Entries []AwardEntry
}

// Full reports whether the ledger has reached capacity.
func (l *AwardLedger) Full() bool {
	return len(l.Entries) >= MaxAwards
}

// Pending returns the number of entries not yet rewarded.
func (l *AwardLedger) Pending() int {
	n := 0
	for _, e := range l.Entries {
		if !e.Rewarded {
			n++
		}
	}
	return n
}

// MarshalBinary encodes the ledger into a new AwardLedgerLen buffer.
func (l *AwardLedger) MarshalBinary() ([]byte, error) {
	buf := make([]byte, AwardLedgerLen)
	if err := l.PackInto(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// PackInto encodes the ledger into dst, zeroing capacity past the last entry.
func (l *AwardLedger) PackInto(dst []byte) error {
	if len(l.Entries) > MaxAwards {
		return progerr.New(progerr.CodeInvalidAccountLength,
			"%d entries exceed capacity %d", len(l.Entries), MaxAwards)
	}

	c := &cursor{buf: dst}
	c.putU16(uint16(len(l.Entries)))
	for _, e := range l.Entries {
		c.putKey(e.Winner)
		c.putU64(e.Amount)
		c.putBool(e.Rewarded)
		c.putI64(e.Timestamp)
	}
	c.zeroRest()
	return c.err
}

// UnmarshalBinary decodes a ledger from src, reading only the populated
// strides.
func (l *AwardLedger) UnmarshalBinary(src []byte) error {
	c := &cursor{buf: src}
	count := int(c.u16())
	if c.err != nil {
		return c.err
	}
	if count > MaxAwards {
		return progerr.New(progerr.CodeInvalidAccountLength,
			"entry count %d exceeds capacity %d", count, MaxAwards)
	}

	var entries []AwardEntry
	if count > 0 {
		entries = make([]AwardEntry, count)
		for i := range entries {
			entries[i] = AwardEntry{
				Winner:    c.key(),
				Amount:    c.u64(),
				Rewarded:  c.bool(),
				Timestamp: c.i64(),
			}
		}
	}
	if c.err != nil {
		return c.err
	}

	l.Entries = entries
	return nil
}

// UnpackAwardLedger decodes a billboard account buffer.
func UnpackAwardLedger(src []byte) (*AwardLedger, error) {
	l := &AwardLedger{}
	if err := l.UnmarshalBinary(src); err != nil {
		return nil, err
	}
	return l, nil
}
