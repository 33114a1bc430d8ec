// Package state encodes and decodes the two fixed-length account records the
// lottery program owns.
//
// # Layout
//
// Both records occupy a fixed number of bytes regardless of how many list
// entries are populated. Scalar header fields come first at fixed offsets,
// followed by a little-endian u16 entry count, followed by count fixed-stride
// entries. Remaining capacity is padding.
//
//	PoolState (PoolStateLen = 350090 bytes)
//	  0   price                u64
//	  8   fund                 u64
//	  16  award_accumulator    u64
//	  24  fee_account_id       [32]byte
//	  56  billboard_account_id [32]byte
//	  88  player_count         u16
//	  90  players              player_count × {account_id [32]byte, ticket_count u16, signed_in u8}
//
//	AwardLedger (AwardLedgerLen = 49002 bytes)
//	  0   entry_count          u16
//	  2   entries              entry_count × {winner [32]byte, amount u64, rewarded u8, timestamp i64}
//
// Decoding reads only the first count strides; bytes past them are never
// interpreted, so stale data left by a larger earlier round is harmless.
// Encoding writes the count and the populated strides and zeroes the rest.
//
// Every access is bounds-checked. A buffer too short for its declared count
// fails with progerr.CodeInvalidAccountLength instead of panicking. Checking
// that an account is exactly the record length is the guard's job, not the
// codec's.
//
// Only this schema is supported. Older map-based layouts and layouts without
// signed_in or timestamp are not read.
package state
