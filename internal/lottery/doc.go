// Package lottery implements the lottery program: the authorization guard
// and the state machine that runs Initialize, SignIn, AdjustFund, Roll and
// Reward against caller-supplied account buffers.
//
// # Execution model
//
// Process runs one instruction to completion on the calling goroutine. There
// is no locking, no suspension and no retry. The host serializes invocations
// that touch the same accounts and supplies three synchronous collaborators:
// a Clock, a Transferer, and Account values whose Owner and IsSigner fields
// it has already verified.
//
// # All-or-nothing writes
//
// Every handler follows the same shape:
//
//  1. check account count, permissions, ownership and lengths (Guard)
//  2. decode account buffers
//  3. compute the new state on decoded copies
//  4. encode into fresh buffers
//  5. perform value transfers, if any
//  6. copy each fresh buffer over its account's Data in one write
//
// An error at any step before 6 leaves every account's Data untouched.
// Reward is the single exception: entries are flipped one at a time after
// each successful transfer, and when a later transfer fails the entries
// already paid in the same call stay flipped and are written back before
// the error is returned.
//
// # States
//
// The round state is implicit in PoolState:
//
//	Uninitialized -> Open (Initialize)
//	Open -> Open (SignIn, AdjustFund)
//	Open -> Drawn-pending-reward (Roll with players)
//	Drawn-pending-reward -> Open (Initialize, or new SignIns)
//
// # Draw
//
// Roll reads the clock value T once and selects the first player whose
// cumulative ticket count reaches (uint64(T) mod total_weight) + 1. The clock
// is the only entropy source, so whoever times the Roll submission can
// predict or steer the outcome. This is known and left as is.
package lottery
