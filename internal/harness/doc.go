// Package harness runs lottery scenarios and compares their traces with
// golden files.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: basic-round
//	description: "What this scenario validates"
//	clock: 7                # initial clock reading
//	balances:               # lamports airdropped before the first step
//	  admin: 1000
//	steps:
//	  - op: initialize      # initialize | signin | gm | roll | reward
//	    fund: 500
//	  - op: signin
//	    actor: alice
//	  - op: signin
//	    actor: alice
//	    expect: AlreadySignin
//	  - op: roll
//	    clock: 8            # pin the clock for this and later steps
//	assertions:
//	  - type: winners
//	    aliases: [alice]
//
// Actors are aliases. Every alias maps to a deterministic keypair, so a
// scenario never names a base58 key. Admin operations default to the
// "admin" actor; naming another actor submits the same instruction signed
// by that actor instead.
//
// # Assertion Types
//
//   - balance: lamports held by account
//   - players: aliases in the pool, in entry order
//   - winners: billboard winners, in draw order
//   - pending: number of unrewarded billboard entries
//   - accumulator: the pool's award accumulator
//
// # Deterministic Testing
//
// Each scenario runs against a fresh in-memory ledger with a settable clock
// (testutil.Clock) and alias-derived keys (testutil.Keypair). The trace is
// rendered as canonical JSON: sorted keys, no whitespace, NFC-normalised
// strings. Identical scenarios therefore produce byte-identical traces.
package harness
