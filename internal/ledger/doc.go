// Package ledger is a local, single-node host for the lottery program.
//
// It stands in for the chain runtime: it owns account storage, verifies
// transaction signatures, moves lamports between accounts, supplies the
// clock, and keeps an append-only transaction log.
//
// # Storage
//
// State lives in SQLite:
//   - accounts: pubkey, owner, lamports, data
//   - transactions: one row per accepted operation (create_account, airdrop,
//     invoke), ordered by seq
//
// The database is configured like every other SQLite store in this module:
// WAL journal, synchronous=NORMAL, a 5 second busy timeout, and a single open
// connection so that writes are serialized.
//
// # Execution
//
// Submit verifies every signer's ed25519 signature over the transaction
// message (program id, instruction data, account keys and flags), reads the
// clock once, and runs the program inside one SQL transaction. Lamport transfers
// and data writes are staged in a session and flushed together.
//
// A program error does not roll the session back. The program leaves its
// accounts untouched on every failure path except Reward, which keeps the
// entries it already paid; committing keeps those flips consistent with the
// transfers that backed them. Infrastructure errors roll everything back and
// are not logged.
//
// # Replay
//
// Replay re-executes a ledger's log against an empty ledger using the logged
// clock values and reports every account whose final bytes or balance
// differ. A clean report means the program is deterministic over that log.
package ledger
