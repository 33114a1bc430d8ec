package ledger

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/solongwallet/lottery/internal/progerr"
)

// Kind classifies a transaction log entry.
type Kind string

const (
	KindCreateAccount Kind = "create_account"
	KindAirdrop       Kind = "airdrop"
	KindInvoke        Kind = "invoke"
)

// Status is the outcome of a logged operation.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// LogEntry is one row of the transaction log.
type LogEntry struct {
	Seq        int64
	ID         string // UUIDv7
	Kind       Kind
	Clock      int64
	ProgramID  solana.PublicKey
	Data       []byte
	Accounts   []AccountRef
	Signatures []solana.Signature
	Amount     uint64
	Space      int
	Status     Status
	Code       *progerr.Code // set when the program failed
}

// Tx rebuilds the invocation recorded by an invoke entry.
func (e LogEntry) Tx() *Tx {
	return &Tx{
		ProgramID:  e.ProgramID,
		Accounts:   e.Accounts,
		Data:       e.Data,
		Signatures: e.Signatures,
	}
}

type accountRefJSON struct {
	Pubkey   string `json:"pubkey"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
}

// appendLog inserts e and returns its seq. ID is generated when empty.
func appendLog(ctx context.Context, tx *sql.Tx, e LogEntry) (int64, error) {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return 0, fmt.Errorf("generate tx id: %w", err)
		}
		e.ID = id.String()
	}

	accountsJSON, err := marshalAccounts(e.Accounts)
	if err != nil {
		return 0, err
	}
	sigsJSON, err := marshalSignatures(e.Signatures)
	if err != nil {
		return 0, err
	}
	if err := checkLamports(e.Amount); err != nil {
		return 0, fmt.Errorf("append log: %w", err)
	}

	var program string
	if e.Kind == KindInvoke {
		program = e.ProgramID.String()
	}
	var code sql.NullInt64
	if e.Code != nil {
		code = sql.NullInt64{Int64: int64(*e.Code), Valid: true}
	}
	data := e.Data
	if data == nil {
		data = []byte{}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO transactions
		(id, kind, clock, program, instruction, accounts, signatures, amount, space, status, code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID,
		string(e.Kind),
		e.Clock,
		program,
		data,
		accountsJSON,
		sigsJSON,
		int64(e.Amount),
		e.Space,
		string(e.Status),
		code,
	)
	if err != nil {
		return 0, fmt.Errorf("append log: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append log: last insert id: %w", err)
	}
	return seq, nil
}

// LastClock returns the highest clock value logged by an invocation, or 0
// for an empty log.
func (l *Ledger) LastClock(ctx context.Context) (int64, error) {
	var last int64
	err := l.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(clock), 0) FROM transactions WHERE kind = ?`, string(KindInvoke),
	).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("query last clock: %w", err)
	}
	return last, nil
}

// Transactions returns the full log.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
func (l *Ledger) Transactions(ctx context.Context) ([]LogEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT seq, id, kind, clock, program, instruction, accounts, signatures, amount, space, status, code
		FROM transactions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	entries := []LogEntry{}
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return entries, nil
}

func scanLogEntry(s scanner) (LogEntry, error) {
	var (
		e                      LogEntry
		kind, program, status  string
		accountsJSON, sigsJSON string
		amount                 int64
		code                   sql.NullInt64
	)
	err := s.Scan(&e.Seq, &e.ID, &kind, &e.Clock, &program, &e.Data,
		&accountsJSON, &sigsJSON, &amount, &e.Space, &status, &code)
	if err != nil {
		return e, fmt.Errorf("scan transaction: %w", err)
	}

	e.Kind = Kind(kind)
	e.Status = Status(status)
	e.Amount = uint64(amount)
	if program != "" {
		if e.ProgramID, err = solana.PublicKeyFromBase58(program); err != nil {
			return e, fmt.Errorf("scan transaction %d: program: %w", e.Seq, err)
		}
	}
	if code.Valid {
		c := progerr.Code(code.Int64)
		e.Code = &c
	}
	if e.Accounts, err = unmarshalAccounts(accountsJSON); err != nil {
		return e, fmt.Errorf("scan transaction %d: %w", e.Seq, err)
	}
	if e.Signatures, err = unmarshalSignatures(sigsJSON); err != nil {
		return e, fmt.Errorf("scan transaction %d: %w", e.Seq, err)
	}
	return e, nil
}

// encodeJSON marshals v with HTML escaping disabled and no trailing newline.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func marshalAccounts(refs []AccountRef) (string, error) {
	out := make([]accountRefJSON, len(refs))
	for i, r := range refs {
		out[i] = accountRefJSON{Pubkey: r.Key.String(), Signer: r.Signer, Writable: r.Writable}
	}
	s, err := encodeJSON(out)
	if err != nil {
		return "", fmt.Errorf("marshal accounts: %w", err)
	}
	return s, nil
}

func unmarshalAccounts(data string) ([]AccountRef, error) {
	var in []accountRefJSON
	if err := json.Unmarshal([]byte(data), &in); err != nil {
		return nil, fmt.Errorf("unmarshal accounts: %w", err)
	}
	refs := make([]AccountRef, len(in))
	for i, r := range in {
		key, err := solana.PublicKeyFromBase58(r.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("unmarshal accounts: %q: %w", r.Pubkey, err)
		}
		refs[i] = AccountRef{Key: key, Signer: r.Signer, Writable: r.Writable}
	}
	return refs, nil
}

func marshalSignatures(sigs []solana.Signature) (string, error) {
	out := make([]string, len(sigs))
	for i, sig := range sigs {
		out[i] = sig.String()
	}
	s, err := encodeJSON(out)
	if err != nil {
		return "", fmt.Errorf("marshal signatures: %w", err)
	}
	return s, nil
}

func unmarshalSignatures(data string) ([]solana.Signature, error) {
	var in []string
	if err := json.Unmarshal([]byte(data), &in); err != nil {
		return nil, fmt.Errorf("unmarshal signatures: %w", err)
	}
	sigs := make([]solana.Signature, len(in))
	for i, s := range in {
		sig, err := solana.SignatureFromBase58(s)
		if err != nil {
			return nil, fmt.Errorf("unmarshal signatures: %q: %w", s, err)
		}
		sigs[i] = sig
	}
	return sigs, nil
}
