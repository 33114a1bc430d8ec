package ledger

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/solongwallet/lottery/internal/lottery"
	"github.com/solongwallet/lottery/internal/progerr"
)

// Receipt describes a logged invocation.
type Receipt struct {
	Seq   int64
	ID    string
	Clock int64
	Err   error // program error, nil on success
}

// Code returns the program error code, if the invocation failed.
func (r *Receipt) Code() (progerr.Code, bool) {
	return progerr.CodeOf(r.Err)
}

// Submit verifies and executes tx.
//
// A rejected transaction (bad signatures, unknown program) or an
// infrastructure failure returns a nil Receipt and is not logged. A program
// failure returns both the logged Receipt and the program error.
//
// Transactions carry no nonce or recent-state hash, so an identical signed
// transaction submitted again executes again.
func (l *Ledger) Submit(ctx context.Context, tx *Tx) (*Receipt, error) {
	if err := l.admit(tx); err != nil {
		return nil, err
	}
	return l.execute(ctx, tx, l.clock.UnixTimestamp())
}

func (l *Ledger) admit(tx *Tx) error {
	if tx.ProgramID != l.programID {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, tx.ProgramID)
	}
	return tx.Verify()
}

// execute runs an admitted tx with the given clock reading.
func (l *Ledger) execute(ctx context.Context, tx *Tx, now int64) (*Receipt, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate tx id: %w", err)
	}

	var receipt *Receipt
	err = l.withTx(ctx, func(sqlTx *sql.Tx) error {
		sess := newSession(ctx, sqlTx)

		accounts := make([]*lottery.Account, len(tx.Accounts))
		for i, ref := range tx.Accounts {
			rec, err := sess.load(ref.Key)
			if err != nil {
				return err
			}
			accounts[i] = &lottery.Account{
				Key:        ref.Key,
				Owner:      rec.Owner,
				IsSigner:   ref.Signer,
				IsWritable: ref.Writable,
				Lamports:   rec.Lamports,
				Data:       bytes.Clone(rec.Data),
			}
		}

		clock := lottery.ClockFunc(func() int64 { return now })
		engine := lottery.New(l.programID, l.admin, clock, sess, lottery.WithLogger(l.logger))
		progErr := engine.Process(accounts, tx.Data)
		if progErr != nil && !isProgramError(progErr) {
			return progErr
		}

		for i, ref := range tx.Accounts {
			if ref.Writable {
				sess.write(ref.Key, accounts[i].Data)
			}
		}
		if err := sess.flush(); err != nil {
			return err
		}

		entry := LogEntry{
			ID:         id.String(),
			Kind:       KindInvoke,
			Clock:      now,
			ProgramID:  tx.ProgramID,
			Data:       tx.Data,
			Accounts:   tx.Accounts,
			Signatures: tx.Signatures,
			Status:     StatusOK,
		}
		if progErr != nil {
			code, _ := progerr.CodeOf(progErr)
			entry.Status = StatusFailed
			entry.Code = &code
		}
		seq, err := appendLog(ctx, sqlTx, entry)
		if err != nil {
			return err
		}

		receipt = &Receipt{Seq: seq, ID: entry.ID, Clock: now, Err: progErr}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	if receipt.Err != nil {
		l.logger.Info("transaction failed", "seq", receipt.Seq, "id", receipt.ID, "clock", now, "error", receipt.Err)
		return receipt, receipt.Err
	}
	l.logger.Info("transaction committed", "seq", receipt.Seq, "id", receipt.ID, "clock", now)
	return receipt, nil
}

// isProgramError reports whether err carries a program error code. Errors
// without one come from storage and abort the whole transaction.
func isProgramError(err error) bool {
	_, ok := progerr.CodeOf(err)
	return ok
}

// record is a session-local copy of an account.
type record struct {
	AccountInfo
	exists bool
	dirty  bool
}

// session stages account changes for one transaction. It implements
// lottery.Transferer.
type session struct {
	ctx     context.Context
	tx      *sql.Tx
	records map[solana.PublicKey]*record
	order   []solana.PublicKey
}

func newSession(ctx context.Context, tx *sql.Tx) *session {
	return &session{
		ctx:     ctx,
		tx:      tx,
		records: make(map[solana.PublicKey]*record),
	}
}

// load returns the staged record for key, reading it on first use. Unknown
// keys yield an empty system-owned record.
func (s *session) load(key solana.PublicKey) (*record, error) {
	if rec, ok := s.records[key]; ok {
		return rec, nil
	}

	acc, err := loadAccount(s.ctx, s.tx, key)
	var rec *record
	switch {
	case err == nil:
		rec = &record{AccountInfo: *acc, exists: true}
	case errors.Is(err, ErrAccountNotFound):
		rec = &record{AccountInfo: AccountInfo{Key: key, Owner: SystemProgramID}}
	default:
		return nil, err
	}

	s.records[key] = rec
	s.order = append(s.order, key)
	return rec, nil
}

// Transfer implements lottery.Transferer. It moves the full amount or
// nothing.
func (s *session) Transfer(from, to solana.PublicKey, amount uint64) error {
	src, err := s.load(from)
	if err != nil {
		return err
	}
	dst, err := s.load(to)
	if err != nil {
		return err
	}

	if src.Lamports < amount {
		return progerr.New(progerr.CodeInsufficientFunds,
			"%s holds %d, needs %d", from, src.Lamports, amount)
	}
	if from == to {
		return nil
	}
	if amount > math.MaxInt64 || dst.Lamports > math.MaxInt64-amount {
		return progerr.New(progerr.CodeArithmeticOverflow, "balance of %s", to)
	}

	src.Lamports -= amount
	dst.Lamports += amount
	src.dirty = true
	dst.dirty = true
	return nil
}

// write stages data for an existing account when it changed.
func (s *session) write(key solana.PublicKey, data []byte) {
	rec, ok := s.records[key]
	if !ok || !rec.exists || bytes.Equal(rec.Data, data) {
		return
	}
	rec.Data = bytes.Clone(data)
	rec.dirty = true
}

// flush stores dirty records in load order.
func (s *session) flush() error {
	for _, key := range s.order {
		rec := s.records[key]
		if !rec.dirty {
			continue
		}
		if !rec.exists && rec.Lamports == 0 {
			continue
		}
		if err := storeAccount(s.ctx, s.tx, &rec.AccountInfo); err != nil {
			return err
		}
		rec.exists = true
		rec.dirty = false
	}
	return nil
}
