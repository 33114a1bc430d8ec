package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
)

// SystemProgramID owns accounts created by Airdrop or by a transfer to an
// unknown key.
var SystemProgramID = solana.PublicKey{}

// AccountInfo is a stored account.
type AccountInfo struct {
	Key      solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateAccount allocates a zeroed account of space bytes owned by owner
// and funds it with lamports. It fails with ErrAccountExists if key is taken.
func (l *Ledger) CreateAccount(ctx context.Context, key, owner solana.PublicKey, space int, lamports uint64) error {
	if space < 0 {
		return fmt.Errorf("create account %s: negative space %d", key, space)
	}
	if err := checkLamports(lamports); err != nil {
		return fmt.Errorf("create account %s: %w", key, err)
	}

	err := l.withTx(ctx, func(tx *sql.Tx) error {
		_, err := loadAccount(ctx, tx, key)
		switch {
		case err == nil:
			return ErrAccountExists
		case !errors.Is(err, ErrAccountNotFound):
			return err
		}

		acc := &AccountInfo{Key: key, Owner: owner, Lamports: lamports, Data: make([]byte, space)}
		if err := storeAccount(ctx, tx, acc); err != nil {
			return err
		}
		_, err = appendLog(ctx, tx, LogEntry{
			Kind:     KindCreateAccount,
			Accounts: []AccountRef{{Key: key, Writable: true}, {Key: owner}},
			Amount:   lamports,
			Space:    space,
			Status:   StatusOK,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("create account %s: %w", key, err)
	}

	l.logger.Info("account created", "pubkey", key, "owner", owner, "space", space, "lamports", lamports)
	return nil
}

// Airdrop credits lamports to key, creating a system account if needed.
// It returns the new balance.
func (l *Ledger) Airdrop(ctx context.Context, key solana.PublicKey, lamports uint64) (uint64, error) {
	var balance uint64
	err := l.withTx(ctx, func(tx *sql.Tx) error {
		acc, err := loadAccount(ctx, tx, key)
		if errors.Is(err, ErrAccountNotFound) {
			acc = &AccountInfo{Key: key, Owner: SystemProgramID}
		} else if err != nil {
			return err
		}

		if lamports > math.MaxInt64 || acc.Lamports > math.MaxInt64-lamports {
			return ErrLamportsRange
		}
		acc.Lamports += lamports
		if err := storeAccount(ctx, tx, acc); err != nil {
			return err
		}
		balance = acc.Lamports

		_, err = appendLog(ctx, tx, LogEntry{
			Kind:     KindAirdrop,
			Accounts: []AccountRef{{Key: key, Writable: true}},
			Amount:   lamports,
			Status:   StatusOK,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("airdrop to %s: %w", key, err)
	}

	l.logger.Debug("airdrop", "pubkey", key, "lamports", lamports, "balance", balance)
	return balance, nil
}

// Account returns the stored account for key.
func (l *Ledger) Account(ctx context.Context, key solana.PublicKey) (*AccountInfo, error) {
	acc, err := loadAccount(ctx, l.db, key)
	if err != nil {
		return nil, fmt.Errorf("read account %s: %w", key, err)
	}
	return acc, nil
}

// Accounts returns every stored account ordered by pubkey.
func (l *Ledger) Accounts(ctx context.Context) ([]AccountInfo, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT pubkey, owner, lamports, data
		FROM accounts
		ORDER BY pubkey COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []AccountInfo{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func loadAccount(ctx context.Context, q queryer, key solana.PublicKey) (*AccountInfo, error) {
	row := q.QueryRowContext(ctx, `
		SELECT pubkey, owner, lamports, data
		FROM accounts
		WHERE pubkey = ?
	`, key.String())

	acc, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	return acc, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*AccountInfo, error) {
	var (
		pubkey, owner string
		lamports      int64
		data          []byte
	)
	if err := s.Scan(&pubkey, &owner, &lamports, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	key, err := solana.PublicKeyFromBase58(pubkey)
	if err != nil {
		return nil, fmt.Errorf("scan account: pubkey %q: %w", pubkey, err)
	}
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("scan account: owner %q: %w", owner, err)
	}
	return &AccountInfo{Key: key, Owner: ownerKey, Lamports: uint64(lamports), Data: data}, nil
}

func storeAccount(ctx context.Context, tx *sql.Tx, acc *AccountInfo) error {
	if err := checkLamports(acc.Lamports); err != nil {
		return fmt.Errorf("store account %s: %w", acc.Key, err)
	}
	data := acc.Data
	if data == nil {
		data = []byte{}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO accounts (pubkey, owner, lamports, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(pubkey) DO UPDATE SET
			owner = excluded.owner,
			lamports = excluded.lamports,
			data = excluded.data
	`, acc.Key.String(), acc.Owner.String(), int64(acc.Lamports), data)
	if err != nil {
		return fmt.Errorf("store account %s: %w", acc.Key, err)
	}
	return nil
}

func checkLamports(lamports uint64) error {
	if lamports > math.MaxInt64 {
		return ErrLamportsRange
	}
	return nil
}
