package lottery

import (
	"fmt"
	"log/slog"
	"math/bits"

	"github.com/gagliardetto/solana-go"

	"github.com/solongwallet/lottery/internal/instruction"
	"github.com/solongwallet/lottery/internal/progerr"
	"github.com/solongwallet/lottery/internal/state"
)

// Engine is the lottery state machine.
type Engine struct {
	guard  Guard
	clock  Clock
	bank   Transferer
	logger *slog.Logger
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithLogger sets the logger used for instruction and draw logs.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine for the program programID administered by admin.
func New(programID, admin solana.PublicKey, clock Clock, bank Transferer, opts ...EngineOption) *Engine {
	e := &Engine{
		guard:  Guard{ProgramID: programID, Admin: admin},
		clock:  clock,
		bank:   bank,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Guard returns the engine's authorization guard.
func (e *Engine) Guard() Guard {
	return e.guard
}

// Process decodes input and runs the instruction against accounts.
func (e *Engine) Process(accounts []*Account, input []byte) error {
	ix, err := instruction.Decode(input)
	if err != nil {
		return err
	}

	switch ix := ix.(type) {
	case instruction.Initialize:
		err = e.initialize(accounts, ix)
	case instruction.SignIn:
		err = e.signIn(accounts)
	case instruction.AdjustFund:
		err = e.adjustFund(accounts, ix)
	case instruction.Roll:
		err = e.roll(accounts)
	case instruction.Reward:
		err = e.reward(accounts)
	default:
		err = progerr.New(progerr.CodeInvalidInstruction, "unhandled instruction %T", ix)
	}
	if err != nil {
		e.logger.Debug("instruction failed", "tag", ix.Tag(), "error", err)
		return err
	}

	e.logger.Info("instruction processed", "tag", ix.Tag(), "accounts", len(accounts))
	return nil
}

// initialize resets pool and billboard. Accounts: admin, pool, billboard, fee.
func (e *Engine) initialize(accounts []*Account, ix instruction.Initialize) error {
	if err := requireAccounts(accounts, 4); err != nil {
		return err
	}
	admin, poolAcc, billboardAcc, feeAcc := accounts[0], accounts[1], accounts[2], accounts[3]

	if err := e.guard.RequireAdmin(admin); err != nil {
		return err
	}
	if err := e.guard.RequireState(poolAcc, state.PoolStateLen); err != nil {
		return err
	}
	if err := e.guard.RequireState(billboardAcc, state.AwardLedgerLen); err != nil {
		return err
	}

	pool := state.PoolState{
		Price:              ix.Price,
		Fund:               ix.Fund,
		FeeAccountID:       feeAcc.Key,
		BillboardAccountID: billboardAcc.Key,
	}
	poolBuf, err := pool.MarshalBinary()
	if err != nil {
		return err
	}
	billboardBuf, err := (&state.AwardLedger{}).MarshalBinary()
	if err != nil {
		return err
	}

	copy(poolAcc.Data, poolBuf)
	copy(billboardAcc.Data, billboardBuf)
	return nil
}

// signIn enters the signer into the round. Accounts: player, pool, and the
// fee account when the pool charges a price.
func (e *Engine) signIn(accounts []*Account) error {
	if err := requireAccounts(accounts, 2); err != nil {
		return err
	}
	player, poolAcc := accounts[0], accounts[1]

	if err := e.guard.RequireSigner(player); err != nil {
		return err
	}
	if err := e.guard.RequireState(poolAcc, state.PoolStateLen); err != nil {
		return err
	}

	pool, err := state.UnpackPoolState(poolAcc.Data)
	if err != nil {
		return err
	}

	idx := pool.FindPlayer(player.Key)
	switch {
	case idx >= 0 && pool.Players[idx].SignedIn:
		return progerr.New(progerr.CodeAlreadySignin, "%s already signed in this round", player.Key)
	case idx >= 0:
		if pool.Players[idx].TicketCount == ^uint16(0) {
			return progerr.New(progerr.CodeArithmeticOverflow, "ticket count for %s", player.Key)
		}
		pool.Players[idx].TicketCount++
		pool.Players[idx].SignedIn = true
	case len(pool.Players) >= state.MaxPlayers:
		return progerr.New(progerr.CodeTooManyPlayers, "pool holds %d players", len(pool.Players))
	default:
		pool.Players = append(pool.Players, state.PlayerRecord{
			AccountID:   player.Key,
			TicketCount: 1,
			SignedIn:    true,
		})
	}

	var fee *Account
	if pool.Price > 0 {
		if err := requireAccounts(accounts, 3); err != nil {
			return err
		}
		fee = accounts[2]
		if fee.Key != pool.FeeAccountID {
			return progerr.New(progerr.CodeInvalidFeeAccount,
				"got %s, pool pays %s", fee.Key, pool.FeeAccountID)
		}
		if player.Lamports < pool.Price {
			return progerr.New(progerr.CodeLowBalance,
				"%s holds %d, ticket costs %d", player.Key, player.Lamports, pool.Price)
		}
		acc, err := checkedAdd(pool.AwardAccumulator, pool.Price)
		if err != nil {
			return err
		}
		pool.AwardAccumulator = acc
	}

	poolBuf, err := pool.MarshalBinary()
	if err != nil {
		return err
	}
	if fee != nil {
		if err := e.bank.Transfer(player.Key, fee.Key, pool.Price); err != nil {
			return fmt.Errorf("ticket payment: %w", err)
		}
	}

	copy(poolAcc.Data, poolBuf)
	return nil
}

// adjustFund overwrites fund and price. Accounts: admin, pool.
func (e *Engine) adjustFund(accounts []*Account, ix instruction.AdjustFund) error {
	if err := requireAccounts(accounts, 2); err != nil {
		return err
	}
	admin, poolAcc := accounts[0], accounts[1]

	if err := e.guard.RequireAdmin(admin); err != nil {
		return err
	}
	if err := e.guard.RequireState(poolAcc, state.PoolStateLen); err != nil {
		return err
	}

	pool, err := state.UnpackPoolState(poolAcc.Data)
	if err != nil {
		return err
	}
	pool.Fund = ix.Fund
	pool.Price = ix.Price

	poolBuf, err := pool.MarshalBinary()
	if err != nil {
		return err
	}
	copy(poolAcc.Data, poolBuf)
	return nil
}

// roll draws a winner and appends it to the billboard. Accounts: admin,
// pool, billboard.
func (e *Engine) roll(accounts []*Account) error {
	if err := requireAccounts(accounts, 3); err != nil {
		return err
	}
	admin, poolAcc, billboardAcc := accounts[0], accounts[1], accounts[2]

	if err := e.guard.RequireAdmin(admin); err != nil {
		return err
	}
	if err := e.guard.RequireState(poolAcc, state.PoolStateLen); err != nil {
		return err
	}
	if err := e.guard.RequireState(billboardAcc, state.AwardLedgerLen); err != nil {
		return err
	}

	pool, err := state.UnpackPoolState(poolAcc.Data)
	if err != nil {
		return err
	}
	billboard, err := state.UnpackAwardLedger(billboardAcc.Data)
	if err != nil {
		return err
	}

	now := e.clock.UnixTimestamp()
	winner := PickWinner(pool.Players, now)
	if winner < 0 {
		e.logger.Debug("roll skipped, no tickets", "players", len(pool.Players), "clock", now)
		return nil
	}
	if billboardAcc.Key != pool.BillboardAccountID {
		return progerr.New(progerr.CodeInvalidAccountForReward,
			"pool posts to %s, got %s", pool.BillboardAccountID, billboardAcc.Key)
	}
	if billboard.Full() {
		return progerr.New(progerr.CodeAwardLedgerFull, "billboard holds %d entries", len(billboard.Entries))
	}
	amount, err := checkedAdd(pool.Fund, pool.AwardAccumulator)
	if err != nil {
		return err
	}

	total := TotalWeight(pool.Players)
	e.logger.Debug("draw",
		"clock", now,
		"total_weight", total,
		"draw_index", DrawIndex(now, total),
		"winner", pool.Players[winner].AccountID,
		"amount", amount,
	)

	billboard.Entries = append(billboard.Entries, state.AwardEntry{
		Winner:    pool.Players[winner].AccountID,
		Amount:    amount,
		Rewarded:  false,
		Timestamp: now,
	})
	pool.ResetRound()

	poolBuf, err := pool.MarshalBinary()
	if err != nil {
		return err
	}
	billboardBuf, err := billboard.MarshalBinary()
	if err != nil {
		return err
	}

	copy(poolAcc.Data, poolBuf)
	copy(billboardAcc.Data, billboardBuf)
	return nil
}

// reward pays every unrewarded entry, or only the payee's entries when a
// payee account is supplied. Accounts: admin, billboard, optional payee.
func (e *Engine) reward(accounts []*Account) error {
	if err := requireAccounts(accounts, 2); err != nil {
		return err
	}
	admin, billboardAcc := accounts[0], accounts[1]

	if err := e.guard.RequireAdmin(admin); err != nil {
		return err
	}
	if err := e.guard.RequireState(billboardAcc, state.AwardLedgerLen); err != nil {
		return err
	}

	billboard, err := state.UnpackAwardLedger(billboardAcc.Data)
	if err != nil {
		return err
	}

	var payee *solana.PublicKey
	if len(accounts) > 2 && accounts[2] != nil {
		payee = &accounts[2].Key
	}

	paid := 0
	var transferErr error
	for i := range billboard.Entries {
		entry := &billboard.Entries[i]
		if entry.Rewarded {
			continue
		}
		if payee != nil && entry.Winner != *payee {
			continue
		}
		if err := e.bank.Transfer(admin.Key, entry.Winner, entry.Amount); err != nil {
			transferErr = fmt.Errorf("reward entry %d to %s: %w", i, entry.Winner, err)
			break
		}
		entry.Rewarded = true
		paid++
		e.logger.Debug("entry rewarded", "index", i, "winner", entry.Winner, "amount", entry.Amount)
	}

	if paid > 0 {
		buf, err := billboard.MarshalBinary()
		if err != nil {
			return err
		}
		copy(billboardAcc.Data, buf)
	}
	return transferErr
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, progerr.New(progerr.CodeArithmeticOverflow, "%d + %d", a, b)
	}
	return sum, nil
}
