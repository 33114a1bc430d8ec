package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/gagliardetto/solana-go"

	"github.com/solongwallet/lottery/internal/instruction"
	"github.com/solongwallet/lottery/internal/ledger"
	"github.com/solongwallet/lottery/internal/progerr"
	"github.com/solongwallet/lottery/internal/state"
	"github.com/solongwallet/lottery/internal/testutil"
)

// Fixed aliases. Every scenario has a program, an administrator, a pool,
// a billboard and a fee account.
const (
	AliasProgram   = "program"
	AliasAdmin     = "admin"
	AliasPool      = "pool"
	AliasBillboard = "billboard"
	AliasFee       = "fee"
)

// Harness is the scenario execution engine. It owns one in-memory ledger
// and the alias table for a single scenario run.
type Harness struct {
	ledger *ledger.Ledger
	clock  *testutil.Clock
	keys   map[string]solana.PrivateKey
	names  map[solana.PublicKey]string
	logger *slog.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger routes ledger and engine logs to logger. Default: discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory ledger:
//  1. Deploy the pool and billboard accounts owned by the program
//  2. Airdrop the scenario balances
//  3. Submit each step, signed by its actor, and record a trace event
//  4. Evaluate assertions against the final ledger
//
// A step whose outcome differs from its expectation fails the result but
// does not stop the run. Only ledger faults return an error.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		clock:  testutil.NewClock(scenario.Clock),
		keys:   make(map[string]solana.PrivateKey),
		names:  make(map[solana.PublicKey]string),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.alias(AliasProgram)
	for _, alias := range scenario.aliases() {
		h.alias(alias)
	}

	l, err := ledger.Open(":memory:", h.key(AliasProgram), h.key(AliasAdmin),
		ledger.WithClock(h.clock),
		ledger.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory ledger: %w", err)
	}
	defer l.Close()
	h.ledger = l

	ctx := context.Background()
	if err := h.setup(ctx, scenario); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i+1, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	for _, msg := range h.evaluateAssertions(ctx, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// alias registers name and returns its keypair.
func (h *Harness) alias(name string) solana.PrivateKey {
	if k, ok := h.keys[name]; ok {
		return k
	}
	k := testutil.Keypair(name)
	h.keys[name] = k
	h.names[k.PublicKey()] = name
	return k
}

func (h *Harness) key(name string) solana.PublicKey {
	return h.alias(name).PublicKey()
}

// nameOf renders key as its alias, falling back to base58.
func (h *Harness) nameOf(key solana.PublicKey) string {
	if name, ok := h.names[key]; ok {
		return name
	}
	return key.String()
}

func (h *Harness) setup(ctx context.Context, scenario *Scenario) error {
	program := h.key(AliasProgram)
	if err := h.ledger.CreateAccount(ctx, h.key(AliasPool), program, state.PoolStateLen, 0); err != nil {
		return err
	}
	if err := h.ledger.CreateAccount(ctx, h.key(AliasBillboard), program, state.AwardLedgerLen, 0); err != nil {
		return err
	}

	aliases := make([]string, 0, len(scenario.Balances))
	for alias := range scenario.Balances {
		aliases = append(aliases, alias)
	}
	slices.Sort(aliases)
	for _, alias := range aliases {
		if _, err := h.ledger.Airdrop(ctx, h.key(alias), scenario.Balances[alias]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, n int, step Step, result *Result) error {
	actor := step.Actor
	if actor == "" {
		actor = AliasAdmin
	}
	if step.Clock != nil {
		h.clock.Set(*step.Clock)
	}

	ix := h.buildInstruction(step, h.key(actor))
	tx, err := ledger.SignInstruction(ix, h.alias(actor))
	if err != nil {
		return err
	}

	receipt, err := h.ledger.Submit(ctx, tx)
	outcome := ExpectOK
	clock := h.clock.UnixTimestamp()
	if err != nil {
		code, ok := progerr.CodeOf(err)
		if receipt == nil || !ok {
			return err
		}
		outcome = code.String()
	}
	if receipt != nil {
		clock = receipt.Clock
	}

	want := step.Expect
	if want == "" {
		want = ExpectOK
	}
	if outcome != want {
		result.AddError(fmt.Sprintf("step %d (%s by %s): expected %s, got %s", n, step.Op, actor, want, outcome))
	}

	event := TraceEvent{
		Step:   n,
		Op:     step.Op,
		Actor:  actor,
		Clock:  clock,
		Result: outcome,
	}
	if err := h.snapshot(ctx, &event); err != nil {
		return err
	}
	result.Trace = append(result.Trace, event)
	return nil
}

func (h *Harness) buildInstruction(step Step, signer solana.PublicKey) solana.Instruction {
	program := h.key(AliasProgram)
	pool := h.key(AliasPool)
	billboard := h.key(AliasBillboard)
	fee := h.key(AliasFee)

	switch step.Op {
	case OpInitialize:
		return instruction.NewInitializeInstruction(program, signer, pool, billboard, fee, step.Fund, step.Price)
	case OpSignIn:
		return instruction.NewSignInInstruction(program, signer, pool, fee)
	case OpGM:
		return instruction.NewAdjustFundInstruction(program, signer, pool, step.Fund, step.Price)
	case OpRoll:
		return instruction.NewRollInstruction(program, signer, pool, billboard)
	default:
		var payee solana.PublicKey
		if step.Payee != "" {
			payee = h.key(step.Payee)
		}
		return instruction.NewRewardInstruction(program, signer, billboard, payee)
	}
}

// snapshot fills the pool and billboard views of event.
func (h *Harness) snapshot(ctx context.Context, event *TraceEvent) error {
	pool, err := h.pool(ctx)
	if err != nil {
		return err
	}
	board, err := h.billboard(ctx)
	if err != nil {
		return err
	}

	event.Pool = PoolView{
		Price:       pool.Price,
		Fund:        pool.Fund,
		Accumulator: pool.AwardAccumulator,
		Players:     make([]PlayerView, len(pool.Players)),
	}
	for i, p := range pool.Players {
		event.Pool.Players[i] = PlayerView{
			Account:  h.nameOf(p.AccountID),
			Tickets:  p.TicketCount,
			SignedIn: p.SignedIn,
		}
	}

	event.Billboard = make([]EntryView, len(board.Entries))
	for i, e := range board.Entries {
		event.Billboard[i] = EntryView{
			Winner:    h.nameOf(e.Winner),
			Amount:    e.Amount,
			Rewarded:  e.Rewarded,
			Timestamp: e.Timestamp,
		}
	}
	return nil
}

func (h *Harness) pool(ctx context.Context) (*state.PoolState, error) {
	acc, err := h.ledger.Account(ctx, h.key(AliasPool))
	if err != nil {
		return nil, err
	}
	return state.UnpackPoolState(acc.Data)
}

func (h *Harness) billboard(ctx context.Context) (*state.AwardLedger, error) {
	acc, err := h.ledger.Account(ctx, h.key(AliasBillboard))
	if err != nil {
		return nil, err
	}
	return state.UnpackAwardLedger(acc.Data)
}

// balance returns the lamports held by alias. Accounts the ledger never
// stored hold nothing.
func (h *Harness) balance(ctx context.Context, alias string) (uint64, error) {
	acc, err := h.ledger.Account(ctx, h.key(alias))
	if errors.Is(err, ledger.ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acc.Lamports, nil
}
