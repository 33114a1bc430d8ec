// Package scheduler submits Roll and Reward on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/robfig/cron/v3"

	"github.com/solongwallet/lottery/internal/instruction"
	"github.com/solongwallet/lottery/internal/ledger"
)

// Submitter executes signed transactions. *ledger.Ledger implements it.
type Submitter interface {
	Submit(ctx context.Context, tx *ledger.Tx) (*ledger.Receipt, error)
}

// Targets names the accounts the scheduled instructions operate on.
type Targets struct {
	ProgramID solana.PublicKey
	Pool      solana.PublicKey
	Billboard solana.PublicKey
}

// Scheduler manages the Roll and Reward cron tasks.
type Scheduler struct {
	cron    *cron.Cron
	host    Submitter
	admin   solana.PrivateKey
	targets Targets
	logger  *slog.Logger

	roll   cron.Schedule
	reward cron.Schedule
	cancel context.CancelFunc
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the task logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

var parser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// New creates a Scheduler that signs with admin.
func New(host Submitter, admin solana.PrivateKey, targets Targets, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron:    cron.New(cron.WithParser(parser)),
		host:    host,
		admin:   admin,
		targets: targets,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register sets the Roll and Reward schedules. Cron specs take a leading
// seconds field. An empty spec skips that task; at least one must be set.
func (s *Scheduler) Register(rollCron, rewardCron string) error {
	if rollCron == "" && rewardCron == "" {
		return errors.New("no roll or reward schedule configured")
	}
	if rollCron != "" {
		sched, err := parser.Parse(rollCron)
		if err != nil {
			return fmt.Errorf("register roll task: %w", err)
		}
		s.roll = sched
	}
	if rewardCron != "" {
		sched, err := parser.Parse(rewardCron)
		if err != nil {
			return fmt.Errorf("register reward task: %w", err)
		}
		s.reward = sched
	}
	return nil
}

// Start schedules the registered tasks and starts the cron scheduler. Tasks
// submit under a context derived from ctx that Stop cancels.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	if s.roll != nil {
		s.cron.Schedule(s.roll, cron.FuncJob(func() { s.run(ctx, "roll", s.RollNow) }))
	}
	if s.reward != nil {
		s.cron.Schedule(s.reward, cron.FuncJob(func() { s.run(ctx, "reward", s.RewardNow) }))
	}
	s.cron.Start()
	s.logger.Info("scheduler started", "tasks", len(s.cron.Entries()))
}

// Stop cancels in-flight submissions, stops the scheduler and returns a
// context that is done once running tasks finish.
func (s *Scheduler) Stop() context.Context {
	if s.cancel != nil {
		s.cancel()
	}
	ctx := s.cron.Stop()
	s.logger.Info("scheduler stopped")
	return ctx
}

// RollNow submits a Roll immediately.
func (s *Scheduler) RollNow(ctx context.Context) (*ledger.Receipt, error) {
	ix := instruction.NewRollInstruction(s.targets.ProgramID, s.admin.PublicKey(), s.targets.Pool, s.targets.Billboard)
	return s.submit(ctx, ix)
}

// RewardNow submits a Reward for every pending entry immediately.
func (s *Scheduler) RewardNow(ctx context.Context) (*ledger.Receipt, error) {
	ix := instruction.NewRewardInstruction(s.targets.ProgramID, s.admin.PublicKey(), s.targets.Billboard, solana.PublicKey{})
	return s.submit(ctx, ix)
}

func (s *Scheduler) submit(ctx context.Context, ix solana.Instruction) (*ledger.Receipt, error) {
	tx, err := ledger.SignInstruction(ix, s.admin)
	if err != nil {
		return nil, err
	}
	return s.host.Submit(ctx, tx)
}

func (s *Scheduler) run(ctx context.Context, task string, fn func(context.Context) (*ledger.Receipt, error)) {
	receipt, err := fn(ctx)
	switch {
	case err != nil && receipt != nil:
		s.logger.Warn("scheduled task failed", "task", task, "seq", receipt.Seq, "error", err)
	case err != nil:
		s.logger.Error("scheduled task rejected", "task", task, "error", err)
	default:
		s.logger.Info("scheduled task done", "task", task, "seq", receipt.Seq, "clock", receipt.Clock)
	}
}
