package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/solongwallet/lottery/internal/scheduler"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	*RootOptions
	Keypair    string
	RollCron   string
	RewardCron string
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Roll and reward on a cron schedule",
		Long: `Submit Roll and Reward automatically on cron schedules until interrupted.

Cron specs take a leading seconds field. The schedules and the admin
keypair default to roll_cron, reward_cron and admin_keypair from the config.

Example:
  lottery schedule --roll "0 0 * * * *" --reward "0 5 * * * *" --keypair admin.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSchedule(ctx, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Keypair, "keypair", "k", "", "admin keypair file (overrides config)")
	cmd.Flags().StringVar(&opts.RollCron, "roll", "", "roll schedule (overrides config)")
	cmd.Flags().StringVar(&opts.RewardCron, "reward", "", "reward schedule (overrides config)")

	return cmd
}

// runSchedule runs until ctx is cancelled, then waits for running tasks.
func runSchedule(ctx context.Context, opts *ScheduleOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	keypair := firstNonEmpty(opts.Keypair, s.cfg.AdminKeypair)
	admin, err := loadKeypair(keypair)
	if err != nil {
		return s.out.Fail(ExitCommandError, CodeKeypair, "failed to load admin keypair", err)
	}
	if err := requireAccounts(s.cfg, "pool", "billboard"); err != nil {
		return s.out.Fail(ExitCommandError, CodeInput, "invalid schedule request", err)
	}

	sched := scheduler.New(s.ledger, admin, scheduler.Targets{
		ProgramID: s.cfg.ProgramKey(),
		Pool:      s.cfg.PoolKey(),
		Billboard: s.cfg.BillboardKey(),
	}, scheduler.WithLogger(s.logger))

	rollCron := firstNonEmpty(opts.RollCron, s.cfg.RollCron)
	rewardCron := firstNonEmpty(opts.RewardCron, s.cfg.RewardCron)
	if err := sched.Register(rollCron, rewardCron); err != nil {
		return s.out.Fail(ExitCommandError, CodeInput, "invalid schedule", err)
	}

	sched.Start(ctx)
	s.out.VerboseLog("scheduler started (roll %q, reward %q)", rollCron, rewardCron)

	<-ctx.Done()
	<-sched.Stop().Done()

	return s.out.Success("Scheduler stopped")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
