package cli

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/solongwallet/lottery/internal/config"
	"github.com/solongwallet/lottery/internal/ledger"
)

// solDecimals is the display exponent: 1 SOL = 10^9 lamports.
const solDecimals = 9

// loadConfig reads the config file and environment, then applies flag
// overrides and re-validates.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{opts.Database, &cfg.Database},
		{opts.Pool, &cfg.Pool},
		{opts.Billboard, &cfg.Billboard},
		{opts.Fee, &cfg.Fee},
	}
	changed := false
	for _, o := range overrides {
		if o.flag != "" {
			*o.dst = o.flag
			changed = true
		}
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger returns a text logger on w: Debug with --verbose, Warn otherwise.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// session bundles what a ledger-backed command needs.
type session struct {
	cfg    *config.Config
	ledger *ledger.Ledger
	out    *OutputFormatter
	logger *slog.Logger
}

func (s *session) Close() error {
	return s.ledger.Close()
}

// openSession loads configuration and opens the ledger. Failures are
// reported through the formatter and returned as command errors.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	out := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, out.Fail(ExitCommandError, CodeConfig, "failed to load config", err)
	}

	logger := newLogger(opts, cmd.ErrOrStderr())
	ledgerOpts := []ledger.Option{ledger.WithLogger(logger)}
	if cfg.Clock == config.ClockLogical {
		ledgerOpts = append(ledgerOpts, ledger.WithLogicalClock())
	}

	l, err := ledger.Open(cfg.Database, cfg.ProgramKey(), cfg.AdminKey(), ledgerOpts...)
	if err != nil {
		return nil, out.Fail(ExitCommandError, CodeLedger, "failed to open ledger", err)
	}
	out.VerboseLog("ledger %s (program %s, admin %s)", cfg.Database, cfg.ProgramKey(), cfg.AdminKey())

	return &session{cfg: cfg, ledger: l, out: out, logger: logger}, nil
}

// configuredKey returns the pool, billboard or fee account from cfg.
func configuredKey(cfg *config.Config, name string) solana.PublicKey {
	switch name {
	case "pool":
		return cfg.PoolKey()
	case "billboard":
		return cfg.BillboardKey()
	case "fee":
		return cfg.FeeKey()
	}
	return solana.PublicKey{}
}

// requireAccounts fails on the first named account that is not configured.
func requireAccounts(cfg *config.Config, names ...string) error {
	for _, name := range names {
		if configuredKey(cfg, name).IsZero() {
			return fmt.Errorf("%s account is not configured (set it in the config file or pass --%s)", name, name)
		}
	}
	return nil
}

// loadKeypair reads a keygen JSON keypair file.
func loadKeypair(path string) (solana.PrivateKey, error) {
	if path == "" {
		return nil, fmt.Errorf("no keypair file given")
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keypair %s: %w", path, err)
	}
	return key, nil
}

// parseKey decodes a base58 public key argument.
func parseKey(name, s string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return key, nil
}

// formatSOL renders lamports as SOL without trailing zeros.
func formatSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -solDecimals).String()
}
