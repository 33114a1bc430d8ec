// Package config loads the lottery host configuration.
//
// Configuration is read from a YAML or TOML file (chosen by extension),
// then overridden from LOTTERY_* environment variables, then validated
// against an embedded CUE schema.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

const (
	ClockSystem  = "system"
	ClockLogical = "logical"
)

// Config is the host configuration.
type Config struct {
	// ProgramID is the base58 id the lottery program is deployed under.
	ProgramID string `yaml:"program_id" toml:"program_id" json:"program_id" env:"LOTTERY_PROGRAM_ID"`
	// Admin is the base58 administrator identity enforced by the program.
	Admin string `yaml:"admin" toml:"admin" json:"admin" env:"LOTTERY_ADMIN"`
	// AdminKeypair is a keygen JSON file holding the admin's private key,
	// used by the scheduler to sign Roll and Reward.
	AdminKeypair string `yaml:"admin_keypair" toml:"admin_keypair" json:"admin_keypair" env:"LOTTERY_ADMIN_KEYPAIR"`
	Database     string `yaml:"database" toml:"database" json:"database" env:"LOTTERY_DB"`
	Clock        string `yaml:"clock" toml:"clock" json:"clock" env:"LOTTERY_CLOCK"`

	Pool      string `yaml:"pool" toml:"pool" json:"pool" env:"LOTTERY_POOL"`
	Billboard string `yaml:"billboard" toml:"billboard" json:"billboard" env:"LOTTERY_BILLBOARD"`
	Fee       string `yaml:"fee" toml:"fee" json:"fee" env:"LOTTERY_FEE"`

	RollCron   string `yaml:"roll_cron" toml:"roll_cron" json:"roll_cron" env:"LOTTERY_ROLL_CRON"`
	RewardCron string `yaml:"reward_cron" toml:"reward_cron" json:"reward_cron" env:"LOTTERY_REWARD_CRON"`
}

// Default returns a configuration with defaults applied and no identities.
func Default() *Config {
	return &Config{
		Database: "lottery.db",
		Clock:    ClockSystem,
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("config %s: unsupported extension %q (want .yaml, .yml or .toml)", path, ext)
	}
	return nil
}

// Validate checks c against the embedded schema and decodes every key.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(c))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// The schema checks the alphabet; decoding checks the length.
	for name, s := range map[string]string{
		"program_id": c.ProgramID,
		"admin":      c.Admin,
		"pool":       c.Pool,
		"billboard":  c.Billboard,
		"fee":        c.Fee,
	} {
		if s == "" {
			continue
		}
		if _, err := solana.PublicKeyFromBase58(s); err != nil {
			return fmt.Errorf("invalid config: %s: %w", name, err)
		}
	}
	return nil
}

// ProgramKey returns the decoded program id.
func (c *Config) ProgramKey() solana.PublicKey { return decodeKey(c.ProgramID) }

// AdminKey returns the decoded administrator identity.
func (c *Config) AdminKey() solana.PublicKey { return decodeKey(c.Admin) }

// PoolKey returns the decoded pool account, or the zero key if unset.
func (c *Config) PoolKey() solana.PublicKey { return decodeKey(c.Pool) }

// BillboardKey returns the decoded billboard account, or the zero key if unset.
func (c *Config) BillboardKey() solana.PublicKey { return decodeKey(c.Billboard) }

// FeeKey returns the decoded fee account, or the zero key if unset.
func (c *Config) FeeKey() solana.PublicKey { return decodeKey(c.Fee) }

// decodeKey returns the zero key for anything Validate would reject.
func decodeKey(s string) solana.PublicKey {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}
	}
	return key
}
