package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solongwallet/lottery/internal/progerr"
)

// Scenario is one scripted lottery run.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Clock is the initial clock reading.
	Clock int64 `yaml:"clock"`

	// Balances maps aliases to lamports airdropped before the first step.
	Balances map[string]uint64 `yaml:"balances,omitempty"`

	// Steps are submitted in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one submitted instruction.
type Step struct {
	Op    string `yaml:"op"`
	Actor string `yaml:"actor,omitempty"`
	// Clock, when set, pins the clock before this step.
	Clock *int64 `yaml:"clock,omitempty"`
	Fund  uint64 `yaml:"fund,omitempty"`
	Price uint64 `yaml:"price,omitempty"`
	// Payee restricts a reward step to one winner.
	Payee string `yaml:"payee,omitempty"`
	// Expect is "ok" (the default) or an error kind such as "AlreadySignin".
	Expect string `yaml:"expect,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	Type     string   `yaml:"type"`
	Account  string   `yaml:"account,omitempty"`
	Lamports *uint64  `yaml:"lamports,omitempty"`
	Aliases  []string `yaml:"aliases,omitempty"`
	Count    *int     `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpInitialize = "initialize"
	OpSignIn     = "signin"
	OpGM         = "gm"
	OpRoll       = "roll"
	OpReward     = "reward"
)

// Assertion types.
const (
	AssertBalance     = "balance"
	AssertPlayers     = "players"
	AssertWinners     = "winners"
	AssertPending     = "pending"
	AssertAccumulator = "accumulator"
)

// ExpectOK is the outcome of a successful step.
const ExpectOK = "ok"

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so that typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch step.Op {
		case OpInitialize, OpGM, OpRoll, OpReward:
		case OpSignIn:
			if step.Actor == "" {
				return fmt.Errorf("step %d: signin requires an actor", i+1)
			}
		default:
			return fmt.Errorf("step %d: unknown op %q", i+1, step.Op)
		}
		if step.Payee != "" && step.Op != OpReward {
			return fmt.Errorf("step %d: payee only applies to reward", i+1)
		}
		if step.Expect != "" && step.Expect != ExpectOK && !knownErrorKind(step.Expect) {
			return fmt.Errorf("step %d: unknown expected outcome %q", i+1, step.Expect)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i+1, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertBalance:
		if a.Account == "" || a.Lamports == nil {
			return fmt.Errorf("balance requires account and lamports")
		}
	case AssertAccumulator:
		if a.Lamports == nil {
			return fmt.Errorf("accumulator requires lamports")
		}
	case AssertPlayers, AssertWinners:
		if a.Aliases == nil {
			return fmt.Errorf("%s requires aliases", a.Type)
		}
	case AssertPending:
		if a.Count == nil {
			return fmt.Errorf("pending requires count")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func knownErrorKind(name string) bool {
	for c := progerr.CodeInvalidInstruction; c <= progerr.CodeAwardLedgerFull; c++ {
		if c.String() == name {
			return true
		}
	}
	return false
}

// aliases returns every alias the scenario mentions plus the fixed ones.
func (s *Scenario) aliases() []string {
	seen := map[string]bool{}
	var out []string
	add := func(a string) {
		if a != "" && !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}

	for _, fixed := range []string{AliasAdmin, AliasPool, AliasBillboard, AliasFee} {
		add(fixed)
	}
	for alias := range s.Balances {
		add(alias)
	}
	for _, step := range s.Steps {
		add(step.Actor)
		add(step.Payee)
	}
	for _, a := range s.Assertions {
		add(a.Account)
		for _, alias := range a.Aliases {
			add(alias)
		}
	}
	return out
}
