package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: demo
description: "demo scenario"
clock: 42
balances:
  admin: 10
steps:
  - op: initialize
    fund: 5
    price: 1
  - op: signin
    actor: alice
    clock: 50
  - op: reward
    payee: alice
    expect: InsufficientFunds
assertions:
  - type: balance
    account: alice
    lamports: 0
  - type: pending
    count: 1
`))
	require.NoError(t, err)

	assert.Equal(t, "demo", s.Name)
	assert.Equal(t, int64(42), s.Clock)
	assert.Equal(t, map[string]uint64{"admin": 10}, s.Balances)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, uint64(5), s.Steps[0].Fund)
	assert.Equal(t, uint64(1), s.Steps[0].Price)
	require.NotNil(t, s.Steps[1].Clock)
	assert.Equal(t, int64(50), *s.Steps[1].Clock)
	assert.Equal(t, "InsufficientFunds", s.Steps[2].Expect)
	require.Len(t, s.Assertions, 2)
	assert.Equal(t, 1, *s.Assertions[1].Count)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: d\nstep: []\n",
			want: "field step not found",
		},
		{
			name: "missing name",
			yaml: "description: d\nsteps: [{op: roll}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nsteps: [{op: roll}]\n",
			want: "description is required",
		},
		{
			name: "no steps",
			yaml: "name: x\ndescription: d\n",
			want: "steps list is required",
		},
		{
			name: "unknown op",
			yaml: "name: x\ndescription: d\nsteps: [{op: burn}]\n",
			want: `unknown op "burn"`,
		},
		{
			name: "signin without actor",
			yaml: "name: x\ndescription: d\nsteps: [{op: signin}]\n",
			want: "signin requires an actor",
		},
		{
			name: "payee outside reward",
			yaml: "name: x\ndescription: d\nsteps: [{op: roll, payee: alice}]\n",
			want: "payee only applies to reward",
		},
		{
			name: "unknown expectation",
			yaml: "name: x\ndescription: d\nsteps: [{op: roll, expect: Boom}]\n",
			want: `unknown expected outcome "Boom"`,
		},
		{
			name: "balance without lamports",
			yaml: "name: x\ndescription: d\nsteps: [{op: roll}]\nassertions: [{type: balance, account: a}]\n",
			want: "balance requires account and lamports",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: d\nsteps: [{op: roll}]\nassertions: [{type: vibes}]\n",
			want: `unknown assertion type "vibes"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: f\ndescription: d\nsteps: [{op: roll}]\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "f", s.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestScenario_AliasesIncludeFixedAccounts(t *testing.T) {
	s := &Scenario{
		Balances:   map[string]uint64{"alice": 1},
		Steps:      []Step{{Op: OpSignIn, Actor: "bob"}, {Op: OpReward, Payee: "carol"}},
		Assertions: []Assertion{{Type: AssertWinners, Aliases: []string{"dave", "bob"}}},
	}
	assert.Equal(t,
		[]string{"admin", "pool", "billboard", "fee", "alice", "bob", "carol", "dave"},
		s.aliases())
}
