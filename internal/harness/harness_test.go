package harness

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Scenario {
	t.Helper()
	s, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return s
}

func TestRun_RecordsOneEventPerStep(t *testing.T) {
	s := mustParse(t, `
name: events
description: d
clock: 5
steps:
  - op: initialize
    fund: 9
  - op: signin
    actor: alice
  - op: signin
    actor: bob
    clock: 6
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	require.Len(t, result.Trace, 3)

	last := result.Trace[2]
	assert.Equal(t, 3, last.Step)
	assert.Equal(t, "bob", last.Actor)
	assert.Equal(t, int64(6), last.Clock)
	assert.Equal(t, ExpectOK, last.Result)
	assert.Equal(t, uint64(9), last.Pool.Fund)
	assert.Equal(t, []PlayerView{
		{Account: "alice", Tickets: 1, SignedIn: true},
		{Account: "bob", Tickets: 1, SignedIn: true},
	}, last.Pool.Players)
	assert.Empty(t, last.Billboard)
}

func TestRun_UnexpectedOutcomeFails(t *testing.T) {
	s := mustParse(t, `
name: mismatch
description: d
steps:
  - op: initialize
  - op: roll
    actor: mallory
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "step 2 (roll by mallory): expected ok, got InvalidPermission", result.Errors[0])
	assert.Equal(t, "InvalidPermission", result.Trace[1].Result)
}

func TestRun_ExpectedFailurePasses(t *testing.T) {
	s := mustParse(t, `
name: expected
description: d
steps:
  - op: gm
    actor: alice
    fund: 1
    expect: InvalidPermission
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, uint64(0), result.Trace[0].Pool.Fund)
}

func TestRun_FailedAssertions(t *testing.T) {
	s := mustParse(t, `
name: assertions
description: d
clock: 1
balances:
  admin: 100
steps:
  - op: initialize
    fund: 10
  - op: signin
    actor: alice
assertions:
  - type: balance
    account: admin
    lamports: 99
  - type: players
    aliases: [bob]
  - type: winners
    aliases: [alice]
  - type: pending
    count: 2
  - type: accumulator
    lamports: 3
  - type: balance
    account: nobody
    lamports: 0
`)
	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"assertion 1 (balance): admin holds 100 lamports, want 99",
		"assertion 2 (players): players are [alice], want [bob]",
		"assertion 3 (winners): winners are [], want [alice]",
		"assertion 4 (pending): 0 entries pending, want 2",
		"assertion 5 (accumulator): accumulator is 0, want 3",
	}, result.Errors)
}

func TestRun_Deterministic(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/paid-tickets.yaml")
	require.NoError(t, err)

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	a, err := TraceJSON(s.Name, first)
	require.NoError(t, err)
	b, err := TraceJSON(s.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestHarness_NameOfFallsBackToBase58(t *testing.T) {
	h := &Harness{keys: map[string]solana.PrivateKey{}, names: map[solana.PublicKey]string{}}
	k := h.key("alice")
	assert.Equal(t, "alice", h.nameOf(k))

	var zero solana.PublicKey
	assert.Equal(t, "11111111111111111111111111111111", h.nameOf(zero))
}
