package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_Scenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario errors: %v", result.Errors)
		})
	}
}

func TestTraceJSON_Shape(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace, TraceEvent{
		Step:   1,
		Op:     OpRoll,
		Actor:  "admin",
		Clock:  7,
		Result: ExpectOK,
		Pool:   PoolView{Fund: 5, Players: []PlayerView{}},
		Billboard: []EntryView{
			{Winner: "bob", Amount: 5, Timestamp: 7},
		},
	})

	got, err := TraceJSON("shape", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario":"shape","trace":[{"actor":"admin","billboard":[{"amount":5,"rewarded":false,"timestamp":7,"winner":"bob"}],"clock":7,"op":"roll","pool":{"accumulator":0,"fund":5,"players":[],"price":0},"result":"ok","step":1}]}`,
		string(got))
}

func TestAssertGolden_ExistingResult(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/empty-roll.yaml")
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, s.Name, result))
}
