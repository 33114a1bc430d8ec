package lottery

import (
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"

	"github.com/solongwallet/lottery/internal/state"
)

func players(counts ...uint16) []state.PlayerRecord {
	out := make([]state.PlayerRecord, len(counts))
	for i, c := range counts {
		out[i] = state.PlayerRecord{AccountID: solana.PublicKey{byte(i + 1)}, TicketCount: c, SignedIn: true}
	}
	return out
}

func TestPickWinner(t *testing.T) {
	tests := []struct {
		name    string
		players []state.PlayerRecord
		clock   int64
		want    int
	}{
		{"no players", nil, 10, -1},
		{"zero tickets", players(0, 0), 10, -1},
		{"single player", players(1), 123456, 0},
		{"weighted second", players(2, 3), 7, 1},
		{"weighted first boundary", players(2, 3), 6, 0},
		{"last ticket", players(2, 3), 4, 1},
		{"zero weight skipped", players(1, 0, 1), 1, 2},
		{"clock zero", players(1, 1, 1), 0, 0},
		{"negative clock reinterpreted", players(1, 1), -1, 1},
		{"max clock", players(1, 1, 1), math.MaxInt64, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PickWinner(tt.players, tt.clock))
		})
	}
}

func TestDrawIndex(t *testing.T) {
	assert.Equal(t, uint64(3), DrawIndex(7, 5))
	assert.Equal(t, uint64(1), DrawIndex(0, 5))
	assert.Equal(t, uint64(5), DrawIndex(4, 5))
	// -1 as uint64 is MaxUint64, and MaxUint64 mod 2 = 1.
	assert.Equal(t, uint64(2), DrawIndex(-1, 2))
}

func TestTotalWeight(t *testing.T) {
	assert.Equal(t, uint64(0), TotalWeight(nil))
	assert.Equal(t, uint64(6), TotalWeight(players(1, 2, 3)))

	full := make([]state.PlayerRecord, state.MaxPlayers)
	for i := range full {
		full[i].TicketCount = math.MaxUint16
	}
	assert.Equal(t, uint64(state.MaxPlayers)*math.MaxUint16, TotalWeight(full))
}
