package lottery

import (
	"github.com/solongwallet/lottery/internal/state"
)

// TotalWeight sums ticket counts. MaxPlayers × MaxUint16 fits comfortably in
// a uint64, so the sum cannot overflow.
func TotalWeight(players []state.PlayerRecord) uint64 {
	var total uint64
	for _, p := range players {
		total += uint64(p.TicketCount)
	}
	return total
}

// DrawIndex maps a clock value onto [1, total]. total must be non-zero.
func DrawIndex(clock int64, total uint64) uint64 {
	return uint64(clock)%total + 1
}

// PickWinner returns the index of the first player whose running ticket sum
// reaches the draw index for clock, or -1 when no tickets are held.
func PickWinner(players []state.PlayerRecord, clock int64) int {
	total := TotalWeight(players)
	if total == 0 {
		return -1
	}

	l := DrawIndex(clock, total)
	var sum uint64
	for i, p := range players {
		sum += uint64(p.TicketCount)
		if sum >= l {
			return i
		}
	}
	// Unreachable: the final running sum equals total and l <= total.
	return len(players) - 1
}
