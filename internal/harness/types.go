package harness

// TraceEvent records one submitted step and the lottery state after it.
type TraceEvent struct {
	Step      int         `json:"step"`
	Op        string      `json:"op"`
	Actor     string      `json:"actor"`
	Clock     int64       `json:"clock"`
	Result    string      `json:"result"` // "ok" or the error kind
	Pool      PoolView    `json:"pool"`
	Billboard []EntryView `json:"billboard"`
}

// PoolView is the alias-keyed rendering of a PoolState.
type PoolView struct {
	Price       uint64       `json:"price"`
	Fund        uint64       `json:"fund"`
	Accumulator uint64       `json:"accumulator"`
	Players     []PlayerView `json:"players"`
}

// PlayerView is one pool entrant.
type PlayerView struct {
	Account  string `json:"account"`
	Tickets  uint16 `json:"tickets"`
	SignedIn bool   `json:"signed_in"`
}

// EntryView is one billboard entry.
type EntryView struct {
	Winner    string `json:"winner"`
	Amount    uint64 `json:"amount"`
	Rewarded  bool   `json:"rewarded"`
	Timestamp int64  `json:"timestamp"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step met its expectation and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

func (e TraceEvent) canonical() map[string]any {
	players := make([]any, len(e.Pool.Players))
	for i, p := range e.Pool.Players {
		players[i] = map[string]any{
			"account":   p.Account,
			"tickets":   int(p.Tickets),
			"signed_in": p.SignedIn,
		}
	}
	entries := make([]any, len(e.Billboard))
	for i, b := range e.Billboard {
		entries[i] = map[string]any{
			"winner":    b.Winner,
			"amount":    b.Amount,
			"rewarded":  b.Rewarded,
			"timestamp": b.Timestamp,
		}
	}
	return map[string]any{
		"step":   e.Step,
		"op":     e.Op,
		"actor":  e.Actor,
		"clock":  e.Clock,
		"result": e.Result,
		"pool": map[string]any{
			"price":       e.Pool.Price,
			"fund":        e.Pool.Fund,
			"accumulator": e.Pool.Accumulator,
			"players":     players,
		},
		"billboard": entries,
	}
}
