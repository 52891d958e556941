package metrics

import (
	"context"
	"time"

	"github.com/Proton-105/lovemenu-bot/internal/state"
)

// trackedStates always get a sample, zero included, so dashboards keep the series.
var trackedStates = []state.State{
	state.StateCheckoutComment,
	state.StateCustomText,
	state.StateSpecialOrderComment,
	state.StateAddItemTitle,
	state.StateSpecialMenuConfirm,
	state.StateDebtAmount,
}

// StateCollector periodically gathers conversation state counts and emits gauge metrics.
type StateCollector struct {
	fsm      state.StateMachine
	interval time.Duration
}

// NewStateCollector builds a metrics collector bound to the provided state machine.
func NewStateCollector(fsm state.StateMachine) *StateCollector {
	return &StateCollector{fsm: fsm, interval: 10 * time.Second}
}

// Run polls the state machine until ctx is cancelled.
func (c *StateCollector) Run(ctx context.Context) {
	if c == nil || c.fsm == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		_ = c.collect(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *StateCollector) collect(ctx context.Context) error {
	states, err := c.fsm.GetAllStates(ctx)
	if err != nil {
		return err
	}

	users := make(map[int64]struct{}, len(states))
	stateCounts := make(map[string]int, len(states))
	for _, st := range states {
		if st == nil || st.Step == nil {
			continue
		}
		users[st.UserID] = struct{}{}
		stateCounts[string(st.State())]++
	}

	SetActiveUsers(len(users))
	usersByState.Reset()

	for _, tracked := range trackedStates {
		label := string(tracked)
		SetUsersByState(label, stateCounts[label])
		delete(stateCounts, label)
	}

	for label, count := range stateCounts {
		SetUsersByState(label, count)
	}

	return nil
}
