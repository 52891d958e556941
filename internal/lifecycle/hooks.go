package lifecycle

import "context"

// Phase orders shutdown hooks. Lower phases run first.
type Phase int

const (
	// PhaseIntake stops accepting updates and HTTP requests.
	PhaseIntake Phase = iota
	// PhaseWorkers drains background jobs and loops.
	PhaseWorkers
	// PhaseStores closes connections and flushes logs.
	PhaseStores
)

func (p Phase) String() string {
	switch p {
	case PhaseIntake:
		return "intake"
	case PhaseWorkers:
		return "workers"
	case PhaseStores:
		return "stores"
	default:
		return "unknown"
	}
}

// Hook describes a named shutdown hook.
type Hook struct {
	Name  string
	Phase Phase
	Fn    func(ctx context.Context) error
}
