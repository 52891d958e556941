package state

import (
	"encoding/json"
	"fmt"
	"time"
)

// State names a conversation step. The idle state is represented by the
// absence of a stored step.
type State string

// StateIdle indicates that no wizard of a family is in progress.
const StateIdle State = "idle"

// Family groups the steps of one wizard. Each user has one slot per family.
type Family string

const (
	FamilyOrder       Family = "order"
	FamilyItem        Family = "item"
	FamilySpecialMenu Family = "special_menu"
	FamilyDebt        Family = "debt"
)

// Families lists every family in dispatch priority order: admin wizards first.
var Families = []Family{FamilyItem, FamilySpecialMenu, FamilyDebt, FamilyOrder}

// Step is a single conversation step carrying exactly the data collected so far.
// The set of steps is closed to this package.
type Step interface {
	State() State
	Family() Family
	step()
}

// UserState captures the pending step of one family for a Telegram user.
type UserState struct {
	UserID    int64
	Family    Family
	Step      Step
	UpdatedAt time.Time
}

// State returns the name of the pending step or StateIdle.
func (s *UserState) State() State {
	if s == nil || s.Step == nil {
		return StateIdle
	}
	return s.Step.State()
}

type envelope struct {
	UserID    int64           `json:"user_id"`
	Family    Family          `json:"family"`
	State     State           `json:"state"`
	Data      json.RawMessage `json:"data,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// MarshalJSON stores the step name next to its payload.
func (s UserState) MarshalJSON() ([]byte, error) {
	env := envelope{
		UserID:    s.UserID,
		Family:    s.Family,
		State:     StateIdle,
		UpdatedAt: s.UpdatedAt,
	}

	if s.Step != nil {
		data, err := json.Marshal(s.Step)
		if err != nil {
			return nil, fmt.Errorf("encode step %s: %w", s.Step.State(), err)
		}
		env.State = s.Step.State()
		env.Data = data
	}

	return json.Marshal(env)
}

// UnmarshalJSON decodes the payload into the concrete step type registered for the stored name.
func (s *UserState) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	s.UserID = env.UserID
	s.Family = env.Family
	s.UpdatedAt = env.UpdatedAt
	s.Step = nil

	if env.State == StateIdle || env.State == "" {
		return nil
	}

	decode, ok := decoders[env.State]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStep, env.State)
	}

	step, err := decode(env.Data)
	if err != nil {
		return fmt.Errorf("decode step %s: %w", env.State, err)
	}
	s.Step = step

	return nil
}

var decoders = map[State]func(json.RawMessage) (Step, error){}

func register[T Step](s State) {
	decoders[s] = func(raw json.RawMessage) (Step, error) {
		var step T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &step); err != nil {
				return nil, err
			}
		}
		return step, nil
	}
}
