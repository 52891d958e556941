package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	userLockKeyPattern = "user:lock:%d"
	lockTTL            = 5 * time.Second
)

var (
	// ErrInvalidTransition indicates that a requested transition is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrStateNotFound indicates that no state is stored for the user.
	ErrStateNotFound = errors.New("user state not found")
	// ErrStateLocked indicates that a concurrent operation already holds the lock.
	ErrStateLocked = errors.New("state is locked, try again later")
	// ErrUnknownStep indicates a stored step name this build does not know.
	ErrUnknownStep = errors.New("unknown conversation step")
)

var transitionRecorder = func(from, to string) {}

// RegisterTransitionRecorder allows external packages to observe transitions.
func RegisterTransitionRecorder(recorder func(from, to string)) {
	if recorder == nil {
		transitionRecorder = func(string, string) {}
		return
	}

	transitionRecorder = recorder
}

// StateMachine describes the operations supported by the conversation controller.
type StateMachine interface {
	GetState(ctx context.Context, userID int64, family Family) (*UserState, error)
	// Active returns the pending state of the first family in Families order.
	Active(ctx context.Context, userID int64) (*UserState, error)
	SetState(ctx context.Context, userID int64, step Step) error
	TransitionTo(ctx context.Context, userID int64, step Step) error
	ClearState(ctx context.Context, userID int64, family Family) error
	// ClearAll drops every family slot. It is safe to call repeatedly.
	ClearAll(ctx context.Context, userID int64) error
	GetAllStates(ctx context.Context) ([]*UserState, error)
}

type machine struct {
	storage     Storage
	log         *slog.Logger
	redisClient *redis.Client
}

// NewStateMachine creates a controller using the provided storage backend and a redis client for locking.
func NewStateMachine(storage Storage, log *slog.Logger, redisClient *redis.Client) StateMachine {
	if log == nil {
		log = slog.Default()
	}

	return &machine{
		storage:     storage,
		log:         log,
		redisClient: redisClient,
	}
}

func (m *machine) GetState(ctx context.Context, userID int64, family Family) (*UserState, error) {
	return m.storage.GetState(ctx, userID, family)
}

func (m *machine) Active(ctx context.Context, userID int64) (*UserState, error) {
	for _, family := range Families {
		st, err := m.storage.GetState(ctx, userID, family)
		if err != nil {
			if errors.Is(err, ErrStateNotFound) {
				continue
			}
			return nil, err
		}
		if st != nil && st.Step != nil {
			return st, nil
		}
	}

	return nil, ErrStateNotFound
}

func (m *machine) GetAllStates(ctx context.Context) ([]*UserState, error) {
	return m.storage.GetAllStates(ctx)
}

// SetState stores a step without validating the transition.
func (m *machine) SetState(ctx context.Context, userID int64, step Step) error {
	if err := m.lock(ctx, userID); err != nil {
		return err
	}
	defer m.unlock(ctx, userID)

	return m.saveState(ctx, userID, step)
}

// TransitionTo moves the step's family slot to step if the transition is allowed.
func (m *machine) TransitionTo(ctx context.Context, userID int64, step Step) error {
	if step == nil {
		return fmt.Errorf("%w: nil step", ErrInvalidTransition)
	}

	if err := m.lock(ctx, userID); err != nil {
		return err
	}
	defer m.unlock(ctx, userID)

	current := StateIdle

	stored, err := m.storage.GetState(ctx, userID, step.Family())
	if err != nil {
		if !errors.Is(err, ErrStateNotFound) {
			return err
		}
	} else if stored != nil {
		current = stored.State()
	}

	if !IsTransitionAllowed(current, step.State()) {
		m.log.Warn("invalid state transition", "user_id", userID, "from", current, "to", step.State())
		return ErrInvalidTransition
	}

	if current != step.State() {
		transitionRecorder(string(current), string(step.State()))
	}

	return m.saveState(ctx, userID, step)
}

func (m *machine) ClearState(ctx context.Context, userID int64, family Family) error {
	if err := m.lock(ctx, userID); err != nil {
		return err
	}
	defer m.unlock(ctx, userID)

	return m.clear(ctx, userID, family)
}

func (m *machine) ClearAll(ctx context.Context, userID int64) error {
	if err := m.lock(ctx, userID); err != nil {
		return err
	}
	defer m.unlock(ctx, userID)

	for _, family := range Families {
		if err := m.clear(ctx, userID, family); err != nil {
			return err
		}
	}

	return nil
}

func (m *machine) clear(ctx context.Context, userID int64, family Family) error {
	stored, err := m.storage.GetState(ctx, userID, family)
	if err != nil && !errors.Is(err, ErrStateNotFound) {
		m.log.Warn("failed to read state before clearing", "user_id", userID, "family", family, "error", err)
	}

	if err := m.storage.ClearState(ctx, userID, family); err != nil {
		return err
	}

	if stored.State() != StateIdle {
		transitionRecorder(string(stored.State()), string(StateIdle))
	}

	return nil
}

func (m *machine) saveState(ctx context.Context, userID int64, step Step) error {
	userState := &UserState{
		UserID: userID,
		Family: step.Family(),
		Step:   step,
	}

	return m.storage.SetState(ctx, userID, userState)
}

func (m *machine) lock(ctx context.Context, userID int64) error {
	if m.redisClient == nil {
		return nil
	}

	key := fmt.Sprintf(userLockKeyPattern, userID)
	acquired, err := m.redisClient.SetNX(ctx, key, 1, lockTTL).Result()
	if err != nil {
		m.log.Error("failed to acquire user state lock", "user_id", userID, "error", err)
		return err
	}

	if !acquired {
		m.log.Warn("user state lock already held", "user_id", userID)
		return ErrStateLocked
	}

	return nil
}

func (m *machine) unlock(ctx context.Context, userID int64) {
	if m.redisClient == nil {
		return
	}

	key := fmt.Sprintf(userLockKeyPattern, userID)
	if err := m.redisClient.Del(ctx, key).Err(); err != nil {
		m.log.Error("failed to release user state lock", "user_id", userID, "error", err)
	}
}
