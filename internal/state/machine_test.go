package state

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errStorageFailure = errors.New("storage error")

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) GetState(ctx context.Context, userID int64, family Family) (*UserState, error) {
	args := m.Called(ctx, userID, family)
	state, _ := args.Get(0).(*UserState)
	return state, args.Error(1)
}

func (m *mockStorage) SetState(ctx context.Context, userID int64, state *UserState) error {
	args := m.Called(ctx, userID, state)
	return args.Error(0)
}

func (m *mockStorage) ClearState(ctx context.Context, userID int64, family Family) error {
	args := m.Called(ctx, userID, family)
	return args.Error(0)
}

func (m *mockStorage) GetAllStates(ctx context.Context) ([]*UserState, error) {
	args := m.Called(ctx)
	states, _ := args.Get(0).([]*UserState)
	return states, args.Error(1)
}

func TestStateMachine_TransitionTo(t *testing.T) {
	ctx := context.Background()
	userID := int64(42)
	log := testLogger()

	testCases := []struct {
		name        string
		setupMocks  func(ms *mockStorage)
		step        Step
		expectedErr error
	}{
		{
			name: "next wizard step",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, FamilyItem).
					Return(&UserState{Family: FamilyItem, Step: AddItemCategory{}}, nil).Once()
				ms.On("SetState", mock.Anything, userID, mock.MatchedBy(func(state *UserState) bool {
					return state.State() == StateAddItemSubcategory && state.Family == FamilyItem
				})).Return(nil).Once()
			},
			step:        AddItemSubcategory{CategoryID: 2},
			expectedErr: nil,
		},
		{
			name: "skipping a step",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, FamilyItem).
					Return(&UserState{Family: FamilyItem, Step: AddItemCategory{}}, nil).Once()
			},
			step:        AddItemPrice{},
			expectedErr: ErrInvalidTransition,
		},
		{
			name: "mid-wizard step without a session",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, FamilyDebt).
					Return((*UserState)(nil), ErrStateNotFound).Once()
			},
			step:        DebtAmount{TargetUserID: 5},
			expectedErr: ErrInvalidTransition,
		},
		{
			name: "entry step for new user",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, FamilyOrder).
					Return((*UserState)(nil), ErrStateNotFound).Once()
				ms.On("SetState", mock.Anything, userID, mock.MatchedBy(func(state *UserState) bool {
					return state.State() == StateCheckoutComment
				})).Return(nil).Once()
			},
			step:        CheckoutComment{},
			expectedErr: nil,
		},
		{
			name: "storage failure",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, FamilyOrder).
					Return((*UserState)(nil), errStorageFailure).Once()
			},
			step:        CheckoutComment{},
			expectedErr: errStorageFailure,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			fsm := NewStateMachine(ms, log, nil)
			err := fsm.TransitionTo(ctx, userID, tc.step)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}

			ms.AssertExpectations(t)
		})
	}
}

func TestStateMachine_Active(t *testing.T) {
	ctx := context.Background()
	fsm := NewStateMachine(NewMemoryStorage(), testLogger(), nil)
	userID := int64(7)

	_, err := fsm.Active(ctx, userID)
	assert.ErrorIs(t, err, ErrStateNotFound)

	require.NoError(t, fsm.TransitionTo(ctx, userID, CheckoutComment{}))
	require.NoError(t, fsm.TransitionTo(ctx, userID, DebtUser{}))

	active, err := fsm.Active(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, StateDebtUser, active.State())

	require.NoError(t, fsm.ClearState(ctx, userID, FamilyDebt))

	active, err = fsm.Active(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, StateCheckoutComment, active.State())
}

func TestStateMachine_ClearAllTwice(t *testing.T) {
	ctx := context.Background()
	fsm := NewStateMachine(NewMemoryStorage(), testLogger(), nil)
	userID := int64(9)

	steps := []Step{
		CheckoutComment{},
		CustomText{CategoryID: 3, SubcategoryID: 11},
		AddItemCategory{},
		SpecialMenuMedia{},
		DebtUser{},
	}

	for _, step := range steps {
		step := step
		t.Run(string(step.State()), func(t *testing.T) {
			require.NoError(t, fsm.TransitionTo(ctx, userID, step))

			for i := 0; i < 2; i++ {
				require.NoError(t, fsm.ClearAll(ctx, userID))

				_, err := fsm.Active(ctx, userID)
				assert.ErrorIs(t, err, ErrStateNotFound)
			}
		})
	}
}

func TestStateMachine_StartingWizardOverwritesSlot(t *testing.T) {
	ctx := context.Background()
	fsm := NewStateMachine(NewMemoryStorage(), testLogger(), nil)
	userID := int64(10)

	require.NoError(t, fsm.TransitionTo(ctx, userID, AddItemCategory{}))
	require.NoError(t, fsm.TransitionTo(ctx, userID, AddItemSubcategory{CategoryID: 1}))
	require.NoError(t, fsm.TransitionTo(ctx, userID, EditItemCategory{}))

	st, err := fsm.GetState(ctx, userID, FamilyItem)
	require.NoError(t, err)
	assert.Equal(t, StateEditItemCategory, st.State())
}

func TestStateMachine_RecordsTransitions(t *testing.T) {
	var (
		mu       sync.Mutex
		recorded []string
	)
	RegisterTransitionRecorder(func(from, to string) {
		mu.Lock()
		defer mu.Unlock()
		recorded = append(recorded, from+">"+to)
	})
	t.Cleanup(func() { RegisterTransitionRecorder(nil) })

	ctx := context.Background()
	fsm := NewStateMachine(NewMemoryStorage(), testLogger(), nil)

	require.NoError(t, fsm.TransitionTo(ctx, 1, SpecialMenuMedia{}))
	require.NoError(t, fsm.ClearAll(ctx, 1))

	assert.Equal(t, []string{
		"idle>special_menu.media",
		"special_menu.media>idle",
	}, recorded)
}

func TestStateMachine_SetState(t *testing.T) {
	ctx := context.Background()
	userID := int64(11)
	log := testLogger()

	testCases := []struct {
		name       string
		setupMocks func(ms *mockStorage)
		expectErr  error
	}{
		{
			name: "set state success",
			setupMocks: func(ms *mockStorage) {
				ms.On("SetState", mock.Anything, userID, mock.MatchedBy(func(userState *UserState) bool {
					return userState.State() == StateSpecialMenuConfirm && userState.Family == FamilySpecialMenu
				})).Return(nil).Once()
			},
			expectErr: nil,
		},
		{
			name: "set state error",
			setupMocks: func(ms *mockStorage) {
				ms.On("SetState", mock.Anything, userID, mock.Anything).
					Return(errStorageFailure).Once()
			},
			expectErr: errStorageFailure,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			fsm := NewStateMachine(ms, log, nil)
			err := fsm.SetState(ctx, userID, SpecialMenuConfirm{Description: "Борщ"})

			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
			} else {
				assert.NoError(t, err)
			}

			ms.AssertExpectations(t)
		})
	}
}

func TestStateMachine_ClearState(t *testing.T) {
	ctx := context.Background()
	userID := int64(13)
	log := testLogger()

	testCases := []struct {
		name       string
		setupMocks func(ms *mockStorage)
		expectErr  error
	}{
		{
			name: "clear state success",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, FamilyOrder).
					Return(&UserState{Family: FamilyOrder, Step: CheckoutComment{}}, nil).Once()
				ms.On("ClearState", mock.Anything, userID, FamilyOrder).
					Return(nil).Once()
			},
			expectErr: nil,
		},
		{
			name: "clear state error",
			setupMocks: func(ms *mockStorage) {
				ms.On("GetState", mock.Anything, userID, FamilyOrder).
					Return((*UserState)(nil), ErrStateNotFound).Once()
				ms.On("ClearState", mock.Anything, userID, FamilyOrder).
					Return(errStorageFailure).Once()
			},
			expectErr: errStorageFailure,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ms := &mockStorage{}
			tc.setupMocks(ms)

			fsm := NewStateMachine(ms, log, nil)
			err := fsm.ClearState(ctx, userID, FamilyOrder)

			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
			} else {
				assert.NoError(t, err)
			}

			ms.AssertExpectations(t)
		})
	}
}

func TestStateMachine_Lock(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := &slowStorage{Storage: NewMemoryStorage(), delay: 100 * time.Millisecond}
	fsm := NewStateMachine(storage, testLogger(), client)

	ctx := context.Background()
	userID := int64(77)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- fsm.SetState(ctx, userID, CheckoutComment{})
		}()
	}

	wg.Wait()
	close(errCh)

	var success, locked int
	for err := range errCh {
		if err == nil {
			success++
			continue
		}

		if errors.Is(err, ErrStateLocked) {
			locked++
			continue
		}

		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, 1, success)
	assert.Equal(t, 1, locked)
}

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}

	return client, cleanup
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type slowStorage struct {
	Storage
	delay time.Duration
}

func (s *slowStorage) SetState(ctx context.Context, userID int64, state *UserState) error {
	time.Sleep(s.delay)
	return s.Storage.SetState(ctx, userID, state)
}
