package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/domain"
)

func TestRedisStorage_SetAndGet(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)
	ctx := context.Background()

	subcategoryID := int64(4)
	step := AddItemCurrency{
		AddItemPrice: AddItemPrice{
			AddItemMedia: AddItemMedia{
				AddItemDescription: AddItemDescription{
					AddItemTitle: AddItemTitle{CategoryID: 1, SubcategoryID: &subcategoryID},
					Title:        "Сирники",
				},
				Description: "з любов'ю",
			},
			Media: domain.Media{Kind: domain.MediaPhoto, FileID: "AgAC"},
		},
		Price: 3,
	}

	userState := &UserState{UserID: 123, Family: FamilyItem, Step: step}
	require.NoError(t, storage.SetState(ctx, userState.UserID, userState))

	result, err := storage.GetState(ctx, userState.UserID, FamilyItem)
	require.NoError(t, err)
	assert.Equal(t, userState.UserID, result.UserID)
	assert.Equal(t, StateAddItemCurrency, result.State())

	decoded, ok := result.Step.(AddItemCurrency)
	require.True(t, ok)
	assert.Equal(t, step, decoded)
	assert.Equal(t, "Сирники", decoded.Draft().Title)
	assert.Equal(t, &subcategoryID, decoded.Draft().SubcategoryID)
}

func TestRedisStorage_FamiliesAreIndependent(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)
	ctx := context.Background()

	require.NoError(t, storage.SetState(ctx, 5, &UserState{UserID: 5, Family: FamilyOrder, Step: CheckoutComment{}}))
	require.NoError(t, storage.SetState(ctx, 5, &UserState{
		UserID: 5,
		Family: FamilyDebt,
		Step: DebtCurrency{
			TargetUserID: 8,
			Debts:        []DebtOption{{CurrencyID: 1, Name: "Поцілунки", Emoji: "💋", Amount: 7}},
		},
	}))

	states, err := storage.GetAllStates(ctx)
	require.NoError(t, err)
	assert.Len(t, states, 2)

	debt, err := storage.GetState(ctx, 5, FamilyDebt)
	require.NoError(t, err)
	assert.Equal(t, 7.0, debt.Step.(DebtCurrency).Debts[0].Amount)
}

func TestRedisStorage_GetNotFound(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)

	state, err := storage.GetState(context.Background(), 999, FamilyOrder)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestRedisStorage_ClearState(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)
	ctx := context.Background()

	userState := &UserState{UserID: 456, Family: FamilyOrder, Step: SpecialOrderComment{MenuID: 3}}
	require.NoError(t, storage.SetState(ctx, userState.UserID, userState))
	require.NoError(t, storage.ClearState(ctx, userState.UserID, FamilyOrder))

	state, err := storage.GetState(ctx, userState.UserID, FamilyOrder)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestUserState_UnknownStep(t *testing.T) {
	var st UserState
	err := st.UnmarshalJSON([]byte(`{"user_id":1,"family":"order","state":"order.gone","data":{}}`))
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestParseSessionKey(t *testing.T) {
	userID, family, err := parseSessionKey("session:42:special_menu")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, FamilySpecialMenu, family)

	_, _, err = parseSessionKey("user:state:42")
	assert.Error(t, err)
}

func TestRedisStorage_GetAllStatesDropsUnknownSteps(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)
	ctx := context.Background()

	require.NoError(t, storage.SetState(ctx, 7, &UserState{UserID: 7, Family: FamilyOrder, Step: CheckoutComment{}}))
	require.NoError(t, client.Set(ctx, "session:8:order", `{"user_id":8,"family":"order","state":"order.gone","data":{}}`, time.Hour).Err())

	states, err := storage.GetAllStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, int64(7), states[0].UserID)

	exists, err := client.Exists(ctx, "session:8:order").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestRedisStorage_GetStateDropsUnknownStep(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	t.Cleanup(cleanup)

	storage := NewRedisStorage(client, testLogger(), time.Hour)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "session:9:order", `{"user_id":9,"family":"order","state":"order.gone","data":{}}`, time.Hour).Err())

	state, err := storage.GetState(ctx, 9, FamilyOrder)
	assert.Nil(t, state)
	assert.ErrorIs(t, err, ErrStateNotFound)

	exists, err := client.Exists(ctx, "session:9:order").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	machine := NewStateMachine(storage, testLogger(), nil)
	_, err = machine.Active(ctx, 9)
	assert.ErrorIs(t, err, ErrStateNotFound)
}
