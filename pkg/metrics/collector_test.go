package metrics

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lovemenu-bot/internal/state"
)

func TestStateCollectorCountsPendingSteps(t *testing.T) {
	storage := state.NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, storage.SetState(ctx, 1, &state.UserState{UserID: 1, Family: state.FamilyOrder, Step: state.CheckoutComment{}}))
	require.NoError(t, storage.SetState(ctx, 2, &state.UserState{UserID: 2, Family: state.FamilyOrder, Step: state.CheckoutComment{}}))
	require.NoError(t, storage.SetState(ctx, 2, &state.UserState{UserID: 2, Family: state.FamilyDebt, Step: state.DebtUser{}}))

	collector := NewStateCollector(state.NewStateMachine(storage, slog.Default(), nil))
	require.NoError(t, collector.collect(ctx))

	assert.Equal(t, float64(2), testutil.ToFloat64(activeUsers))
	assert.Equal(t, float64(2), testutil.ToFloat64(usersByState.WithLabelValues(string(state.StateCheckoutComment))))
	assert.Equal(t, float64(1), testutil.ToFloat64(usersByState.WithLabelValues(string(state.StateDebtUser))))
	assert.Equal(t, float64(0), testutil.ToFloat64(usersByState.WithLabelValues(string(state.StateDebtAmount))))
}

func TestRecordCheckoutAndBroadcast(t *testing.T) {
	before := testutil.ToFloat64(checkoutsTotal.WithLabelValues("ok"))
	RecordCheckout("ok")
	assert.Equal(t, before+1, testutil.ToFloat64(checkoutsTotal.WithLabelValues("ok")))

	delivered := testutil.ToFloat64(broadcastMessagesTotal.WithLabelValues("delivered"))
	RecordBroadcast(3, 1)
	assert.Equal(t, delivered+3, testutil.ToFloat64(broadcastMessagesTotal.WithLabelValues("delivered")))
}
