package services

import (
	"context"
	"testing"
	"time"

	"trolley/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepCancelsAbandonedOrders(t *testing.T) {
	env := newOrderTestEnv()
	ctx := context.Background()
	sweeper := NewExpiryService(env.orderRepo, env.publisher)

	stale, _, err := env.orders.CreateOrder(ctx, checkoutInput())
	require.NoError(t, err)
	env.orderRepo.setCreatedAt(stale.ID, time.Now().UTC().Add(-time.Hour))

	fresh, _, err := env.orders.CreateOrder(ctx, checkoutInput())
	require.NoError(t, err)

	paid := createPlacedOrder(t, env)

	cancelled, err := sweeper.Sweep(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	swept, _ := env.orderRepo.GetByID(ctx, stale.ID)
	assert.Equal(t, models.StatusCancelled, swept.Status)
	require.NotNil(t, swept.RejectionReason)
	assert.Equal(t, "payment not completed in time", *swept.RejectionReason)
	assert.NotNil(t, swept.CancelledAt)

	untouched, _ := env.orderRepo.GetByID(ctx, fresh.ID)
	assert.Equal(t, models.StatusPaymentPending, untouched.Status)

	placed, _ := env.orderRepo.GetByID(ctx, paid.ID)
	assert.Equal(t, models.StatusPlaced, placed.Status)

	// a second pass finds nothing left to cancel
	cancelled, err = sweeper.Sweep(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)
}

func TestSweepLosesToRacingWebhook(t *testing.T) {
	env := newOrderTestEnv()
	ctx := context.Background()
	sweeper := NewExpiryService(env.orderRepo, env.publisher)

	order, _, err := env.orders.CreateOrder(ctx, checkoutInput())
	require.NoError(t, err)
	env.orderRepo.setCreatedAt(order.ID, time.Now().UTC().Add(-time.Hour))

	// the payment webhook lands between the stale scan and the cancel write
	env.orderRepo.beforeUpdate = func() {
		_, _, err := env.payments.ConfirmPayment(ctx, order.ID, "ref-race")
		require.NoError(t, err)
	}

	cancelled, err := sweeper.Sweep(ctx, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)

	current, _ := env.orderRepo.GetByID(ctx, order.ID)
	assert.Equal(t, models.StatusPlaced, current.Status, "the paid order survives the sweep")
}
