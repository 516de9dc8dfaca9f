package services

import (
	"context"
	"testing"

	"theatre-concessions/models"
)

func TestAdvanceDriverStatusRejectsForeignTargets(t *testing.T) {
	// Drivers may only move ready_for_pickup -> in_transit and
	// in_transit -> delivered; everything else is rejected before any query.
	for _, target := range []models.DeliveryStatus{
		models.DeliveryStatusPending,
		models.DeliveryStatusAccepted,
		models.DeliveryStatusInProgress,
		models.DeliveryStatusReadyForPickup,
		models.DeliveryStatusFulfilled,
		models.DeliveryStatusCancelled,
	} {
		if _, err := AdvanceDriverStatus(context.Background(), 1, 1, target); err != ErrInvalidTransition {
			t.Errorf("AdvanceDriverStatus(target=%s) err = %v, want ErrInvalidTransition", target, err)
		}
	}
}

func TestStaffSetStatusRejectsGuardedTargets(t *testing.T) {
	// accept/fulfill/cancel have their own guarded operations; the override
	// only covers the preparation steps.
	for _, target := range []models.DeliveryStatus{
		models.DeliveryStatusPending,
		models.DeliveryStatusAccepted,
		models.DeliveryStatusInTransit,
		models.DeliveryStatusDelivered,
		models.DeliveryStatusFulfilled,
		models.DeliveryStatusCancelled,
	} {
		if _, err := StaffSetStatus(context.Background(), 1, 1, target); err != ErrInvalidTransition {
			t.Errorf("StaffSetStatus(target=%s) err = %v, want ErrInvalidTransition", target, err)
		}
	}
}

func TestRateDeliveryRejectsOutOfRangeScore(t *testing.T) {
	for _, score := range []int64{-1, 501, 10000} {
		if _, err := RateDelivery(context.Background(), 1, score); err != ErrInvalidScore {
			t.Errorf("RateDelivery(score=%d) err = %v, want ErrInvalidScore", score, err)
		}
	}
}

// Integration test outlines (require test DB):

func TestAcceptDeliveryRaceIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	// Two staff members accept the same pending delivery concurrently.
	// AcceptDelivery uses UPDATE ... WHERE status = 'pending' AND staff_id IS
	// NULL inside one transaction with the staff availability flip, so
	// exactly one commits; the loser gets ErrInvalidTransition and keeps
	// their availability (the whole tx rolls back).
}

func TestCreateDeliveryAllOrNothingIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	// Cart with product A (10.00, discount 1.00, qty 2) and B (5.00, 0.50,
	// qty 3); payment method balance 20.00. Total 31.50 > 20.00, so
	// CreateDelivery returns ErrPaymentFailed and nothing persists: no
	// delivery row, no delivery_items, balance unchanged, cart intact.
	// With balance 100.00 the same call succeeds: balance 68.50, cart empty,
	// delivery pending with total_price 3150 and two snapshot items.
}

func TestCancelRefundsStoredTotalIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	// Create a delivery (total 31.50), then raise the product's price.
	// CancelDelivery refunds exactly 31.50 — the stored total, not a
	// recomputation — and the delivery ends cancelled with a history row.
	// A second cancel returns ErrAlreadyTerminal.
}

func TestRateOnceIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	// Delivery must be fulfilled before rating (ErrNotFulfilled otherwise).
	// First RateDelivery succeeds and sets is_rated; the second returns
	// ErrAlreadyRated and the driver's rating is unchanged.
}
