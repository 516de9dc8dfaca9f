package services

import (
	"testing"

	"theatre-concessions/models"
)

func TestValidTransition(t *testing.T) {
	tests := []struct {
		from  models.DeliveryStatus
		to    models.DeliveryStatus
		actor Actor
		want  bool
	}{
		{models.DeliveryStatusPending, models.DeliveryStatusAccepted, ActorStaff, true},
		{models.DeliveryStatusPending, models.DeliveryStatusAccepted, ActorSystem, true},
		{models.DeliveryStatusPending, models.DeliveryStatusAccepted, ActorDriver, false},
		{models.DeliveryStatusPending, models.DeliveryStatusDelivered, ActorStaff, false},
		{models.DeliveryStatusPending, models.DeliveryStatusCancelled, ActorCustomer, true},
		{models.DeliveryStatusAccepted, models.DeliveryStatusInProgress, ActorStaff, true},
		{models.DeliveryStatusAccepted, models.DeliveryStatusPending, ActorStaff, false},
		{models.DeliveryStatusInProgress, models.DeliveryStatusReadyForPickup, ActorStaff, true},
		{models.DeliveryStatusReadyForPickup, models.DeliveryStatusInTransit, ActorDriver, true},
		{models.DeliveryStatusReadyForPickup, models.DeliveryStatusInTransit, ActorStaff, false},
		{models.DeliveryStatusReadyForPickup, models.DeliveryStatusDelivered, ActorDriver, false},
		{models.DeliveryStatusInTransit, models.DeliveryStatusDelivered, ActorDriver, true},
		{models.DeliveryStatusInTransit, models.DeliveryStatusReadyForPickup, ActorDriver, false},
		{models.DeliveryStatusDelivered, models.DeliveryStatusFulfilled, ActorStaff, true},
		{models.DeliveryStatusDelivered, models.DeliveryStatusFulfilled, ActorDriver, false},
		{models.DeliveryStatusDelivered, models.DeliveryStatusCancelled, ActorStaff, true},
		{models.DeliveryStatusFulfilled, models.DeliveryStatusCancelled, ActorStaff, false},
		{models.DeliveryStatusFulfilled, models.DeliveryStatusPending, ActorStaff, false},
		{models.DeliveryStatusCancelled, models.DeliveryStatusPending, ActorStaff, false},
		{models.DeliveryStatusCancelled, models.DeliveryStatusCancelled, ActorCustomer, false},
		{"", models.DeliveryStatusPending, ActorStaff, false},
	}
	for _, tt := range tests {
		got := ValidTransition(tt.from, tt.to, tt.actor)
		if got != tt.want {
			t.Errorf("ValidTransition(%q, %q, %q) = %v, want %v", tt.from, tt.to, tt.actor, got, tt.want)
		}
	}
}

// From pending, the only reachable statuses are accepted and cancelled.
func TestPendingReachability(t *testing.T) {
	all := []models.DeliveryStatus{
		models.DeliveryStatusPending, models.DeliveryStatusAccepted,
		models.DeliveryStatusInProgress, models.DeliveryStatusReadyForPickup,
		models.DeliveryStatusInTransit, models.DeliveryStatusDelivered,
		models.DeliveryStatusFulfilled, models.DeliveryStatusCancelled,
	}
	actors := []Actor{ActorCustomer, ActorStaff, ActorDriver, ActorSystem}
	for _, to := range all {
		reachable := false
		for _, actor := range actors {
			if ValidTransition(models.DeliveryStatusPending, to, actor) {
				reachable = true
			}
		}
		want := to == models.DeliveryStatusAccepted || to == models.DeliveryStatusCancelled
		if reachable != want {
			t.Errorf("pending -> %s reachable = %v, want %v", to, reachable, want)
		}
	}
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	all := []models.DeliveryStatus{
		models.DeliveryStatusPending, models.DeliveryStatusAccepted,
		models.DeliveryStatusInProgress, models.DeliveryStatusReadyForPickup,
		models.DeliveryStatusInTransit, models.DeliveryStatusDelivered,
		models.DeliveryStatusFulfilled, models.DeliveryStatusCancelled,
	}
	actors := []Actor{ActorCustomer, ActorStaff, ActorDriver, ActorSystem}
	for _, from := range []models.DeliveryStatus{models.DeliveryStatusFulfilled, models.DeliveryStatusCancelled} {
		for _, to := range all {
			for _, actor := range actors {
				if ValidTransition(from, to, actor) {
					t.Errorf("terminal %s allows transition to %s by %s", from, to, actor)
				}
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	if !models.DeliveryStatusFulfilled.Terminal() || !models.DeliveryStatusCancelled.Terminal() {
		t.Error("fulfilled and cancelled must be terminal")
	}
	if models.DeliveryStatusPending.Terminal() || models.DeliveryStatusDelivered.Terminal() {
		t.Error("pending and delivered must not be terminal")
	}
}
