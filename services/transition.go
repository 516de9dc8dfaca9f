package services

import "theatre-concessions/models"

// Actor is who is attempting a delivery status change.
type Actor string

const (
	ActorCustomer Actor = "customer"
	ActorStaff    Actor = "staff"
	ActorDriver   Actor = "driver"
	ActorSystem   Actor = "system"
)

// transitions is the closed legality table: (from, actor) -> allowed targets.
// Cancellation is handled separately (any non-terminal state, customer or
// staff), so it does not appear here.
var transitions = map[models.DeliveryStatus]map[Actor][]models.DeliveryStatus{
	models.DeliveryStatusPending: {
		ActorStaff:  {models.DeliveryStatusAccepted},
		ActorSystem: {models.DeliveryStatusAccepted},
	},
	models.DeliveryStatusAccepted: {
		ActorStaff: {models.DeliveryStatusInProgress},
	},
	models.DeliveryStatusInProgress: {
		ActorStaff: {models.DeliveryStatusReadyForPickup},
	},
	models.DeliveryStatusReadyForPickup: {
		ActorDriver: {models.DeliveryStatusInTransit},
	},
	models.DeliveryStatusInTransit: {
		ActorDriver: {models.DeliveryStatusDelivered},
	},
	models.DeliveryStatusDelivered: {
		ActorStaff: {models.DeliveryStatusFulfilled},
	},
}

// ValidTransition reports whether actor may move a delivery from one status to
// another. Terminal states have no outgoing transitions.
func ValidTransition(from, to models.DeliveryStatus, actor Actor) bool {
	if to == models.DeliveryStatusCancelled {
		return (actor == ActorCustomer || actor == ActorStaff) && !from.Terminal()
	}
	for _, target := range transitions[from][actor] {
		if target == to {
			return true
		}
	}
	return false
}
