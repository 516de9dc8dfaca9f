package models

import "time"

// DeliveryStatus is the closed set of lifecycle states. Transition legality
// lives in services; these values are also the stored column values.
type DeliveryStatus string

const (
	DeliveryStatusPending        DeliveryStatus = "pending"
	DeliveryStatusAccepted       DeliveryStatus = "accepted"
	DeliveryStatusInProgress     DeliveryStatus = "in_progress"
	DeliveryStatusReadyForPickup DeliveryStatus = "ready_for_pickup"
	DeliveryStatusInTransit      DeliveryStatus = "in_transit"
	DeliveryStatusDelivered      DeliveryStatus = "delivered"
	DeliveryStatusFulfilled      DeliveryStatus = "fulfilled"
	DeliveryStatusCancelled      DeliveryStatus = "cancelled"
)

// Terminal reports whether no further transition can leave s.
func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryStatusFulfilled || s == DeliveryStatusCancelled
}

// Delivery is one checkout's concession order. TotalPrice and DiscountAmount
// are snapshotted at creation and never recomputed; cancellation refunds the
// stored total.
type Delivery struct {
	ID                int64
	Reference         string // opaque public reference (uuid)
	DriverID          *int64 // bound once by assignment
	CustomerShowingID int64
	PaymentMethodID   int64
	StaffID           *int64 // bound once by acceptance
	PaymentStatus     string
	TotalPrice        int64
	Status            DeliveryStatus
	CouponCode        *string
	DiscountAmount    int64
	IsRated           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DeliveryItem freezes one cart line at creation time. CartItemID is kept as a
// historical reference; the cart row itself is deleted in the same transaction.
type DeliveryItem struct {
	ID         int64
	DeliveryID int64
	CartItemID int64
	ProductID  int64
	Quantity   int
	UnitPrice  int64
	Discount   int64
}
