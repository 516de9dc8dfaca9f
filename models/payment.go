package models

// PaymentMethod is a customer's stored balance. Balance is fixed-point
// hundredths and never goes negative; it is mutated only by the ledger
// operations in services (charge, refund, add funds).
type PaymentMethod struct {
	ID         int64
	CustomerID int64
	Balance    int64
	IsDefault  bool
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)
