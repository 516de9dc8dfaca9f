package models

const (
	StaffRoleAdmin  = "admin"
	StaffRoleRunner = "runner"
)

// Staff is a theatre employee. Available flips false on delivery acceptance
// and back to true on fulfillment.
type Staff struct {
	UserID    int64
	TheatreID int64
	Role      string
	Available bool
}
