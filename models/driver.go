package models

const (
	DutyUnavailable = "unavailable"
	DutyAvailable   = "available"
	DutyOnDelivery  = "on_delivery"
)

// Driver carries duty status and the running-average rating. Rating is
// fixed-point hundredths in [0, 500]; TotalDeliveries is the weight of the
// average.
type Driver struct {
	UserID          int64
	DutyStatus      string
	Rating          int64
	TotalDeliveries int64
}
