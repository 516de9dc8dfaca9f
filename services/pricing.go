package services

import "theatre-concessions/models"

// ComputeTotal returns the cart total in fixed-point hundredths:
// sum of (unit price - discount) x quantity over all lines, where a line never
// contributes a negative amount. Pure; resolution of product references is the
// caller's job.
func ComputeTotal(lines []models.CartLine) int64 {
	var total int64
	for _, l := range lines {
		unit := l.UnitPrice - l.Discount
		if unit < 0 {
			unit = 0
		}
		total += unit * int64(l.Quantity)
	}
	return total
}
