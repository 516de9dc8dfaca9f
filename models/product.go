package models

// Product is a concession item sold by a supplier. Prices and discounts are
// fixed-point hundredths (1050 = 10.50).
type Product struct {
	ID         int64  `json:"id"`
	SupplierID int64  `json:"supplier_id"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	Discount   int64  `json:"discount"` // per-unit rebate, >= 0
	Quantity   int    `json:"quantity"`
	Available  bool   `json:"available"`
}
