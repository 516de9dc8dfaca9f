package models

// CartItem is one (customer, product) row; adding the same product again merges
// quantities instead of creating a second row.
type CartItem struct {
	ID         int64
	CustomerID int64
	ProductID  int64
	Quantity   int
}

// CartLine is a cart item joined with the product fields pricing needs.
type CartLine struct {
	CartItemID int64
	ProductID  int64
	Name       string
	UnitPrice  int64
	Discount   int64
	Quantity   int
}
