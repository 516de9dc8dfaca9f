package services

import (
	"context"
	"fmt"

	"theatre-concessions/db"
	"theatre-concessions/models"

	"github.com/jackc/pgx/v5"
)

// AddToCart puts quantity units of a product into the customer's cart. Adding
// a product already present merges quantities on the (customer, product) row.
func AddToCart(ctx context.Context, customerID, productID int64, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidAmount
	}
	p, err := GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.Available {
		return nil, ErrNotFound
	}
	item := models.CartItem{CustomerID: customerID, ProductID: productID}
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO cart_items (customer_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity`,
		customerID, productID, quantity,
	).Scan(&item.ID, &item.Quantity)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return &item, nil
}

// UpdateCartItem sets the quantity of one of the customer's cart items.
func UpdateCartItem(ctx context.Context, customerID, itemID int64, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidAmount
	}
	tag, err := db.Pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $1 WHERE id = $2 AND customer_id = $3`,
		quantity, itemID, customerID,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func RemoveCartItem(ctx context.Context, customerID, itemID int64) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM cart_items WHERE id = $1 AND customer_id = $2`,
		itemID, customerID,
	)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCart returns the customer's cart joined with current product prices.
func GetCart(ctx context.Context, customerID int64) ([]models.CartLine, error) {
	rows, err := db.Pool.Query(ctx, cartLinesQuery, customerID)
	if err != nil {
		return nil, err
	}
	return scanCartLines(rows)
}

const cartLinesQuery = `
	SELECT ci.id, ci.product_id, p.id, COALESCE(p.name, ''),
	       COALESCE(p.unit_price, 0), COALESCE(p.discount, 0), ci.quantity
	FROM cart_items ci
	LEFT JOIN products p ON p.id = ci.product_id
	WHERE ci.customer_id = $1
	ORDER BY ci.id`

// cartLinesTx reads the cart inside the caller's transaction; a line whose
// product no longer resolves fails the whole read.
func cartLinesTx(ctx context.Context, tx pgx.Tx, customerID int64) ([]models.CartLine, error) {
	rows, err := tx.Query(ctx, cartLinesQuery, customerID)
	if err != nil {
		return nil, err
	}
	return scanCartLines(rows)
}

func scanCartLines(rows pgx.Rows) ([]models.CartLine, error) {
	defer rows.Close()
	var lines []models.CartLine
	for rows.Next() {
		var l models.CartLine
		var productID *int64
		if err := rows.Scan(&l.CartItemID, &l.ProductID, &productID, &l.Name, &l.UnitPrice, &l.Discount, &l.Quantity); err != nil {
			return nil, err
		}
		if productID == nil {
			return nil, ErrInvalidLineItem
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func clearCartTx(ctx context.Context, tx pgx.Tx, customerID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE customer_id = $1`, customerID)
	return err
}
