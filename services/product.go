package services

import (
	"context"
	"errors"
	"fmt"

	"theatre-concessions/db"
	"theatre-concessions/models"

	"github.com/jackc/pgx/v5"
)

// ProductCache is an optional read-through cache for product lookups. A nil
// cache means every read goes to the database.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*models.Product, bool)
	Set(ctx context.Context, p *models.Product)
	Invalidate(ctx context.Context, id int64)
}

var productCache ProductCache

// SetProductCache installs the cache used by product reads. Called once at
// startup; not safe to swap while requests are in flight.
func SetProductCache(c ProductCache) {
	productCache = c
}

// CreateProduct inserts a supplier's product and fills in its id.
func CreateProduct(ctx context.Context, p *models.Product) error {
	if p.UnitPrice < 0 || p.Discount < 0 {
		return ErrInvalidAmount
	}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO products (supplier_id, name, unit_price, discount, quantity, available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		p.SupplierID, p.Name, p.UnitPrice, p.Discount, p.Quantity, p.Available,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if productCache != nil {
		if p, ok := productCache.Get(ctx, id); ok {
			return p, nil
		}
	}
	var p models.Product
	err := db.Pool.QueryRow(ctx, `
		SELECT id, supplier_id, name, unit_price, discount, quantity, available
		FROM products WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.SupplierID, &p.Name, &p.UnitPrice, &p.Discount, &p.Quantity, &p.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if productCache != nil {
		productCache.Set(ctx, &p)
	}
	return &p, nil
}

func ListSupplierProducts(ctx context.Context, supplierID int64) ([]models.Product, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, supplier_id, name, unit_price, discount, quantity, available
		FROM products WHERE supplier_id = $1 ORDER BY id`,
		supplierID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.Name, &p.UnitPrice, &p.Discount, &p.Quantity, &p.Available); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProduct overwrites price, discount, quantity and availability.
func UpdateProduct(ctx context.Context, p *models.Product) error {
	if p.UnitPrice < 0 || p.Discount < 0 {
		return ErrInvalidAmount
	}
	tag, err := db.Pool.Exec(ctx, `
		UPDATE products
		SET name = $1, unit_price = $2, discount = $3, quantity = $4, available = $5
		WHERE id = $6`,
		p.Name, p.UnitPrice, p.Discount, p.Quantity, p.Available, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if productCache != nil {
		productCache.Invalidate(ctx, p.ID)
	}
	return nil
}

func SetProductAvailability(ctx context.Context, id int64, available bool) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE products SET available = $1 WHERE id = $2`, available, id)
	if err != nil {
		return fmt.Errorf("set product availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if productCache != nil {
		productCache.Invalidate(ctx, id)
	}
	return nil
}

// DeleteProduct removes a product together with every cart item referencing
// it, in one transaction. The cascade is explicit application code so the
// invariant holds whatever the storage layer does.
func DeleteProduct(ctx context.Context, id int64) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("cascade cart items: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	if productCache != nil {
		productCache.Invalidate(ctx, id)
	}
	return nil
}
