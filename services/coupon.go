package services

import (
	"context"
	"errors"
	"fmt"

	"theatre-concessions/db"
	"theatre-concessions/models"

	"github.com/jackc/pgx/v5"
)

// discountedTotal applies a percentage discount to a fixed-point total,
// rounding half-up to hundredths. Never returns a negative value.
func discountedTotal(total, percent int64) int64 {
	if percent <= 0 {
		return total
	}
	if percent >= 100 {
		return 0
	}
	return (total*(100-percent) + 50) / 100
}

// ApplyCoupon validates a discount code and returns the discount percent and
// the new total. Unless skipPuzzle is set, a token issued by IssuePuzzle must
// be presented with the matching answer before the discount is honored.
func ApplyCoupon(ctx context.Context, code string, total int64, skipPuzzle bool, puzzleToken, puzzleAnswer string) (int64, int64, error) {
	c, err := activeCoupon(ctx, code)
	if err != nil {
		return 0, 0, err
	}
	if !skipPuzzle {
		if err := verifyPuzzleAnswer(ctx, puzzleToken, puzzleAnswer); err != nil {
			return 0, 0, err
		}
	}
	return c.DiscountPercent, discountedTotal(total, c.DiscountPercent), nil
}

func activeCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := db.Pool.QueryRow(ctx, `
		SELECT code, difficulty, discount_percent, active
		FROM coupons WHERE code = $1 AND active`,
		code,
	).Scan(&c.Code, &c.Difficulty, &c.DiscountPercent, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func CreateCoupon(ctx context.Context, c *models.Coupon) error {
	if c.Difficulty < 1 || c.Difficulty > 10 {
		return ErrInvalidAmount
	}
	if c.DiscountPercent < 0 || c.DiscountPercent > 100 {
		return ErrInvalidAmount
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO coupons (code, difficulty, discount_percent, active)
		VALUES (TRIM($1), $2, $3, $4)`,
		c.Code, c.Difficulty, c.DiscountPercent, c.Active,
	)
	if err != nil {
		return fmt.Errorf("create coupon: %w", err)
	}
	return nil
}

func GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	err := db.Pool.QueryRow(ctx, `
		SELECT code, difficulty, discount_percent, active FROM coupons WHERE code = $1`,
		code,
	).Scan(&c.Code, &c.Difficulty, &c.DiscountPercent, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func DeactivateCoupon(ctx context.Context, code string) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE coupons SET active = false WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("deactivate coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
