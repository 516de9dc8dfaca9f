package services

import (
	"context"
	"errors"
	"fmt"

	"theatre-concessions/db"
	"theatre-concessions/models"

	"github.com/jackc/pgx/v5"
)

// applyCharge is the ledger arithmetic: it returns the new balance and whether
// the charge is payable. A charge larger than the balance leaves it unchanged.
func applyCharge(balance, amount int64) (int64, bool) {
	if amount > balance {
		return balance, false
	}
	return balance - amount, true
}

// ChargeTx debits a payment method inside the caller's transaction so the
// balance write commits together with the delivery-state change that caused
// it. charged=false (with nil error) means insufficient funds; the caller must
// roll back whatever it provisionally created.
func ChargeTx(ctx context.Context, tx pgx.Tx, paymentMethodID, amount int64) (charged bool, err error) {
	var balance int64
	err = tx.QueryRow(ctx, `
		SELECT balance FROM payment_methods WHERE id = $1 FOR UPDATE`,
		paymentMethodID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("lock payment method: %w", err)
	}
	newBalance, ok := applyCharge(balance, amount)
	if !ok {
		return false, nil
	}
	if _, err := tx.Exec(ctx, `
		UPDATE payment_methods SET balance = $1 WHERE id = $2`,
		newBalance, paymentMethodID,
	); err != nil {
		return false, fmt.Errorf("charge payment method: %w", err)
	}
	return true, nil
}

// RefundTx credits a payment method inside the caller's transaction. Used only
// by cancellation, which refunds the delivery's stored total.
func RefundTx(ctx context.Context, tx pgx.Tx, paymentMethodID, amount int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE payment_methods SET balance = balance + $1 WHERE id = $2`,
		amount, paymentMethodID,
	)
	if err != nil {
		return fmt.Errorf("refund payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFunds credits a payment method outside any delivery flow.
func AddFunds(ctx context.Context, paymentMethodID, amount int64) (*models.PaymentMethod, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	var m models.PaymentMethod
	err := db.Pool.QueryRow(ctx, `
		UPDATE payment_methods SET balance = balance + $1
		WHERE id = $2
		RETURNING id, customer_id, balance, is_default`,
		amount, paymentMethodID,
	).Scan(&m.ID, &m.CustomerID, &m.Balance, &m.IsDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("add funds: %w", err)
	}
	return &m, nil
}

// CreatePaymentMethod registers a stored balance for a customer. The
// customer's first method becomes the default.
func CreatePaymentMethod(ctx context.Context, customerID, initialBalance int64) (*models.PaymentMethod, error) {
	if initialBalance < 0 {
		return nil, ErrInvalidAmount
	}
	m := models.PaymentMethod{CustomerID: customerID, Balance: initialBalance}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO payment_methods (customer_id, balance, is_default)
		VALUES ($1, $2, NOT EXISTS (SELECT 1 FROM payment_methods WHERE customer_id = $1))
		RETURNING id, is_default`,
		customerID, initialBalance,
	).Scan(&m.ID, &m.IsDefault)
	if err != nil {
		return nil, fmt.Errorf("create payment method: %w", err)
	}
	return &m, nil
}

func GetPaymentMethod(ctx context.Context, id int64) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := db.Pool.QueryRow(ctx, `
		SELECT id, customer_id, balance, is_default FROM payment_methods WHERE id = $1`,
		id,
	).Scan(&m.ID, &m.CustomerID, &m.Balance, &m.IsDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func ListPaymentMethods(ctx context.Context, customerID int64) ([]models.PaymentMethod, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, customer_id, balance, is_default
		FROM payment_methods WHERE customer_id = $1 ORDER BY id`,
		customerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.PaymentMethod
	for rows.Next() {
		var m models.PaymentMethod
		if err := rows.Scan(&m.ID, &m.CustomerID, &m.Balance, &m.IsDefault); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
