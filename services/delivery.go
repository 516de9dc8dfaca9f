package services

import (
	"context"
	"errors"
	"fmt"

	"theatre-concessions/db"
	"theatre-concessions/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// StatusNotifier observes applied delivery status changes. It runs after the
// transaction that applied the change has committed.
type StatusNotifier func(deliveryID int64, from, to models.DeliveryStatus)

var statusNotifier StatusNotifier

// SetStatusNotifier installs the notifier. Called once at startup.
func SetStatusNotifier(n StatusNotifier) {
	statusNotifier = n
}

func notifyStatus(deliveryID int64, from, to models.DeliveryStatus) {
	if statusNotifier != nil {
		go statusNotifier(deliveryID, from, to)
	}
}

const deliveryColumns = `id, reference, driver_id, customer_showing_id, payment_method_id,
	staff_id, payment_status, total_price, status, coupon_code, discount_amount,
	is_rated, created_at, updated_at`

func scanDelivery(row pgx.Row) (*models.Delivery, error) {
	var d models.Delivery
	err := row.Scan(
		&d.ID, &d.Reference, &d.DriverID, &d.CustomerShowingID, &d.PaymentMethodID,
		&d.StaffID, &d.PaymentStatus, &d.TotalPrice, &d.Status, &d.CouponCode,
		&d.DiscountAmount, &d.IsRated, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func recordTransitionTx(ctx context.Context, tx pgx.Tx, deliveryID int64, from, to models.DeliveryStatus, actorID int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO delivery_status_history (delivery_id, from_status, to_status, actor_id)
		VALUES ($1, $2, $3, $4)`,
		deliveryID, string(from), string(to), actorID,
	)
	if err != nil {
		return fmt.Errorf("record status transition: %w", err)
	}
	return nil
}

type CreateDeliveryInput struct {
	CustomerID        int64
	CustomerShowingID int64
	PaymentMethodID   int64
	CouponCode        string
	PuzzleToken       string
	PuzzleAnswer      string
	SkipPuzzle        bool
}

// CreateDelivery turns the customer's whole cart into a pending delivery:
// price the cart, apply the coupon, charge the ledger, snapshot every cart
// line, clear the cart. All of it commits or none of it does; an insufficient
// balance surfaces as ErrPaymentFailed with nothing persisted.
func CreateDelivery(ctx context.Context, input CreateDeliveryInput) (*models.Delivery, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lines, err := cartLinesTx(ctx, tx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	total := ComputeTotal(lines)
	var discountAmount int64
	var couponCode *string
	if input.CouponCode != "" {
		_, newTotal, err := ApplyCoupon(ctx, input.CouponCode, total, input.SkipPuzzle, input.PuzzleToken, input.PuzzleAnswer)
		if err != nil {
			return nil, err
		}
		discountAmount = total - newTotal
		total = newTotal
		couponCode = &input.CouponCode
	}

	charged, err := ChargeTx(ctx, tx, input.PaymentMethodID, total)
	if err != nil {
		return nil, err
	}
	if !charged {
		return nil, ErrPaymentFailed
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO deliveries (reference, customer_showing_id, payment_method_id,
			payment_status, total_price, status, coupon_code, discount_amount, is_rated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
		RETURNING `+deliveryColumns,
		uuid.NewString(), input.CustomerShowingID, input.PaymentMethodID,
		models.PaymentStatusCompleted, total, string(models.DeliveryStatusPending),
		couponCode, discountAmount,
	)
	d, err := scanDelivery(row)
	if err != nil {
		return nil, fmt.Errorf("insert delivery: %w", err)
	}

	for _, l := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO delivery_items (delivery_id, cart_item_id, product_id, quantity, unit_price, discount)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			d.ID, l.CartItemID, l.ProductID, l.Quantity, l.UnitPrice, l.Discount,
		); err != nil {
			return nil, fmt.Errorf("snapshot cart line: %w", err)
		}
	}
	if err := clearCartTx(ctx, tx, input.CustomerID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	if err := recordTransitionTx(ctx, tx, d.ID, "", models.DeliveryStatusPending, input.CustomerID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	notifyStatus(d.ID, "", models.DeliveryStatusPending)
	return d, nil
}

// AcceptDelivery binds an available staff member to a pending delivery. The
// staff flip and the status write are one atomic unit; the conditional UPDATE
// keeps two staff members from accepting the same delivery.
func AcceptDelivery(ctx context.Context, deliveryID, staffID int64) (*models.Delivery, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := acceptStaffTx(ctx, tx, staffID); err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE deliveries
		SET staff_id = $1, status = $2, updated_at = now()
		WHERE id = $3 AND status = $4 AND staff_id IS NULL
		RETURNING `+deliveryColumns,
		staffID, string(models.DeliveryStatusAccepted),
		deliveryID, string(models.DeliveryStatusPending),
	)
	d, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, classifyMissedCAS(ctx, tx, deliveryID)
		}
		return nil, fmt.Errorf("accept delivery: %w", err)
	}
	if err := recordTransitionTx(ctx, tx, d.ID, models.DeliveryStatusPending, d.Status, staffID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	notifyStatus(d.ID, models.DeliveryStatusPending, d.Status)
	return d, nil
}

// classifyMissedCAS distinguishes "delivery does not exist" from "delivery is
// not in the state the operation requires" after a conditional update matched
// no rows.
func classifyMissedCAS(ctx context.Context, tx pgx.Tx, deliveryID int64) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM deliveries WHERE id = $1)`, deliveryID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrInvalidTransition
}

// AssignDriver binds the best available driver to the delivery. Returns false
// (not an error) when nobody is on duty. The delivery moves to accepted if it
// was still pending; the driver goes on_delivery either way.
func AssignDriver(ctx context.Context, deliveryID int64) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status models.DeliveryStatus
	var driverID *int64
	err = tx.QueryRow(ctx, `
		SELECT status, driver_id FROM deliveries WHERE id = $1 FOR UPDATE`,
		deliveryID,
	).Scan(&status, &driverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	if driverID != nil || status.Terminal() {
		return false, ErrInvalidTransition
	}

	driver, err := bestAvailableDriverTx(ctx, tx)
	if err != nil {
		return false, err
	}
	if driver == nil {
		return false, nil
	}
	if err := setDriverDutyTx(ctx, tx, driver.UserID, models.DutyOnDelivery); err != nil {
		return false, err
	}

	newStatus := status
	if status == models.DeliveryStatusPending {
		newStatus = models.DeliveryStatusAccepted
	}
	if _, err := tx.Exec(ctx, `
		UPDATE deliveries SET driver_id = $1, status = $2, updated_at = now()
		WHERE id = $3 AND driver_id IS NULL`,
		driver.UserID, string(newStatus), deliveryID,
	); err != nil {
		return false, fmt.Errorf("assign driver: %w", err)
	}
	if newStatus != status {
		if err := recordTransitionTx(ctx, tx, deliveryID, status, newStatus, 0); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	if newStatus != status {
		notifyStatus(deliveryID, status, newStatus)
	}
	return true, nil
}

// AdvanceDriverStatus applies one of the driver's hand-off transitions on
// their own assigned delivery: ready_for_pickup -> in_transit, or
// in_transit -> delivered. Delivering the driver's last active delivery puts
// them back on the available pool.
func AdvanceDriverStatus(ctx context.Context, deliveryID, driverID int64, newStatus models.DeliveryStatus) (*models.Delivery, error) {
	if newStatus != models.DeliveryStatusInTransit && newStatus != models.DeliveryStatusDelivered {
		return nil, ErrInvalidTransition
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current models.DeliveryStatus
	err = tx.QueryRow(ctx, `
		SELECT status FROM deliveries WHERE id = $1 AND driver_id = $2 FOR UPDATE`,
		deliveryID, driverID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !ValidTransition(current, newStatus, ActorDriver) {
		return nil, ErrInvalidTransition
	}

	row := tx.QueryRow(ctx, `
		UPDATE deliveries SET status = $1, updated_at = now()
		WHERE id = $2 AND driver_id = $3 AND status = $4
		RETURNING `+deliveryColumns,
		string(newStatus), deliveryID, driverID, string(current),
	)
	d, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("advance delivery: %w", err)
	}

	switch newStatus {
	case models.DeliveryStatusInTransit:
		if _, err := tx.Exec(ctx, `
			UPDATE drivers SET duty_status = $1 WHERE user_id = $2 AND duty_status != $1`,
			models.DutyOnDelivery, driverID,
		); err != nil {
			return nil, fmt.Errorf("set duty status: %w", err)
		}
	case models.DeliveryStatusDelivered:
		busy, err := driverHasOtherActiveTx(ctx, tx, driverID, deliveryID)
		if err != nil {
			return nil, err
		}
		if !busy {
			if err := setDriverDutyTx(ctx, tx, driverID, models.DutyAvailable); err != nil {
				return nil, err
			}
		}
	}
	if err := recordTransitionTx(ctx, tx, d.ID, current, newStatus, driverID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	notifyStatus(d.ID, current, newStatus)
	return d, nil
}

// FulfillDelivery closes out a delivered delivery and frees the staff member
// who accepted it.
func FulfillDelivery(ctx context.Context, deliveryID, staffID int64) (*models.Delivery, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE deliveries SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING `+deliveryColumns,
		string(models.DeliveryStatusFulfilled), deliveryID, string(models.DeliveryStatusDelivered),
	)
	d, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, classifyMissedCAS(ctx, tx, deliveryID)
		}
		return nil, fmt.Errorf("fulfill delivery: %w", err)
	}
	if d.StaffID != nil {
		if err := releaseStaffTx(ctx, tx, *d.StaffID); err != nil {
			return nil, err
		}
	}
	if err := recordTransitionTx(ctx, tx, d.ID, models.DeliveryStatusDelivered, d.Status, staffID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	notifyStatus(d.ID, models.DeliveryStatusDelivered, d.Status)
	return d, nil
}

// StaffSetStatus is the administrative override for staff-side preparation
// steps (accepted -> in_progress -> ready_for_pickup). The guarded accept and
// fulfill transitions stay with their own operations.
func StaffSetStatus(ctx context.Context, deliveryID, staffID int64, newStatus models.DeliveryStatus) (*models.Delivery, error) {
	if newStatus != models.DeliveryStatusInProgress && newStatus != models.DeliveryStatusReadyForPickup {
		return nil, ErrInvalidTransition
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current models.DeliveryStatus
	err = tx.QueryRow(ctx, `SELECT status FROM deliveries WHERE id = $1 FOR UPDATE`, deliveryID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !ValidTransition(current, newStatus, ActorStaff) {
		return nil, ErrInvalidTransition
	}

	row := tx.QueryRow(ctx, `
		UPDATE deliveries SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING `+deliveryColumns,
		string(newStatus), deliveryID, string(current),
	)
	d, err := scanDelivery(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidTransition
		}
		return nil, fmt.Errorf("set delivery status: %w", err)
	}
	if err := recordTransitionTx(ctx, tx, d.ID, current, newStatus, staffID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	notifyStatus(d.ID, current, newStatus)
	return d, nil
}

// CancelDelivery moves any non-terminal delivery to cancelled and refunds the
// stored total to its payment method. A bound driver or staff member is
// released if no longer needed.
func CancelDelivery(ctx context.Context, deliveryID int64) (*models.Delivery, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current models.DeliveryStatus
	var paymentMethodID, totalPrice int64
	var driverID, staffID *int64
	err = tx.QueryRow(ctx, `
		SELECT status, payment_method_id, total_price, driver_id, staff_id
		FROM deliveries WHERE id = $1 FOR UPDATE`,
		deliveryID,
	).Scan(&current, &paymentMethodID, &totalPrice, &driverID, &staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if current == models.DeliveryStatusCancelled {
		return nil, ErrAlreadyTerminal
	}
	if current == models.DeliveryStatusFulfilled {
		return nil, ErrInvalidTransition
	}

	if err := RefundTx(ctx, tx, paymentMethodID, totalPrice); err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE deliveries SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING `+deliveryColumns,
		string(models.DeliveryStatusCancelled), deliveryID, string(current),
	)
	d, err := scanDelivery(row)
	if err != nil {
		return nil, fmt.Errorf("cancel delivery: %w", err)
	}

	if driverID != nil {
		busy, err := driverHasOtherActiveTx(ctx, tx, *driverID, deliveryID)
		if err != nil {
			return nil, err
		}
		if !busy {
			if err := setDriverDutyTx(ctx, tx, *driverID, models.DutyAvailable); err != nil {
				return nil, err
			}
		}
	}
	if staffID != nil {
		if err := releaseStaffTx(ctx, tx, *staffID); err != nil {
			return nil, err
		}
	}
	if err := recordTransitionTx(ctx, tx, d.ID, current, models.DeliveryStatusCancelled, 0); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	notifyStatus(d.ID, current, models.DeliveryStatusCancelled)
	return d, nil
}

// RateDelivery records the customer's score for a fulfilled delivery, exactly
// once, and folds it into the driver's running average.
func RateDelivery(ctx context.Context, deliveryID, score int64) (*models.Delivery, error) {
	if score < 0 || score > maxRating {
		return nil, ErrInvalidScore
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status models.DeliveryStatus
	var isRated bool
	var driverID *int64
	err = tx.QueryRow(ctx, `
		SELECT status, is_rated, driver_id FROM deliveries WHERE id = $1 FOR UPDATE`,
		deliveryID,
	).Scan(&status, &isRated, &driverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if status != models.DeliveryStatusFulfilled {
		return nil, ErrNotFulfilled
	}
	if isRated {
		return nil, ErrAlreadyRated
	}
	if driverID == nil {
		return nil, ErrNotFound
	}

	if err := rateDriverTx(ctx, tx, *driverID, score); err != nil {
		return nil, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE deliveries SET is_rated = true, updated_at = now()
		WHERE id = $1
		RETURNING `+deliveryColumns,
		deliveryID,
	)
	d, err := scanDelivery(row)
	if err != nil {
		return nil, fmt.Errorf("mark delivery rated: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func GetDelivery(ctx context.Context, deliveryID int64) (*models.Delivery, error) {
	d, err := scanDelivery(db.Pool.QueryRow(ctx, `
		SELECT `+deliveryColumns+` FROM deliveries WHERE id = $1`,
		deliveryID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// GetDeliveryItems returns the frozen line items snapshotted at creation.
func GetDeliveryItems(ctx context.Context, deliveryID int64) ([]models.DeliveryItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, delivery_id, cart_item_id, product_id, quantity, unit_price, discount
		FROM delivery_items WHERE delivery_id = $1 ORDER BY id`,
		deliveryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []models.DeliveryItem
	for rows.Next() {
		var it models.DeliveryItem
		if err := rows.Scan(&it.ID, &it.DeliveryID, &it.CartItemID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Discount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func ListShowingDeliveries(ctx context.Context, customerShowingID int64) ([]models.Delivery, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+deliveryColumns+` FROM deliveries
		WHERE customer_showing_id = $1 ORDER BY id`,
		customerShowingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
