package services

import (
	"context"
	"errors"
	"fmt"

	"theatre-concessions/db"
	"theatre-concessions/models"

	"github.com/jackc/pgx/v5"
)

const maxRating = 500 // 5.00 in fixed-point hundredths

// applyRating folds one score into the running average, half-up rounded to
// hundredths. The first-ever rating is taken verbatim to avoid division
// artifacts.
func applyRating(rating, totalDeliveries, score int64) (int64, int64) {
	if totalDeliveries == 0 {
		return score, 1
	}
	num := rating*totalDeliveries + score
	den := totalDeliveries + 1
	newRating := (2*num + den) / (2 * den)
	if newRating < 0 {
		newRating = 0
	}
	if newRating > maxRating {
		newRating = maxRating
	}
	return newRating, den
}

// RegisterDriver creates a driver record, or returns the existing one. New
// drivers start unavailable with no rating.
func RegisterDriver(ctx context.Context, userID int64) (*models.Driver, error) {
	var d models.Driver
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO drivers (user_id, duty_status, rating, total_deliveries)
		VALUES ($1, $2, 0, 0)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, duty_status, rating, total_deliveries`,
		userID, models.DutyUnavailable,
	).Scan(&d.UserID, &d.DutyStatus, &d.Rating, &d.TotalDeliveries)
	if err != nil {
		return nil, fmt.Errorf("register driver: %w", err)
	}
	return &d, nil
}

func GetDriver(ctx context.Context, userID int64) (*models.Driver, error) {
	var d models.Driver
	err := db.Pool.QueryRow(ctx, `
		SELECT user_id, duty_status, rating, total_deliveries
		FROM drivers WHERE user_id = $1`,
		userID,
	).Scan(&d.UserID, &d.DutyStatus, &d.Rating, &d.TotalDeliveries)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// SetDriverDuty sets a driver's duty status (going on or off shift).
func SetDriverDuty(ctx context.Context, userID int64, status string) error {
	switch status {
	case models.DutyUnavailable, models.DutyAvailable, models.DutyOnDelivery:
	default:
		return fmt.Errorf("invalid duty status: %s", status)
	}
	tag, err := db.Pool.Exec(ctx, `
		UPDATE drivers SET duty_status = $1 WHERE user_id = $2`,
		status, userID,
	)
	if err != nil {
		return fmt.Errorf("set duty status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BestAvailableDriver returns the available driver with the highest rating,
// ties broken by lowest user id, or nil when nobody is available.
func BestAvailableDriver(ctx context.Context) (*models.Driver, error) {
	var d models.Driver
	err := db.Pool.QueryRow(ctx, `
		SELECT user_id, duty_status, rating, total_deliveries
		FROM drivers WHERE duty_status = $1
		ORDER BY rating DESC, user_id ASC LIMIT 1`,
		models.DutyAvailable,
	).Scan(&d.UserID, &d.DutyStatus, &d.Rating, &d.TotalDeliveries)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// bestAvailableDriverTx is BestAvailableDriver inside the caller's
// transaction, locking the chosen row so two concurrent assignments cannot
// pick the same driver.
func bestAvailableDriverTx(ctx context.Context, tx pgx.Tx) (*models.Driver, error) {
	var d models.Driver
	err := tx.QueryRow(ctx, `
		SELECT user_id, duty_status, rating, total_deliveries
		FROM drivers WHERE duty_status = $1
		ORDER BY rating DESC, user_id ASC LIMIT 1
		FOR UPDATE SKIP LOCKED`,
		models.DutyAvailable,
	).Scan(&d.UserID, &d.DutyStatus, &d.Rating, &d.TotalDeliveries)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func setDriverDutyTx(ctx context.Context, tx pgx.Tx, userID int64, status string) error {
	tag, err := tx.Exec(ctx, `UPDATE drivers SET duty_status = $1 WHERE user_id = $2`, status, userID)
	if err != nil {
		return fmt.Errorf("set duty status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// driverHasOtherActiveTx reports whether the driver has another delivery still
// in a hand-off state (ready_for_pickup or in_transit) besides the given one.
func driverHasOtherActiveTx(ctx context.Context, tx pgx.Tx, driverID, excludeDeliveryID int64) (bool, error) {
	var count int
	err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM deliveries
		WHERE driver_id = $1 AND id != $2 AND status IN ($3, $4)`,
		driverID, excludeDeliveryID,
		models.DeliveryStatusReadyForPickup, models.DeliveryStatusInTransit,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// rateDriverTx folds a score into the driver's running average inside the
// caller's transaction. Score is fixed-point hundredths in [0, 500].
func rateDriverTx(ctx context.Context, tx pgx.Tx, driverID, score int64) error {
	var rating, total int64
	err := tx.QueryRow(ctx, `
		SELECT rating, total_deliveries FROM drivers WHERE user_id = $1 FOR UPDATE`,
		driverID,
	).Scan(&rating, &total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock driver: %w", err)
	}
	newRating, newTotal := applyRating(rating, total, score)
	if _, err := tx.Exec(ctx, `
		UPDATE drivers SET rating = $1, total_deliveries = $2 WHERE user_id = $3`,
		newRating, newTotal, driverID,
	); err != nil {
		return fmt.Errorf("update driver rating: %w", err)
	}
	return nil
}
