package services

import (
	"context"
	"errors"
	"fmt"

	"theatre-concessions/db"
	"theatre-concessions/models"

	"github.com/jackc/pgx/v5"
)

// RegisterStaff creates a staff record for a theatre. New staff start
// available.
func RegisterStaff(ctx context.Context, userID, theatreID int64, role string) (*models.Staff, error) {
	switch role {
	case models.StaffRoleAdmin, models.StaffRoleRunner:
	default:
		return nil, fmt.Errorf("invalid staff role: %s", role)
	}
	var s models.Staff
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO staff (user_id, theatre_id, role, is_available)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (user_id) DO UPDATE SET theatre_id = $2, role = $3
		RETURNING user_id, theatre_id, role, is_available`,
		userID, theatreID, role,
	).Scan(&s.UserID, &s.TheatreID, &s.Role, &s.Available)
	if err != nil {
		return nil, fmt.Errorf("register staff: %w", err)
	}
	return &s, nil
}

func GetStaff(ctx context.Context, userID int64) (*models.Staff, error) {
	var s models.Staff
	err := db.Pool.QueryRow(ctx, `
		SELECT user_id, theatre_id, role, is_available FROM staff WHERE user_id = $1`,
		userID,
	).Scan(&s.UserID, &s.TheatreID, &s.Role, &s.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// SetStaffAvailability is the administrative override: it sets the flag
// unconditionally, even if the staff member has a delivery in flight. Normal
// flips happen inside accept/fulfill transactions.
func SetStaffAvailability(ctx context.Context, userID int64, available bool) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE staff SET is_available = $1 WHERE user_id = $2`,
		available, userID,
	)
	if err != nil {
		return fmt.Errorf("set staff availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// acceptStaffTx flips an available staff member to busy inside the caller's
// transaction. Distinguishes missing staff from unavailable staff.
func acceptStaffTx(ctx context.Context, tx pgx.Tx, userID int64) error {
	tag, err := tx.Exec(ctx, `
		UPDATE staff SET is_available = false WHERE user_id = $1 AND is_available`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("flip staff availability: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM staff WHERE user_id = $1)`, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrStaffUnavailable
	}
	return nil
}

func releaseStaffTx(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `UPDATE staff SET is_available = true WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("release staff availability: %w", err)
	}
	return nil
}
