package database

import (
	"strings"

	"github.com/lib/pq"

	"github.com/fuelstock/fuelstock-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Lock wait exceeded lock_timeout (55P03)
	case "55P03":
		return errors.TransactionConflict()

	// Serialization failure (40001) and deadlock detected (40P01)
	case "40001", "40P01":
		return errors.TransactionConflict()

	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "quantity_non_negative"):
		return errors.Validation(map[string]string{
			"quantity": "must not be negative",
		})

	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: in_stock, expiring_soon, expired, empty",
		})

	case strings.Contains(constraint, "action_valid"):
		return errors.Validation(map[string]string{
			"action": "must be one of: restock, sold, removed_expired, removed_manual",
		})

	case strings.Contains(constraint, "role_valid"):
		return errors.Validation(map[string]string{
			"role": "must be one of: admin, manager, operator",
		})

	case strings.Contains(constraint, "threshold_positive"):
		return errors.Validation(map[string]string{
			"notification_threshold_days": "must be at least 1",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "lot_code"):
		return "a lot with this code already exists"
	case strings.Contains(constraint, "notifications_lot"):
		return "a notification for this lot was already recorded"
	case strings.Contains(constraint, "categories_name"):
		return "a category with this name already exists"
	case strings.Contains(constraint, "barcode"):
		return "a product with this barcode already exists"
	case strings.Contains(constraint, "email"):
		return "a user with this email already exists"
	default:
		return "a record with these values already exists"
	}
}
