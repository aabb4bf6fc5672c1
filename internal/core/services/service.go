package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"lawdesk-api/internal/core/domain"
)

// Actor identifies who performs a mutation and from where
type Actor struct {
	UserID uint
	IP     string
}

// Clock returns the current time; tests replace it
type Clock func() time.Time

// lookup maps a repository read error to missing or unexpected
func lookup(err error, missing *domain.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return domain.Unexpected(err)
}

// duplicate maps a unique index violation to taken
func duplicate(err error, taken *domain.Error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return taken
	}
	return err
}

// unexpected wraps err unless it already carries a kind
func unexpected(err error) error {
	if err == nil || domain.AsError(err) != nil {
		return err
	}
	return domain.Unexpected(err)
}

// inTx runs fn in one transaction. Failures without a kind are logged
// with their cause and reported as unexpected.
func inTx(ctx context.Context, db *gorm.DB, op string, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if domain.AsError(err) == nil {
		slog.ErrorContext(ctx, "transaction rolled back", "op", op, "error", err)
		return domain.Unexpected(err)
	}
	if errors.Is(err, domain.ErrUnexpected) {
		slog.ErrorContext(ctx, "transaction rolled back", "op", op, "error", err)
	}
	return err
}
