package service

import (
	"context"
	"fmt"

	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/apperror"

	"github.com/google/uuid"
)

// maxNumberAttempts bounds both the skip-over of numbers already in use and
// the re-run of a unit of work that lost a uniqueness race.
const maxNumberAttempts = 3

// FormatDocumentNumber renders prefix + zero-padded counter: PR0001, SR0042, PR12345.
func FormatDocumentNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

// numberTaken reports whether a candidate number already exists for the tenant.
type numberTaken func(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)

// nextDocumentNumber draws the next number for (tenant, prefix) inside tx,
// skipping values already used by rows written before the sequence existed.
func nextDocumentNumber(ctx context.Context, tx *repository.Store, tenantID uuid.UUID, prefix string, taken numberTaken) (string, error) {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		n, err := tx.Sequences.Next(ctx, tenantID, prefix)
		if err != nil {
			return "", fmt.Errorf("next %s number: %w", prefix, err)
		}
		number := FormatDocumentNumber(prefix, n)
		if taken == nil {
			return number, nil
		}
		exists, err := taken(ctx, tenantID, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", apperror.ErrDuplicate.WithMessage("could not allocate a unique " + prefix + " number")
}

// withNumberRetry re-runs fn, which must be a whole unit of work, while it
// fails on a uniqueness violation. A re-run sees the counter value committed
// by the competing transaction and so draws a different number.
func withNumberRetry(fn func() error) error {
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		err := fn()
		if err == nil || !isDuplicate(err) {
			return err
		}
	}
	return apperror.ErrDuplicate.WithMessage("document number already in use")
}
