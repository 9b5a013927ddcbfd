package engine

import (
	"context"
	"errors"

	"github.com/use-agent/yokatlas/models"
)

// categorizeError tags context expiry so logs tell timeouts apart from
// source failures. Other errors pass through unchanged.
func categorizeError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewAcquireError(models.ErrCodeTimeout, "", "deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return models.NewAcquireError(models.ErrCodeTimeout, "", "request canceled", err)
	default:
		return err
	}
}
