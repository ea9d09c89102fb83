package repository

import (
	"github.com/lib/pq"

	appErrors "github.com/duskraven/mailraven-backend/internal/errors"
)

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == pgUniqueViolation
}

// storageErr tags datastore failures as retryable, leaving already
// classified errors alone.
func storageErr(err error) error {
	if err == nil {
		return nil
	}
	if appErrors.KindOf(err) != 0 {
		return err
	}
	return appErrors.NewStorage(err)
}
