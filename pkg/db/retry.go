package db

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	txMaxAttempts  = 3
	txRetryBackoff = 50 * time.Millisecond
)

// Transact runs fn inside a transaction, retrying a bounded number of times
// on serialization conflicts. Validation errors from fn are never retried.
func Transact(ctx context.Context, conn *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = conn.WithContext(ctx).Transaction(fn)
		if err == nil || !IsSerializationErr(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txRetryBackoff):
		}
	}
	return err
}
