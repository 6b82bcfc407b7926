package reliability

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// retryableSQLStates are SQLSTATE classes and codes worth a client retry.
var retryableSQLStates = []string{
	"08",    // connection exception
	"40",    // transaction rollback (serialization, deadlock)
	"53",    // insufficient resources
	"57P01", // admin shutdown
	"57P03", // cannot connect now
}

// IsRetryable reports whether a store failure is transient: timeouts,
// connection loss before anything was sent, or a transient SQLSTATE.
// Argument and lookup errors are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, prefix := range retryableSQLStates {
			if strings.HasPrefix(pgErr.Code, prefix) {
				return true
			}
		}
	}
	return false
}
