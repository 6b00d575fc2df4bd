package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ForeignKeyError reports an insert that referenced a missing row
type ForeignKeyError struct {
	Column string
}

func (e *ForeignKeyError) Error() string {
	return fmt.Sprintf("referenced row for %s does not exist", e.Column)
}

// unavailableError keeps the driver error while matching ErrStoreUnavailable
type unavailableError struct {
	err error
}

func (e *unavailableError) Error() string {
	return fmt.Sprintf("%v: %v", ErrStoreUnavailable, e.err)
}

func (e *unavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func (e *unavailableError) Unwrap() error {
	return e.err
}

// classify turns driver errors into the errors callers can act on
func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23503":
			return &ForeignKeyError{Column: fkColumn(pqErr.Constraint)}
		case pqErr.Code.Class() == "08", // connection_exception
			pqErr.Code.Class() == "53", // insufficient_resources
			pqErr.Code == "57P01",      // admin_shutdown
			pqErr.Code == "57P02",      // crash_shutdown
			pqErr.Code == "57P03":      // cannot_connect_now
			return &unavailableError{err: err}
		}
		return err
	}

	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr) {
		return &unavailableError{err: err}
	}
	return err
}

func fkColumn(constraint string) string {
	for _, col := range []string{"offer_id", "receiver_id", "sender_id"} {
		if strings.Contains(constraint, col) {
			return col
		}
	}
	return constraint
}
