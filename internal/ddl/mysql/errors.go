package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/koustreak/tpchkit/internal/errs"
)

// MySQL error numbers
// Full list: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	errDuplicateEntry  = 1062
	errNoReferencedRow = 1452
	errRowIsReferenced = 1451
	errBadFieldError   = 1054
	errAccessDenied    = 1045
	errConnRefused     = 2003
	errUnknownDatabase = 1049
)

// mapError converts a MySQL driver error into a *errs.Error.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}

	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errDuplicateEntry:
			// The server caught a duplicate key the validation layer
			// should have rejected first.
			return errs.Wrap(errs.ErrKindUniqueness,
				fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
		case errNoReferencedRow, errRowIsReferenced:
			return errs.Wrap(errs.ErrKindDanglingRef,
				fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
		case errAccessDenied, errConnRefused, errUnknownDatabase:
			return errs.Wrap(errs.ErrKindConnectionFailed,
				fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
		case errBadFieldError:
			return errs.Wrap(errs.ErrKindInvalidInput,
				fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
		default:
			return errs.Wrap(errs.ErrKindQueryFailed,
				fmt.Sprintf("%s: %s", msg, mysqlErr.Message), err)
		}
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
