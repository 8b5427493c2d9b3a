package mysql

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tpchkit/internal/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"nil passthrough", nil, nil},
		{"deadline", context.DeadlineExceeded, errs.IsTimeout},
		{"no rows", sql.ErrNoRows, errs.IsNotFound},
		{"duplicate entry", &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, errs.IsUniqueness},
		{"no referenced row", &gomysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, errs.IsDanglingRef},
		{"row is referenced", &gomysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"}, errs.IsDanglingRef},
		{"access denied", &gomysql.MySQLError{Number: 1045, Message: "Access denied"}, errs.IsConnectionFailed},
		{"unknown database", &gomysql.MySQLError{Number: 1049, Message: "Unknown database"}, errs.IsConnectionFailed},
		{"bad field", &gomysql.MySQLError{Number: 1054, Message: "Unknown column"}, errs.IsInvalidInput},
		{"other server error", &gomysql.MySQLError{Number: 1064, Message: "syntax error"}, errs.IsQueryFailed},
		{"network error", errors.New("dial tcp: connection refused"), errs.IsConnectionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(tt.err, "load region")
			if tt.err == nil {
				assert.Nil(t, mapped)
				return
			}
			require.NotNil(t, mapped)
			assert.True(t, tt.check(mapped))
			assert.True(t, errors.Is(mapped, tt.err))
		})
	}
}
