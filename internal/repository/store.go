package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

// pick returns the caller's unit of work when one is given, else the pool.
func pick(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

// insertReturningID runs a named INSERT ... RETURNING id. Both dialects support RETURNING.
func insertReturningID(ctx context.Context, exec sqlx.ExtContext, query string, arg interface{}) (int64, error) {
	bound, args, err := exec.BindNamed(query, arg)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := exec.QueryRowxContext(ctx, bound, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execAffecting runs a statement and reports NOT_FOUND when no row was touched.
func execAffecting(ctx context.Context, exec sqlx.ExtContext, op, query string, args ...interface{}) error {
	res, err := exec.ExecContext(ctx, exec.Rebind(query), args...)
	if err != nil {
		return storeError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeError(op, err)
	}
	if n == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, op+": not found")
	}
	return nil
}

func pageBounds(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize, (page - 1) * pageSize
}

func sortClause(sortBy, sortOrder, fallback string, allowed map[string]bool) string {
	if !allowed[sortBy] {
		sortBy = fallback
	}
	sortOrder = strings.ToUpper(sortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "ASC"
	}
	return sortBy + " " + sortOrder
}

// storeError converts driver failures into the error taxonomy. Errors that are already typed
// pass through unchanged.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.WrapAs(appErrors.ErrNotFound, err, op+": not found")
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23503":
			return appErrors.WrapAs(appErrors.ErrReferenceRestricted, err, op+": referenced by other records")
		case pqErr.Code == "23505":
			return appErrors.WrapAs(appErrors.ErrConflict, err, op+": duplicate value")
		case pqErr.Code.Class() == "22" || pqErr.Code == "23502" || pqErr.Code == "23514":
			return appErrors.WrapAs(appErrors.ErrValidation, err, op+": "+pqErr.Message)
		case pqErr.Code.Class() == "08" || pqErr.Code.Class() == "57" || pqErr.Code.Class() == "53":
			return appErrors.WrapAs(appErrors.ErrConnectivity, err, op+": store unavailable")
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return appErrors.WrapAs(appErrors.ErrReferenceRestricted, err, op+": referenced by other records")
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return appErrors.WrapAs(appErrors.ErrConflict, err, op+": duplicate value")
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return appErrors.WrapAs(appErrors.ErrValidation, err, op+": constraint failed")
		}
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			msg := liteErr.Error()
			if strings.Contains(msg, "FOREIGN KEY") {
				return appErrors.WrapAs(appErrors.ErrReferenceRestricted, err, op+": referenced by other records")
			}
			if strings.Contains(msg, "UNIQUE") {
				return appErrors.WrapAs(appErrors.ErrConflict, err, op+": duplicate value")
			}
			return appErrors.WrapAs(appErrors.ErrValidation, err, op+": constraint failed")
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_IOERR,
			sqlite3.SQLITE_READONLY, sqlite3.SQLITE_PERM, sqlite3.SQLITE_NOTADB:
			return appErrors.WrapAs(appErrors.ErrConnectivity, err, op+": store unavailable")
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if isConnectivity(err) {
		return appErrors.WrapAs(appErrors.ErrConnectivity, err, op+": store unavailable")
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectivity(err error) bool {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return true
	}
	return false
}
