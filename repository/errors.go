package repository

import (
	"errors"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	apperrors "taskManagementAPI/internal/errors"
)

// isUniqueViolation reports whether err is a SQLite UNIQUE/PRIMARY KEY failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// mapWriteErr turns a unique violation into a Conflict carrying msg and wraps
// anything else with the operation name.
func mapWriteErr(op string, err error, msg string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return apperrors.Wrap(apperrors.CodeConflict, msg, err)
	}
	var de *apperrors.Error
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
