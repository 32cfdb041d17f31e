package orm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Common errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrNoPrimaryKey     = errors.New("no primary key defined")
	ErrNoTable          = errors.New("no table defined")
	ErrDuplicateKey     = errors.New("duplicate key violation")
	ErrForeignKey       = errors.New("foreign key violation")
	ErrCheckConstraint  = errors.New("check constraint violation")
	ErrNotNull          = errors.New("not null constraint violation")
	ErrConnectionFailed = errors.New("database connection failed")
	ErrTimeout          = errors.New("operation timeout")
	ErrCanceled         = errors.New("operation canceled")
)

// Error provides detailed error information
type Error struct {
	Op         string // Operation that failed
	Table      string // Table involved
	Err        error  // Underlying error
	Constraint string // Constraint name (if applicable)
	Column     string // Column name (if applicable)
	Retryable  bool
}

func (e *Error) Error() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("orm: %s", e.Op))

	if e.Table != "" {
		parts = append(parts, fmt.Sprintf("table=%s", e.Table))
	}

	if e.Column != "" {
		parts = append(parts, fmt.Sprintf("column=%s", e.Column))
	}

	if e.Constraint != "" {
		parts = append(parts, fmt.Sprintf("constraint=%s", e.Constraint))
	}

	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for Error type
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.Err, target)
	}

	if t.Op != "" && e.Op == t.Op {
		return true
	}

	return errors.Is(e.Err, t.Err)
}

// postgres SQLSTATE codes we classify
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeQueryCanceled       = "57014"
)

// ParsePostgreSQLError converts driver errors to ORM errors
func ParsePostgreSQLError(err error, op, table string) error {
	if err == nil {
		return nil
	}

	var ormErr *Error
	if errors.As(err, &ormErr) {
		return err
	}

	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Op: op, Table: table, Err: ErrNotFound}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeUniqueViolation:
			return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: pqErr.Constraint}
		case codeForeignKeyViolation:
			return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: pqErr.Constraint}
		case codeNotNullViolation:
			return &Error{Op: op, Table: table, Err: ErrNotNull, Column: pqErr.Column}
		case codeCheckViolation:
			return &Error{Op: op, Table: table, Err: ErrCheckConstraint, Constraint: pqErr.Constraint}
		case codeQueryCanceled:
			return &Error{Op: op, Table: table, Err: ErrCanceled}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Table: table, Err: ErrTimeout, Retryable: true}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Op: op, Table: table, Err: ErrCanceled}
	}

	errStr := err.Error()

	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return &Error{Op: op, Table: table, Err: ErrDuplicateKey, Constraint: extractConstraintName(errStr)}
	}

	if strings.Contains(errStr, "violates foreign key constraint") {
		return &Error{Op: op, Table: table, Err: ErrForeignKey, Constraint: extractConstraintName(errStr)}
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "broken pipe") {
		return &Error{Op: op, Table: table, Err: ErrConnectionFailed, Retryable: true}
	}

	return &Error{Op: op, Table: table, Err: err}
}

func extractConstraintName(errStr string) string {
	start := strings.Index(errStr, "\"")
	if start == -1 {
		return ""
	}
	end := strings.Index(errStr[start+1:], "\"")
	if end == -1 {
		return ""
	}
	return errStr[start+1 : start+1+end]
}

// ValidationError represents validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintError checks if an error is a constraint violation
func IsConstraintError(err error) bool {
	return errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrForeignKey) ||
		errors.Is(err, ErrCheckConstraint) ||
		errors.Is(err, ErrNotNull)
}

// GetConstraintName extracts the constraint name from an error
func GetConstraintName(err error) string {
	var ormErr *Error
	if errors.As(err, &ormErr) {
		return ormErr.Constraint
	}
	return ""
}
