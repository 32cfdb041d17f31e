package orm

import (
	"context"
	"time"
)

// OperationType represents different types of database operations
type OperationType string

const (
	OpCreate OperationType = "create"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
	OpQuery  OperationType = "query"
	OpExec   OperationType = "exec"
)

// MiddlewareContext contains information passed to middleware
type MiddlewareContext struct {
	Operation    OperationType
	TableName    string
	Record       interface{}
	QueryBuilder interface{} // squirrel.SelectBuilder, squirrel.InsertBuilder, etc.
	Query        string
	Args         []interface{}
	StartTime    time.Time
	Context      context.Context
}

// QueryMiddlewareFunc represents middleware that can modify queries
type QueryMiddlewareFunc func(ctx *MiddlewareContext) error

// QueryMiddleware wraps query execution
type QueryMiddleware func(next QueryMiddlewareFunc) QueryMiddlewareFunc

type middlewareManager struct {
	middleware []QueryMiddleware
}

func newMiddlewareManager(middleware ...QueryMiddleware) *middlewareManager {
	return &middlewareManager{
		middleware: append([]QueryMiddleware(nil), middleware...),
	}
}

func (mm *middlewareManager) ExecuteMiddleware(ctx *MiddlewareContext, finalFunc QueryMiddlewareFunc) error {
	handler := finalFunc

	for i := len(mm.middleware) - 1; i >= 0; i-- {
		handler = mm.middleware[i](handler)
	}

	return handler(ctx)
}

func (r *Repository[T]) executeQueryMiddleware(op OperationType, ctx context.Context, record interface{}, queryBuilder interface{}, finalFunc QueryMiddlewareFunc) error {
	middlewareCtx := &MiddlewareContext{
		Operation:    op,
		TableName:    r.metadata.Table,
		Record:       record,
		QueryBuilder: queryBuilder,
		Context:      ctx,
		StartTime:    time.Now(),
	}

	if r.middlewareManager == nil {
		return finalFunc(middlewareCtx)
	}

	return r.middlewareManager.ExecuteMiddleware(middlewareCtx, finalFunc)
}

// QueryLogger is the subset of a structured logger the logging middleware needs.
type QueryLogger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Warn(msg interface{}, keyvals ...interface{})
}

// LoggingMiddleware logs every statement with its duration. Failed statements
// are logged at warn level.
func LoggingMiddleware(logger QueryLogger) QueryMiddleware {
	return func(next QueryMiddlewareFunc) QueryMiddlewareFunc {
		return func(ctx *MiddlewareContext) error {
			err := next(ctx)

			duration := time.Since(ctx.StartTime)
			if err != nil {
				logger.Warn("query failed", "op", ctx.Operation, "table", ctx.TableName, "duration", duration, "err", err)
			} else {
				logger.Debug("query", "op", ctx.Operation, "table", ctx.TableName, "sql", ctx.Query, "duration", duration)
			}

			return err
		}
	}
}
