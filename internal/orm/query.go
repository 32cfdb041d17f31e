package orm

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// JoinType represents different types of SQL joins
type JoinType string

const InnerJoin JoinType = "INNER JOIN"

type join struct {
	Type      JoinType
	Table     string
	Condition string
}

// Query provides a fluent interface for building select, update and delete
// statements against a repository's table.
type Query[T any] struct {
	repo *Repository[T]
	ctx  context.Context

	limit       *uint64
	orderBy     []string
	whereClause squirrel.And
	joins       []join
	forUpdate   bool
}

func (r *Repository[T]) Query(ctx context.Context) *Query[T] {
	return &Query[T]{
		repo:        r,
		ctx:         ctx,
		whereClause: squirrel.And{},
	}
}

func (q *Query[T]) Where(condition Condition) *Query[T] {
	q.whereClause = append(q.whereClause, condition.ToSqlizer())
	return q
}

func (q *Query[T]) OrderBy(expressions ...string) *Query[T] {
	q.orderBy = append(q.orderBy, expressions...)
	return q
}

func (q *Query[T]) Limit(limit uint64) *Query[T] {
	q.limit = &limit
	return q
}

func (q *Query[T]) InnerJoin(table, condition string) *Query[T] {
	q.joins = append(q.joins, join{Type: InnerJoin, Table: table, Condition: condition})
	return q
}

// ForUpdate locks the selected rows until the surrounding transaction ends.
func (q *Query[T]) ForUpdate() *Query[T] {
	q.forUpdate = true
	return q
}

func (q *Query[T]) applyJoinsAndWhere(builder squirrel.SelectBuilder) squirrel.SelectBuilder {
	for _, j := range q.joins {
		builder = builder.JoinClause(fmt.Sprintf("%s %s ON %s", j.Type, j.Table, j.Condition))
	}

	if len(q.whereClause) > 0 {
		builder = builder.Where(q.whereClause)
	}
	return builder
}

func (q *Query[T]) selectBuilder() squirrel.SelectBuilder {
	builder := squirrel.Select(q.repo.Columns()...).
		From(q.repo.metadata.Table).
		PlaceholderFormat(squirrel.Dollar)

	builder = q.applyJoinsAndWhere(builder)

	for _, orderBy := range q.orderBy {
		builder = builder.OrderBy(orderBy)
	}

	if q.limit != nil {
		builder = builder.Limit(*q.limit)
	}

	if q.forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	return builder
}

func (q *Query[T]) Find() ([]T, error) {
	records := make([]T, 0)
	err := q.repo.executeQueryMiddleware(OpQuery, q.ctx, nil, q.selectBuilder(), func(mctx *MiddlewareContext) error {
		sqlQuery, args, err := mctx.QueryBuilder.(squirrel.SelectBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "find",
				Table: q.repo.metadata.Table,
				Err:   fmt.Errorf("failed to build query: %w", err),
			}
		}
		mctx.Query, mctx.Args = sqlQuery, args

		if err := q.repo.db.SelectContext(q.ctx, &records, sqlQuery, args...); err != nil {
			return ParsePostgreSQLError(err, "find", q.repo.metadata.Table)
		}
		return nil
	})

	return records, err
}

func (q *Query[T]) First() (*T, error) {
	q.Limit(1)
	records, err := q.Find()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, &Error{
			Op:    "first",
			Table: q.repo.metadata.Table,
			Err:   ErrNotFound,
		}
	}

	return &records[0], nil
}

// FirstOrNil is First with absence reported as a nil record instead of an error.
func (q *Query[T]) FirstOrNil() (*T, error) {
	record, err := q.First()
	if IsNotFound(err) {
		return nil, nil
	}
	return record, err
}

func (q *Query[T]) Count() (int64, error) {
	builder := q.applyJoinsAndWhere(squirrel.Select("COUNT(*)").
		From(q.repo.metadata.Table).
		PlaceholderFormat(squirrel.Dollar))

	var count int64
	err := q.repo.executeQueryMiddleware(OpQuery, q.ctx, nil, builder, func(mctx *MiddlewareContext) error {
		sqlQuery, args, err := mctx.QueryBuilder.(squirrel.SelectBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "count",
				Table: q.repo.metadata.Table,
				Err:   fmt.Errorf("failed to build count query: %w", err),
			}
		}
		mctx.Query, mctx.Args = sqlQuery, args

		if err := q.repo.db.GetContext(q.ctx, &count, sqlQuery, args...); err != nil {
			return ParsePostgreSQLError(err, "count", q.repo.metadata.Table)
		}
		return nil
	})

	return count, err
}

func (q *Query[T]) Exists() (bool, error) {
	count, err := q.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes every row matching the where clause.
func (q *Query[T]) Delete() (int64, error) {
	deleteBuilder := squirrel.Delete(q.repo.metadata.Table).
		PlaceholderFormat(squirrel.Dollar)

	if len(q.whereClause) > 0 {
		deleteBuilder = deleteBuilder.Where(q.whereClause)
	}

	var rowsAffected int64
	err := q.repo.executeQueryMiddleware(OpDelete, q.ctx, nil, deleteBuilder, func(mctx *MiddlewareContext) error {
		sqlQuery, args, err := mctx.QueryBuilder.(squirrel.DeleteBuilder).ToSql()
		if err != nil {
			return &Error{
				Op:    "delete",
				Table: q.repo.metadata.Table,
				Err:   fmt.Errorf("failed to build delete query: %w", err),
			}
		}
		mctx.Query, mctx.Args = sqlQuery, args

		result, err := q.repo.db.ExecContext(q.ctx, sqlQuery, args...)
		if err != nil {
			return ParsePostgreSQLError(err, "delete", q.repo.metadata.Table)
		}

		rowsAffected, err = result.RowsAffected()
		if err != nil {
			return &Error{
				Op:    "delete",
				Table: q.repo.metadata.Table,
				Err:   fmt.Errorf("failed to get rows affected: %w", err),
			}
		}

		return nil
	})

	return rowsAffected, err
}
