package orm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// Metadata describes the table a Repository maps to.
type Metadata struct {
	Table      string
	PrimaryKey string
	Columns    []string
}

// Repository provides CRUD operations for one table. T must be a struct whose
// `db` tags match Metadata.Columns.
type Repository[T any] struct {
	db                DBExecutor
	metadata          Metadata
	middlewareManager *middlewareManager
}

func NewRepository[T any](db DBExecutor, metadata Metadata, middleware ...QueryMiddleware) (*Repository[T], error) {
	if metadata.Table == "" {
		return nil, ErrNoTable
	}
	if metadata.PrimaryKey == "" {
		return nil, ErrNoPrimaryKey
	}
	if len(metadata.Columns) == 0 {
		return nil, fmt.Errorf("orm: table %s has no columns", metadata.Table)
	}

	repo := &Repository[T]{
		db:       db,
		metadata: metadata,
	}
	if len(middleware) > 0 {
		repo.middlewareManager = newMiddlewareManager(middleware...)
	}
	return repo, nil
}

// MustRepository is NewRepository for static metadata known to be valid.
func MustRepository[T any](db DBExecutor, metadata Metadata, middleware ...QueryMiddleware) *Repository[T] {
	repo, err := NewRepository[T](db, metadata, middleware...)
	if err != nil {
		panic(err)
	}
	return repo
}

func (r *Repository[T]) TableName() string {
	return r.metadata.Table
}

// Columns returns the table-qualified select list.
func (r *Repository[T]) Columns() []string {
	cols := make([]string, len(r.metadata.Columns))
	for i, c := range r.metadata.Columns {
		cols[i] = r.metadata.Table + "." + c
	}
	return cols
}

func (r *Repository[T]) Executor() DBExecutor {
	return r.db
}

func (r *Repository[T]) returning() string {
	return "RETURNING " + strings.Join(r.metadata.Columns, ", ")
}

// Insert writes one row and returns it as stored, including database defaults.
func (r *Repository[T]) Insert(ctx context.Context, values map[string]interface{}) (*T, error) {
	builder := squirrel.Insert(r.metadata.Table).
		SetMap(values).
		Suffix(r.returning()).
		PlaceholderFormat(squirrel.Dollar)

	var record T
	err := r.executeQueryMiddleware(OpCreate, ctx, values, builder, func(mctx *MiddlewareContext) error {
		query, args, err := mctx.QueryBuilder.(squirrel.InsertBuilder).ToSql()
		if err != nil {
			return &Error{Op: "create", Table: r.metadata.Table, Err: fmt.Errorf("failed to build insert: %w", err)}
		}
		mctx.Query, mctx.Args = query, args

		if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
			return ParsePostgreSQLError(err, "create", r.metadata.Table)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateByID applies updates to one row and returns the refreshed row.
func (r *Repository[T]) UpdateByID(ctx context.Context, id interface{}, updates map[string]interface{}) (*T, error) {
	if len(updates) == 0 {
		return nil, &Error{Op: "update", Table: r.metadata.Table, Err: fmt.Errorf("no updates provided")}
	}

	builder := squirrel.Update(r.metadata.Table).
		SetMap(updates).
		Where(squirrel.Eq{r.metadata.PrimaryKey: id}).
		Suffix(r.returning()).
		PlaceholderFormat(squirrel.Dollar)

	var record T
	err := r.executeQueryMiddleware(OpUpdate, ctx, updates, builder, func(mctx *MiddlewareContext) error {
		query, args, err := mctx.QueryBuilder.(squirrel.UpdateBuilder).ToSql()
		if err != nil {
			return &Error{Op: "update", Table: r.metadata.Table, Err: fmt.Errorf("failed to build update: %w", err)}
		}
		mctx.Query, mctx.Args = query, args

		if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
			return ParsePostgreSQLError(err, "update", r.metadata.Table)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteByID removes one row, returning ErrNotFound when nothing matched.
func (r *Repository[T]) DeleteByID(ctx context.Context, id interface{}) error {
	n, err := r.Query(ctx).
		Where(Condition{squirrel.Eq{r.metadata.PrimaryKey: id}}).
		Delete()
	if err != nil {
		return err
	}
	if n == 0 {
		return &Error{Op: "delete", Table: r.metadata.Table, Err: ErrNotFound}
	}
	return nil
}

// Exec runs a statement built outside the query builder, e.g. an insert into
// a join table with no model of its own.
func (r *Repository[T]) Exec(ctx context.Context, builder squirrel.Sqlizer) (int64, error) {
	var affected int64
	err := r.executeQueryMiddleware(OpExec, ctx, nil, builder, func(mctx *MiddlewareContext) error {
		query, args, err := builder.ToSql()
		if err != nil {
			return &Error{Op: "exec", Table: r.metadata.Table, Err: fmt.Errorf("failed to build statement: %w", err)}
		}
		mctx.Query, mctx.Args = query, args

		result, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return ParsePostgreSQLError(err, "exec", r.metadata.Table)
		}
		affected, err = result.RowsAffected()
		if err != nil {
			return &Error{Op: "exec", Table: r.metadata.Table, Err: fmt.Errorf("failed to get rows affected: %w", err)}
		}
		return nil
	})
	return affected, err
}
