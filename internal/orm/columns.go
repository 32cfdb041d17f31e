package orm

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

// Column is a typed reference to a table column.
type Column[T any] struct {
	Name  string
	Table string
}

func (c Column[T]) String() string {
	if c.Table != "" {
		return fmt.Sprintf("%s.%s", c.Table, c.Name)
	}
	return c.Name
}

func (c Column[T]) Eq(value T) Condition {
	return Condition{squirrel.Eq{c.String(): value}}
}

func (c Column[T]) In(values ...T) Condition {
	interfaces := make([]interface{}, len(values))
	for i, v := range values {
		interfaces[i] = v
	}
	return Condition{squirrel.Eq{c.String(): interfaces}}
}

func (c Column[T]) Asc() string {
	return c.String() + " ASC"
}

// StringColumn adds pattern matching to text columns.
type StringColumn struct {
	Column[string]
}

func (c StringColumn) ILike(pattern string) Condition {
	return Condition{squirrel.ILike{c.String(): pattern}}
}

// EqualFold matches the column case-insensitively against value.
func (c StringColumn) EqualFold(value string) Condition {
	return Condition{squirrel.Expr("LOWER("+c.String()+") = LOWER(?)", value)}
}

// Contains is a case-insensitive substring match.
func (c StringColumn) Contains(substring string) Condition {
	return c.ILike("%" + escapeLike(substring) + "%")
}

// TimeColumn is a timestamp column; the repositories only order by it.
type TimeColumn struct {
	Column[time.Time]
}

// Condition wraps a squirrel predicate.
type Condition struct {
	condition squirrel.Sqlizer
}

func (c Condition) ToSqlizer() squirrel.Sqlizer {
	return c.condition
}

// escapeLike escapes LIKE metacharacters byte by byte, leaving invalid
// UTF-8 untouched.
func escapeLike(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
