package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("unique constraint violated")
	// ErrForeignKey 违反外键约束
	ErrForeignKey = errors.New("foreign key constraint violated")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate 将驱动错误归类为仓储错误，保留原始错误链
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &classified{kind: ErrDuplicate, err: err}
		case pgForeignKeyViolation:
			return &classified{kind: ErrForeignKey, err: err}
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return &classified{kind: ErrDuplicate, err: err}
		case sqlite3.ErrConstraintForeignKey:
			return &classified{kind: ErrForeignKey, err: err}
		}
	}
	return err
}

// classified matches its sentinel with errors.Is and still unwraps to the driver error.
type classified struct {
	kind error
	err  error
}

func (c *classified) Error() string { return c.kind.Error() + ": " + c.err.Error() }

func (c *classified) Is(target error) bool { return target == c.kind }

func (c *classified) Unwrap() error { return c.err }
