package gormdb

import (
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/trezcool/schoolsaas/core"
)

var errMissingRef = errors.New("a referenced record does not exist")

type violation int

const (
	noViolation violation = iota
	fkViolation
	uniqueViolation
)

// classify recognizes constraint violations of both supported drivers.
func classify(err error) violation {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23503":
			return fkViolation
		case "23505":
			return uniqueViolation
		}
		return noViolation
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch sqErr.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			return fkViolation
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return uniqueViolation
		}
		return noViolation
	}

	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fkViolation
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return uniqueViolation
	}
	return noViolation
}

// writeErr maps the error of an insert or update.
func writeErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	switch classify(err) {
	case fkViolation:
		return core.NewValidationError(errMissingRef)
	case uniqueViolation:
		return core.ErrConflict
	}
	return errors.Wrap(err, msg)
}

// deleteErr maps the error of a delete. Rows still referenced cannot be deleted.
func deleteErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if classify(err) == fkViolation {
		return core.ErrInUse
	}
	return errors.Wrap(err, msg)
}

// readErr maps gorm's "record not found" to the NotFoundError of the entity.
func readErr(err error, notFound error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return errors.Wrap(err, msg)
}
