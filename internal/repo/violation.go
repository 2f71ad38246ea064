// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file normalizes driver-level constraint errors from
// PostgreSQL (SQLSTATE) and SQLite (extended result codes) into a single
// Violation type the HTTP error chain can classify.
package repo

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ViolationKind is the class of database constraint a statement tripped.
type ViolationKind int

const (
	// ViolationInvalidText: the value could not be parsed as the column type.
	ViolationInvalidText ViolationKind = iota + 1
	// ViolationNotNull: a required column was NULL.
	ViolationNotNull
	// ViolationUnique: a unique or primary key collided.
	ViolationUnique
	// ViolationForeignKey: a referenced row does not exist.
	ViolationForeignKey
)

// PostgreSQL SQLSTATE codes.
const (
	pgInvalidTextRepresentation = "22P02"
	pgNotNullViolation          = "23502"
	pgForeignKeyViolation       = "23503"
	pgUniqueViolation           = "23505"
)

// SQLite extended result codes.
const (
	sqliteConstraintForeignKey = 787
	sqliteConstraintNotNull    = 1299
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// Violation is a normalized constraint failure. Key names the offending
// column for foreign-key violations when it is known.
type Violation struct {
	Kind ViolationKind
	Key  string
	Err  error
}

func (v *Violation) Error() string {
	if v.Err != nil {
		return v.Err.Error()
	}
	return fmt.Sprintf("constraint violation (kind=%d key=%q)", v.Kind, v.Key)
}

// Unwrap exposes the driver error.
func (v *Violation) Unwrap() error { return v.Err }

// pgKeyRE extracts the column from details like
// `Key (author)=(nobody) is not present in table "users".`
var pgKeyRE = regexp.MustCompile(`Key \(([^)]+)\)=`)

// sqliteCoder is satisfied by the pure-Go SQLite driver's error type.
type sqliteCoder interface {
	Code() int
}

// ClassifyViolation reports whether err is a recognised constraint failure.
// An already normalized *Violation is returned as is.
func ClassifyViolation(err error) (*Violation, bool) {
	if err == nil {
		return nil, false
	}

	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgInvalidTextRepresentation:
			return &Violation{Kind: ViolationInvalidText, Err: err}, true
		case pgNotNullViolation:
			return &Violation{Kind: ViolationNotNull, Key: pgErr.ColumnName, Err: err}, true
		case pgUniqueViolation:
			return &Violation{Kind: ViolationUnique, Err: err}, true
		case pgForeignKeyViolation:
			return &Violation{Kind: ViolationForeignKey, Key: foreignKeyFromDetail(pgErr.Detail), Err: err}, true
		}
		return nil, false
	}

	var coder sqliteCoder
	if errors.As(err, &coder) {
		switch coder.Code() {
		case sqliteConstraintNotNull:
			return &Violation{Kind: ViolationNotNull, Err: err}, true
		case sqliteConstraintUnique, sqliteConstraintPrimaryKey:
			return &Violation{Kind: ViolationUnique, Err: err}, true
		case sqliteConstraintForeignKey:
			return &Violation{Kind: ViolationForeignKey, Err: err}, true
		}
	}

	// glebarez/sqlite sometimes surfaces plain-text constraint errors.
	low := strings.ToLower(err.Error())
	switch {
	case strings.Contains(low, "foreign key constraint failed"):
		return &Violation{Kind: ViolationForeignKey, Err: err}, true
	case strings.Contains(low, "not null constraint failed"):
		return &Violation{Kind: ViolationNotNull, Err: err}, true
	case strings.Contains(low, "unique constraint failed"):
		return &Violation{Kind: ViolationUnique, Err: err}, true
	}
	return nil, false
}

// foreignKeyFromDetail returns the column named in a Postgres FK detail, or "".
func foreignKeyFromDetail(detail string) string {
	m := pgKeyRE.FindStringSubmatch(detail)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
