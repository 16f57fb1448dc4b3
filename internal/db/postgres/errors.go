package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL error codes the repositories translate into domain errors
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pqCode(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}
	return "", ""
}

func isUniqueViolation(err error) bool {
	code, _ := pqCode(err)
	return code == codeUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _ := pqCode(err)
	return code == codeForeignKeyViolation
}

func isCheckViolation(err error, constraint string) bool {
	code, name := pqCode(err)
	return code == codeCheckViolation && name == constraint
}
