package httperr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SystemError envolve falhas de infraestrutura (banco indisponível,
// transação abortada, violação inesperada de constraint). O chamador
// recebe mensagem genérica; o detalhe fica no log.
type SystemError struct {
	Op  string
	Err error
}

func (e SystemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e SystemError) Unwrap() error {
	return e.Err
}

func ErrSystem(op string, err error) error {
	return SystemError{Op: op, Err: err}
}

func IsSystem(err error) bool {
	var se SystemError
	return errors.As(err, &se)
}

// IsExclusionConflict detecta conflito de constraint de exclusão/unicidade
// do Postgres (corrida perdida em escrita concorrente).
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01" || pgErr.Code == "23505"
	}
	return false
}
