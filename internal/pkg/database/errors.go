package database

import (
	"errors"

	"github.com/lib/pq"
)

// pgInvalidTextRepresentation é o código de erro 22P02 do PostgreSQL,
// levantado quando um valor não pode ser convertido para o tipo da coluna
// (e.g. um id de rota que não é um UUID sintaticamente válido).
const pgInvalidTextRepresentation = "22P02"

// IsInvalidUUID indica se o erro veio de um valor que o PostgreSQL não
// conseguiu interpretar como UUID. Em buscas por id isso equivale a
// "não encontrado": um id malformado nunca identifica um registro.
func IsInvalidUUID(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgInvalidTextRepresentation
}
