package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrStoreConflict indica contenção de escrita (serialização, deadlock, lock).
// A operação pode ser repetida no próximo ciclo.
var ErrStoreConflict = errors.New("conflito de escrita no banco de dados")

var conflictCodes = map[pq.ErrorCode]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
	"23505": {}, // unique_violation
}

type storeConflictError struct {
	err *pq.Error
}

func (e *storeConflictError) Error() string {
	return fmt.Sprintf("%s: %v (código: %s)", ErrStoreConflict, e.err, e.err.Code)
}

func (e *storeConflictError) Is(target error) bool {
	return target == ErrStoreConflict
}

func (e *storeConflictError) Unwrap() error {
	return e.err
}

// wrapExecError segue o padrão de mensagens dos repositórios e classifica
// os códigos de contenção como ErrStoreConflict
func wrapExecError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if _, ok := conflictCodes[pqErr.Code]; ok {
			return &storeConflictError{err: pqErr}
		}
		return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
	}
	return fmt.Errorf("erro ao executar a query: %w", err)
}
