package store

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/splice/internal/domain/repository"
)

// infra marca err como falla de infraestructura salvo que ya lo sea.
func infra(err error) error {
	if err == nil || errors.Is(err, repository.ErrInfrastructure) {
		return err
	}
	return fmt.Errorf("%w: %w", repository.ErrInfrastructure, err)
}
