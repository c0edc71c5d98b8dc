package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/pet-community/internal/domains/pets/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid pet input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrEmptyBreed) ||
		errors.Is(err, domain.ErrAgeFormat) ||
		errors.Is(err, domain.ErrAgeRange) ||
		errors.Is(err, domain.ErrEmptyPhoto) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
