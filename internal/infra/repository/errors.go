// Package repository implements the domain persistence interfaces on gorm.
package repository

import (
	"errors"

	"gorm.io/gorm"

	"foodorder-api/internal/apperr"
)

// translate maps gorm sentinel errors to apperr kinds. The database must be
// opened with TranslateError so unique violations surface as ErrDuplicatedKey.
func translate(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.KindNotFound, err, notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.KindConflict, err, conflict)
	}
	return err
}
