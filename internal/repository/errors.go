package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"photomap-service/internal/apperr"
)

// dbError maps a gorm failure onto the service error kinds.
func dbError(err error, notFound, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(notFound)
	}
	return apperr.Db(err, msg)
}
