// Package repository wraps the gorm queries behind each entity. Methods
// translate store errors into apperr kinds so services never see gorm errors.
package repository

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/projectbuddy/projectbuddy/internal/apperr"
	"github.com/projectbuddy/projectbuddy/internal/feed"
	"gorm.io/gorm"
)

// ErrTeamFull is returned when a membership insert would exceed maxMembers.
var ErrTeamFull = errors.New("team has reached its maximum number of members")

// wrap maps a gorm error for entity onto an apperr kind.
func wrap(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(entity + " already exists")
	default:
		var appErr *apperr.Error
		if errors.As(err, &appErr) || errors.Is(err, ErrTeamFull) {
			return err
		}
		return apperr.Internal(errors.Wrapf(err, "%s query failed", strings.ToLower(entity)))
	}
}

func paginate(page feed.Page) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(page.Offset()).Limit(page.Limit)
	}
}

func likePattern(q string) string {
	return "%" + strings.TrimSpace(q) + "%"
}
