package usecase

import (
	"errors"

	"github.com/nik132-eng/roastit/internal/domain"
)

// classify keeps already classified errors and turns anything else into a
// PersistenceFailed carrying msg.
func classify(err error, msg string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.PersistenceFailed(msg, err)
}
