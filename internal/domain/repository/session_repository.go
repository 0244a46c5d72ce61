package repository

import (
	"context"
	"errors"

	"github.com/sangkips/investify-pos/internal/domain/entity"
)

// ErrCorruptSnapshot is returned when a stored session cannot be decoded
var ErrCorruptSnapshot = errors.New("stored session snapshot is corrupt")

// SessionRepository persists the full session snapshot under a single key
type SessionRepository interface {
	// Load returns the stored session, or nil when nothing has been stored
	Load(ctx context.Context) (*entity.Session, error)
	// Save overwrites the stored session with a full snapshot
	Save(ctx context.Context, session *entity.Session) error
}
