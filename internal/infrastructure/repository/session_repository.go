package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/infrastructure/codec"
)

type sessionRepository struct {
	db    *gorm.DB
	codec codec.Codec
	key   string
}

// NewSessionRepository creates a session repository storing one row per key
func NewSessionRepository(db *gorm.DB, c codec.Codec, key string) domainRepo.SessionRepository {
	return &sessionRepository{db: db, codec: c, key: key}
}

func (r *sessionRepository) Load(ctx context.Context) (*entity.Session, error) {
	var snapshot entity.SessionSnapshot
	err := r.db.WithContext(ctx).
		Where("key = ?", r.key).
		First(&snapshot).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot(snapshot.Codec, snapshot.Payload)
}

func (r *sessionRepository) Save(ctx context.Context, session *entity.Session) error {
	payload, err := r.codec.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	snapshot := entity.SessionSnapshot{
		Key:     r.key,
		Codec:   r.codec.Name(),
		Payload: payload,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&snapshot).Error
}
