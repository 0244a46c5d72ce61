package repository

import (
	"fmt"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/infrastructure/codec"
)

// decodeSnapshot decodes a payload with the codec it was written with
func decodeSnapshot(codecName string, payload []byte) (*entity.Session, error) {
	c, err := codec.New(codecName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainRepo.ErrCorruptSnapshot, err)
	}
	var session entity.Session
	if err := c.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", domainRepo.ErrCorruptSnapshot, err)
	}
	return &session, nil
}
