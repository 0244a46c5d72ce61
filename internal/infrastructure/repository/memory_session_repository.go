package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/sangkips/investify-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/investify-pos/internal/domain/repository"
	"github.com/sangkips/investify-pos/internal/infrastructure/codec"
)

// MemorySessionRepository keeps the encoded snapshot in process memory.
// Used when no durable store is configured, and in tests.
type MemorySessionRepository struct {
	mu      sync.RWMutex
	codec   codec.Codec
	name    string
	payload []byte
}

// NewMemorySessionRepository creates an empty in-memory session repository
func NewMemorySessionRepository(c codec.Codec) *MemorySessionRepository {
	return &MemorySessionRepository{codec: c}
}

var _ domainRepo.SessionRepository = (*MemorySessionRepository)(nil)

func (r *MemorySessionRepository) Load(ctx context.Context) (*entity.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.payload == nil {
		return nil, nil
	}
	return decodeSnapshot(r.name, r.payload)
}

func (r *MemorySessionRepository) Save(ctx context.Context, session *entity.Session) error {
	payload, err := r.codec.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	r.mu.Lock()
	r.name = r.codec.Name()
	r.payload = payload
	r.mu.Unlock()
	return nil
}

// Put stores a raw payload as if it had been written by codecName
func (r *MemorySessionRepository) Put(codecName string, payload []byte) {
	r.mu.Lock()
	r.name = codecName
	r.payload = payload
	r.mu.Unlock()
}
