package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"cafeteria-api/apperr"

	"gorm.io/gorm"
)

const defaultOpTimeout = 5 * time.Second

// Store is the single persistent store shared by every engine. Writes are
// serialized by a store-wide lock; reads share it. Every call runs inside one
// transaction so readers only ever observe committed state.
type Store struct {
	db      *gorm.DB
	mu      sync.RWMutex
	timeout time.Duration
}

func New(db *gorm.DB, opTimeout time.Duration) *Store {
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Store{db: db, timeout: opTimeout}
}

// Tx exposes typed repository operations bound to one transaction.
type Tx struct {
	db *gorm.DB
}

// Read runs fn against a consistent snapshot. Abandoning ctx aborts the read.
func (s *Store) Read(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.run(ctx, fn)
}

// Write runs fn atomically. Once admitted the write no longer follows the
// caller's cancellation, only the store timeout; fn returning an error rolls
// everything back.
func (s *Store) Write(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return apperr.Storage(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	return s.run(ctx, fn)
}

func (s *Store) run(ctx context.Context, fn func(tx *Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db})
	})
	return apperr.Storage(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
