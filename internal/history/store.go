package history

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// Store is the per-user append-only log consumed by the live session and the
// history review screen. The store, not the caller, is the ordering authority:
// ids are ULIDs minted at append time and retrieval sorts by them.
type Store interface {
	// Append durably records one turn and returns it with its store id.
	Append(ctx context.Context, userID uint64, role, text string) (*Entry, error)
	// Recent returns at most limit entries for the user, newest first.
	Recent(ctx context.Context, userID uint64, limit int) ([]Entry, error)
	// Clear deletes every entry for the user. Best-effort bulk delete: an
	// entry appended concurrently may or may not survive.
	Clear(ctx context.Context, userID uint64) error
}

type GormStore struct {
	db *gorm.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// newID mints a ULID. Monotonic entropy keeps ids strictly increasing for
// appends landing in the same millisecond.
func (s *GormStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

func (s *GormStore) Append(ctx context.Context, userID uint64, role, text string) (*Entry, error) {
	entry := &Entry{
		ID:        s.newID(),
		UserID:    userID,
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *GormStore) Recent(ctx context.Context, userID uint64, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	var entries []Entry
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *GormStore) Clear(ctx context.Context, userID uint64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&Entry{}).Error
}
