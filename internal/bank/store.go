package bank

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

const bankKey = "bank"

// rowStore is the persistence boundary: one serialized blob per key.
// Satisfied by *db.DB.
type rowStore interface {
	GetBlob(ctx context.Context, key string) ([]byte, error)
	PutBlob(ctx context.Context, key string, data []byte) error
	DeleteBlob(ctx context.Context, key string) error
}

// Store persists the balance record. A single mutex serializes every
// load-mutate-save cycle so concurrent award and payout operations cannot
// interleave reads and writes of the blob.
type Store struct {
	mu sync.Mutex
	db rowStore
}

func NewStore(db rowStore) *Store {
	return &Store{db: db}
}

// Load returns the persisted record, or an empty one when nothing is stored.
func (s *Store) Load(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Update runs fn against the current record while holding the store lock.
// When fn reports save, the mutated record is merged into the persisted blob
// as a single write; otherwise nothing is persisted.
func (s *Store) Update(ctx context.Context, fn func(rec Record) (save bool, err error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx)
	if err != nil {
		return err
	}
	save, err := fn(rec)
	if err != nil {
		return err
	}
	if !save {
		return nil
	}
	return s.save(ctx, rec)
}

// Clear deletes the persisted record entirely.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.DeleteBlob(ctx, bankKey)
}

func (s *Store) load(ctx context.Context) (Record, error) {
	data, err := s.db.GetBlob(ctx, bankKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load bank data: %w", err)
	}
	if data == nil {
		return Record{}, nil
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode bank data: %w", err)
	}
	return rec, nil
}

// replace writes rec verbatim, discarding any persisted entries not present
// in it. Merge semantics cannot express deletion, so removal paths use this.
func (s *Store) replace(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode bank data: %w", err)
	}
	if err := s.db.PutBlob(ctx, bankKey, data); err != nil {
		return fmt.Errorf("failed to save bank data: %w", err)
	}
	return nil
}

// save deep-merges partial into the persisted record and writes it back as
// one atomic upsert.
func (s *Store) save(ctx context.Context, partial Record) error {
	existing, err := s.load(ctx)
	if err != nil {
		return err
	}
	existing.Merge(partial)
	data, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to encode bank data: %w", err)
	}
	if err := s.db.PutBlob(ctx, bankKey, data); err != nil {
		return fmt.Errorf("failed to save bank data: %w", err)
	}
	return nil
}
