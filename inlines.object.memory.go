package inlines

import (
	"context"
	"sync"

	"github.com/itsatony/go-cuserr"
)

// Record is one stored object.
type Record map[string]any

// MemoryObjectStore is an in-memory ObjectStore keyed by source.
// It is primarily intended for testing and development.
type MemoryObjectStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

// NewMemoryObjectStore creates an empty store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{records: make(map[string][]Record)}
}

// Add stores records under source.
func (s *MemoryObjectStore) Add(source string, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[source] = append(s.records[source], records...)
}

// Get returns the single record of query.Source whose fields all match.
func (s *MemoryObjectStore) Get(ctx context.Context, query ObjectQuery) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var found Record
	matches := 0
	for _, rec := range s.records[query.Source] {
		if !recordMatches(rec, query.Fields) {
			continue
		}
		matches++
		if matches > 1 {
			return nil, cuserr.WrapStdError(ErrMultipleObjects, ErrCodeObject, MsgMultipleObjects).
				WithMetadata(MetaKeyTable, query.Source)
		}
		found = rec
	}
	if matches == 0 {
		return nil, cuserr.WrapStdError(ErrObjectNotFound, ErrCodeObject, MsgObjectNotFound).
			WithMetadata(MetaKeyTable, query.Source)
	}
	return found, nil
}

func recordMatches(rec Record, fields []QueryField) bool {
	for _, f := range fields {
		v, ok := rec[f.Field]
		if !ok || !valuesEqual(v, f.Value) {
			return false
		}
	}
	return true
}

// valuesEqual compares by text form, or numerically when both sides are
// numbers.
func valuesEqual(a, b any) bool {
	if textOf(a) == textOf(b) {
		return true
	}
	da, ok := toDecimal(a)
	if !ok {
		return false
	}
	db, ok := toDecimal(b)
	return ok && da.Equal(db)
}
