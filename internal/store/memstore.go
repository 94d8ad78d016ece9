// Package store provides the record intake repository. The demo ships an
// in-memory implementation; the interface leaves room for a durable
// backend with store-managed sequences.
package store

import (
	"errors"
	"sync"
	"time"
)

// ErrUnknownTable is returned for table names outside the registry.
var ErrUnknownTable = errors.New("store: unknown table")

// Record is one stored row, including its assigned id and created_at.
type Record map[string]any

// RecordRepository abstracts per-table record storage.
type RecordRepository interface {
	Create(table string, payload map[string]any) (Record, error)
	List(table string) ([]Record, error)
}

// MemStore keeps per-table insertion-ordered records in memory. IDs are
// monotonically increasing per table, starting at 1; the counter lives
// for the process lifetime. All access is serialized by a single mutex so
// concurrent creates never observe duplicate ids.
type MemStore struct {
	mu      sync.Mutex
	records map[string][]Record
	nextID  map[string]int
	now     func() time.Time
}

// NewMemStore creates an empty store accepting the given table names.
func NewMemStore(tables []string) *MemStore {
	s := &MemStore{
		records: make(map[string][]Record, len(tables)),
		nextID:  make(map[string]int, len(tables)),
		now:     time.Now,
	}
	for _, t := range tables {
		s.records[t] = []Record{}
		s.nextID[t] = 1
	}
	return s
}

// Create assigns the next id and a date stamp, then appends the record.
func (s *MemStore) Create(table string, payload map[string]any) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[table]; !ok {
		return nil, ErrUnknownTable
	}

	record := make(Record, len(payload)+2)
	for k, v := range payload {
		record[k] = v
	}
	record["id"] = s.nextID[table]
	record["created_at"] = s.now().Format("2006-01-02")
	s.nextID[table]++

	s.records[table] = append(s.records[table], record)
	return record, nil
}

// List returns the table's records in insertion order. The returned slice
// is a copy; the records themselves are shared.
func (s *MemStore) List(table string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.records[table]
	if !ok {
		return nil, ErrUnknownTable
	}
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}
