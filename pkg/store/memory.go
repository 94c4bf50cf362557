package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/onboardhub/onboardhub/pkg/utils/idgen"
)

// MemoryStore is a concurrency-safe in-memory Store, used by tests and
// single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[EntityType]map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[EntityType]map[string]*Record),
	}
}

// Create inserts a record and assigns a UUID id.
func (s *MemoryStore) Create(_ context.Context, entity EntityType, data map[string]any) (*Record, error) {
	now := time.Now()
	record := &Record{
		ID:        idgen.MustNewV4().String(),
		Type:      entity,
		Data:      cloneData(data),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[entity] == nil {
		s.records[entity] = make(map[string]*Record)
	}
	s.records[entity][record.ID] = record
	return cloneRecord(record), nil
}

// Get fetches one record by id.
func (s *MemoryStore) Get(_ context.Context, entity EntityType, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[entity][id]
	if !ok {
		return nil, fmt.Errorf("%s record %s not found", entity, id)
	}
	return cloneRecord(record), nil
}

// Update merges data into an existing record.
func (s *MemoryStore) Update(_ context.Context, entity EntityType, id string, data map[string]any) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[entity][id]
	if !ok {
		return nil, fmt.Errorf("%s record %s not found", entity, id)
	}
	for k, v := range data {
		record.Data[k] = v
	}
	record.UpdatedAt = time.Now()
	return cloneRecord(record), nil
}

// Delete removes one record by id.
func (s *MemoryStore) Delete(_ context.Context, entity EntityType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[entity][id]; !ok {
		return fmt.Errorf("%s record %s not found", entity, id)
	}
	delete(s.records[entity], id)
	return nil
}

// List returns records matching the filter.
func (s *MemoryStore) List(_ context.Context, entity EntityType, filter Filter) ([]*Record, error) {
	s.mu.RLock()
	var result []*Record
	for _, record := range s.records[entity] {
		if matches(record, filter) {
			result = append(result, cloneRecord(record))
		}
	}
	s.mu.RUnlock()

	sortRecords(result, filter)
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

func sortRecords(records []*Record, filter Filter) {
	sort.SliceStable(records, func(i, j int) bool {
		var less bool
		if filter.OrderBy == "" {
			less = records[i].CreatedAt.Before(records[j].CreatedAt)
		} else {
			less = fmt.Sprint(records[i].Data[filter.OrderBy]) < fmt.Sprint(records[j].Data[filter.OrderBy])
		}
		if filter.Descending {
			return !less
		}
		return less
	})
}

func cloneData(data map[string]any) map[string]any {
	clone := make(map[string]any, len(data))
	for k, v := range data {
		clone[k] = v
	}
	return clone
}

func cloneRecord(r *Record) *Record {
	clone := *r
	clone.Data = cloneData(r.Data)
	return &clone
}

var _ Store = (*MemoryStore)(nil)
