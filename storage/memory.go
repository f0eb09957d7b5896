package storage

import (
	"sync"
)

// In memory implementation of Storage. Counts loads and saves, which
// comes in handy in tests.
type MemoryStorage struct {
	NumLoads int
	NumSaves int

	mutex sync.Mutex
	doc   *Document
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		doc: NewDocument(),
	}
}

func (s *MemoryStorage) Load() (*Document, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.NumLoads++
	return s.doc.Clone(), nil
}

func (s *MemoryStorage) Save(doc *Document) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.NumSaves++
	s.doc = doc.Clone()
	return nil
}
