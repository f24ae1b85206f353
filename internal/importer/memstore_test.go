package importer

import (
	"context"
	"errors"
	"sync"

	"github.com/kastchile2025-star/-elias-v19-sub004/internal/model"
	"github.com/kastchile2025-star/-elias-v19-sub004/internal/store"
)

// memStore is an in-memory DocumentStore. failUpsert, when set, is consulted
// before each Upsert call so tests can inject transient and permanent
// failures.
type memStore struct {
	mu         sync.Mutex
	data       map[string]map[string]store.Document
	upsertCall int
	failUpsert func(call int, collection string, docs []store.Document) error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]map[string]store.Document)}
}

func (m *memStore) Upsert(ctx context.Context, collection string, docs []store.Document, conflictKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.upsertCall++
	if m.failUpsert != nil {
		if err := m.failUpsert(m.upsertCall, collection, docs); err != nil {
			return err
		}
	}

	coll, ok := m.data[collection]
	if !ok {
		coll = make(map[string]store.Document)
		m.data[collection] = coll
	}
	for _, doc := range docs {
		coll[doc.DocumentID()] = doc
	}
	return nil
}

func (m *memStore) GetImportJob(ctx context.Context, jobID string) (*model.ImportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.data[store.CollectionImports][jobID]
	if !ok {
		return nil, store.ErrJobNotFound
	}
	job, ok := doc.(*model.ImportJob)
	if !ok {
		return nil, errors.New("not an import job")
	}
	snapshot := *job
	return &snapshot, nil
}

func (m *memStore) CountGradesByYear(ctx context.Context, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, doc := range m.data[store.CollectionGrades] {
		if g, ok := doc.(*model.GradeRecord); ok && g.Year == year {
			n++
		}
	}
	return n, nil
}

func (m *memStore) count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data[collection])
}

func (m *memStore) get(collection, id string) store.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[collection][id]
}
