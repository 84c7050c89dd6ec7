package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DB couples a DocumentStore with the lock table that serializes writers per document name.
// Every Collection of one process must be built from the same DB so they share the locks.
type DB struct {
	docs  DocumentStore
	locks *lockTable
	newID func() string
}

func NewDB(docs DocumentStore) *DB {
	return &DB{
		docs:  docs,
		locks: &lockTable{table: make(map[string]*sync.RWMutex)},
		newID: func() string { return uuid.New().String() },
	}
}

// Docs exposes the underlying DocumentStore (admin tooling reads raw documents through it).
func (db *DB) Docs() DocumentStore { return db.docs }

// View loads the named document under its read lock.
func (db *DB) View(ctx context.Context, name string) (Document, error) {
	mu := db.locks.get(name)
	mu.RLock()
	defer mu.RUnlock()
	return db.load(ctx, name)
}

// Update runs one load-mutate-save unit under the document's write lock. fn receives the loaded
// document and returns the document to save; returning an error aborts without saving.
func (db *DB) Update(ctx context.Context, name string, fn func(Document) (Document, error)) error {
	mu := db.locks.get(name)
	mu.Lock()
	defer mu.Unlock()

	doc, err := db.load(ctx, name)
	if err != nil {
		return err
	}
	doc, err = fn(doc)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	return db.docs.Save(ctx, name, doc)
}

func (db *DB) load(ctx context.Context, name string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return db.docs.Load(ctx, name)
}

type lockTable struct {
	sync.Mutex
	table map[string]*sync.RWMutex
}

func (lt *lockTable) get(name string) *sync.RWMutex {
	lt.Lock()
	defer lt.Unlock()
	mu, ok := lt.table[name]
	if !ok {
		mu = new(sync.RWMutex)
		lt.table[name] = mu
	}
	return mu
}
