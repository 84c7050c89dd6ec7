package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursebox/backend/core"
	"github.com/coursebox/backend/core/store"
	"github.com/coursebox/backend/storage/memory"
)

// PrepareDB returns a store.DB over a fresh in-memory DocumentStore.
func PrepareDB(t *testing.T) (*store.DB, *memory.Store) {
	t.Helper()
	docs := memory.New()
	return store.NewDB(docs), docs
}

// FreezeTime pins core.NowFunc to ts until the test ends.
func FreezeTime(t *testing.T, ts time.Time) {
	t.Helper()
	orig := core.NowFunc
	core.NowFunc = func() time.Time { return ts.UTC() }
	t.Cleanup(func() { core.NowFunc = orig })
}

// Clock hands out strictly increasing timestamps, one second apart, through core.NowFunc.
func Clock(t *testing.T, start time.Time) {
	t.Helper()
	var mu sync.Mutex
	next := start.UTC()
	orig := core.NowFunc
	core.NowFunc = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
	t.Cleanup(func() { core.NowFunc = orig })
}

// RunDocumentStoreTests checks the behavior every DocumentStore driver must share.
// newStore must return an empty store.
func RunDocumentStoreTests(t *testing.T, newStore func(t *testing.T) store.DocumentStore) {
	ctx := context.Background()

	t.Run("missing document loads empty", func(t *testing.T) {
		s := newStore(t)
		doc, err := s.Load(ctx, "lessonsData")
		require.NoError(t, err)
		assert.Empty(t, doc)
	})

	t.Run("save then load round trip", func(t *testing.T) {
		s := newStore(t)
		doc := store.Document{
			"lessons": []byte(`[{"id":"a","title":"Intro","order":1,"tags":["x","y"]}]`),
			"version": []byte(`3`),
		}
		require.NoError(t, s.Save(ctx, "lessonsData", doc))

		got, err := s.Load(ctx, "lessonsData")
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	})

	t.Run("save replaces previous content", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, "exams", store.Document{"exams": []byte(`[{"id":"1"}]`)}))
		require.NoError(t, s.Save(ctx, "exams", store.Document{"exams": []byte(`[]`)}))

		got, err := s.Load(ctx, "exams")
		require.NoError(t, err)
		assert.Equal(t, store.Document{"exams": []byte(`[]`)}, got)
	})

	t.Run("documents are independent", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Save(ctx, "exams", store.Document{"exams": []byte(`[{"id":"1"}]`)}))

		got, err := s.Load(ctx, "examResults")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid names", func(t *testing.T) {
		s := newStore(t)
		for _, name := range []string{"", "../etc/passwd", "a/b", "a b", "x.json"} {
			_, err := s.Load(ctx, name)
			assert.ErrorIs(t, err, store.ErrInvalidName, name)
			assert.ErrorIs(t, s.Save(ctx, name, store.Document{}), store.ErrInvalidName, name)
		}
	})
}
