// Package storetest holds the behaviour every domain.CacheStore must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caserag/internal/domain"
)

// Run exercises get/put/delete semantics against the store returned by open.
// Each subtest gets a fresh store.
func Run(t *testing.T, open func(t *testing.T) domain.CacheStore) {
	t.Run("MissingKey", func(t *testing.T) {
		s := open(t)
		_, err := s.Get(context.Background(), "documents")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		payload := []byte{0x00, 0x01, 0xff, 'x'}
		require.NoError(t, s.Put(ctx, "embeddings", payload))

		got, err := s.Get(ctx, "embeddings")
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "documents", []byte("old")))
		require.NoError(t, s.Put(ctx, "documents", []byte("new")))

		got, err := s.Get(ctx, "documents")
		require.NoError(t, err)
		assert.Equal(t, []byte("new"), got)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "documents", []byte("d")))
		require.NoError(t, s.Put(ctx, "embeddings", []byte("e")))

		d, err := s.Get(ctx, "documents")
		require.NoError(t, err)
		e, err := s.Get(ctx, "embeddings")
		require.NoError(t, err)
		assert.Equal(t, []byte("d"), d)
		assert.Equal(t, []byte("e"), e)
	})

	t.Run("Delete", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "documents", []byte("d")))
		require.NoError(t, s.Delete(ctx, "documents"))

		_, err := s.Get(ctx, "documents")
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
		// Deleting an absent key is not an error.
		assert.NoError(t, s.Delete(ctx, "documents"))
	})

	t.Run("EmptyValue", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()
		require.NoError(t, s.Put(ctx, "documents", []byte{}))

		got, err := s.Get(ctx, "documents")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
