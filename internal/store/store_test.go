package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCreateAndRead(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, CollectionUsers, "a@b.com", testRecord{Name: "a", Count: 1}))

	var got testRecord
	require.NoError(t, m.Read(ctx, CollectionUsers, "a@b.com", &got))
	assert.Equal(t, testRecord{Name: "a", Count: 1}, got)
}

func TestMemoryCreateDuplicate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, CollectionOrders, "55512", testRecord{}))
	err := m.Create(ctx, CollectionOrders, "55512", testRecord{})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMemoryReadMissing(t *testing.T) {
	m := NewMemory()

	var got testRecord
	err := m.Read(context.Background(), CollectionUsers, "nobody", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpdateMissing(t *testing.T) {
	m := NewMemory()

	err := m.Update(context.Background(), CollectionCarts, "55512", testRecord{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, CollectionCarts, "55512", testRecord{}))
	require.NoError(t, m.Delete(ctx, CollectionCarts, "55512"))

	var got testRecord
	assert.ErrorIs(t, m.Read(ctx, CollectionCarts, "55512", &got), ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, CollectionCarts, "55512"), ErrNotFound)
}

func TestMemoryListSorted(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, m.Create(ctx, CollectionMenuItems, key, testRecord{}))
	}

	keys, err := m.List(ctx, CollectionMenuItems)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	empty, err := m.List(ctx, CollectionTokens)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryReadReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, CollectionUsers, "a@b.com", testRecord{Name: "a"}))

	var first testRecord
	require.NoError(t, m.Read(ctx, CollectionUsers, "a@b.com", &first))
	first.Name = "mutated"

	var second testRecord
	require.NoError(t, m.Read(ctx, CollectionUsers, "a@b.com", &second))
	assert.Equal(t, "a", second.Name)
}
