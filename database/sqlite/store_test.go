package sqlite_test

import (
	"context"
	"testing"

	"github.com/sagarc03/aimage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = aimage.Identifier("A1B2C3D4E5F64A7B8C9D0E1F2A3B4C5D")

func TestStore_PublishAndRead(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, testID)
	require.NoError(t, err)
	assert.False(t, exists)

	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	require.NoError(t, store.Publish(ctx, testID, payload))

	exists, err = store.Exists(ctx, testID)
	require.NoError(t, err)
	assert.True(t, exists)

	content, err := store.Read(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
}

func TestStore_Publish_Collision(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, testID, []byte("first")))

	err := store.Publish(ctx, testID, []byte("second"))
	assert.ErrorIs(t, err, aimage.ErrIdentifierCollision)

	content, err := store.Read(ctx, testID)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), content)
}

func TestStore_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Read(ctx, testID)
	assert.ErrorIs(t, err, aimage.ErrNotFound)

	err = store.Remove(ctx, testID)
	assert.ErrorIs(t, err, aimage.ErrNotFound)
}

func TestStore_Remove(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Publish(ctx, testID, []byte("abc")))
	require.NoError(t, store.Remove(ctx, testID))

	exists, err := store.Exists(ctx, testID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_List_Paginates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	// More than one page.
	want := make([]aimage.Identifier, 0, 300)
	for range 300 {
		id := aimage.NewIdentifier()
		want = append(want, id)
		require.NoError(t, store.Publish(ctx, id, []byte("x")))
	}

	var got []aimage.Identifier
	for id, err := range store.List(ctx) {
		require.NoError(t, err)
		got = append(got, id)
	}
	assert.ElementsMatch(t, want, got)
}

func TestStore_List_Empty(t *testing.T) {
	store := setupTestStore(t)

	var count int
	for _, err := range store.List(context.Background()) {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count)
}

func TestStore_List_MutateWhileIterating(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for range 5 {
		require.NoError(t, store.Publish(ctx, aimage.NewIdentifier(), []byte("x")))
	}

	// The pool has a single connection; iteration must not hold it.
	for id, err := range store.List(ctx) {
		require.NoError(t, err)
		require.NoError(t, store.Remove(ctx, id))
	}

	var count int
	for _, err := range store.List(ctx) {
		require.NoError(t, err)
		count++
	}
	assert.Zero(t, count)
}

func TestStore_Unmigrated(t *testing.T) {
	db, _ := setupTestDB(t)
	store := db.Store()

	err := store.Publish(context.Background(), testID, []byte("x"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, aimage.ErrIdentifierCollision)
}
