package sqlite

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
)

const testDimension = 4

// setupTestStore creates a store in a temp directory.
func setupTestStore(t *testing.T) driven.VectorStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chunks.db")
	store, err := NewOpener(testDimension).Open(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func insertOne(t *testing.T, store driven.VectorStore, text string, page int, vector []float32) int64 {
	t.Helper()
	ids, err := store.InsertBatch(context.Background(),
		[]domain.Passage{{Text: text, Page: page, BlockIndex: 1}},
		[][]float32{vector})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	return ids[0]
}

func TestOpener_Open_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.db")
	opener := NewOpener(testDimension)

	first, err := opener.Open(path)
	require.NoError(t, err)
	insertOne(t, first, "hello", 1, []float32{1, 0, 0, 0})
	require.NoError(t, first.Close())

	// Reopening must not recreate tables or lose rows.
	second, err := opener.Open(path)
	require.NoError(t, err)
	defer second.Close()

	count, err := second.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestOpener_Open_DimensionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.db")

	store, err := NewOpener(testDimension).Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = NewOpener(testDimension + 1).Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_InsertBatch_MonotonicIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	passages := []domain.Passage{
		{Text: "one", Page: 1, BlockIndex: 0},
		{Text: "two", Page: 1, BlockIndex: 2},
		{Text: "three", Page: 2, BlockIndex: 5},
	}
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}

	ids, err := store.InsertBatch(ctx, passages, vectors)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])
}

func TestStore_InsertBatch_RejectsWrongDimension(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.InsertBatch(context.Background(),
		[]domain.Passage{{Text: "bad", Page: 1}},
		[][]float32{{1, 2}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// The failed batch must leave nothing behind.
	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestStore_InsertBatch_LengthMismatch(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.InsertBatch(context.Background(),
		[]domain.Passage{{Text: "a", Page: 1}, {Text: "b", Page: 1}},
		[][]float32{{1, 0, 0, 0}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Search_SelfMatchIsClosest(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0.9, 0.1, 0, 0},
	}
	var ids []int64
	for i, v := range vectors {
		ids = append(ids, insertOne(t, store, "passage", i+1, v))
	}

	for i, v := range vectors {
		hits, err := store.Search(ctx, v, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, ids[i], hits[0].ID, "vector %d should self-match", i)
		assert.Equal(t, 0.0, hits[0].Distance)
	}
}

func TestStore_Search_OrderedByDistance(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id1 := insertOne(t, store, "first", 1, []float32{1, 0, 0, 0})
	id2 := insertOne(t, store, "second", 2, []float32{0, 1, 0, 0})
	id3 := insertOne(t, store, "third", 3, []float32{0, 0.9, 0.1, 0})

	// Query identical to passage 2's vector: passage 2 first at
	// distance zero, then the next closest of the remaining two.
	hits, err := store.Search(ctx, []float32{0, 1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, id2, hits[0].ID)
	assert.Equal(t, 0.0, hits[0].Distance)
	assert.Equal(t, id3, hits[1].ID)
	assert.Greater(t, hits[1].Distance, hits[0].Distance)
	_ = id1
}

func TestStore_Search_NeverExceedsTopK(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		v := make([]float32, testDimension)
		for j := range v {
			v[j] = rng.Float32()
		}
		insertOne(t, store, "p", 1, v)
	}

	hits, err := store.Search(ctx, []float32{0, 0, 0, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, hits, 3)

	// Fewer passages than topK returns what exists.
	hits, err = store.Search(ctx, []float32{0, 0, 0, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 10)
}

func TestStore_Search_EmptyStore(t *testing.T) {
	store := setupTestStore(t)

	hits, err := store.Search(context.Background(), []float32{0, 0, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_Search_InvalidTopK(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Search(context.Background(), []float32{0, 0, 0, 0}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Search_HydratesTextRows(t *testing.T) {
	store := setupTestStore(t)

	passages := []domain.Passage{{Text: "the quick brown fox", Page: 7, BlockIndex: 3}}
	vectors := [][]float32{{0.5, 0.5, 0, 0}}
	ids, err := store.InsertBatch(context.Background(), passages, vectors)
	require.NoError(t, err)

	hits, err := store.Search(context.Background(), []float32{0.5, 0.5, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, ids[0], hits[0].ID)
	assert.Equal(t, "the quick brown fox", hits[0].Text)
	assert.Equal(t, 7, hits[0].Page)
	assert.Equal(t, 3, hits[0].BlockIndex)
}

func TestVectorEncoding_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vector := make([]float32, 1536)
	for i := range vector {
		vector[i] = rng.Float32()*2 - 1
	}

	encoded := encodeVector(vector)
	assert.Len(t, encoded, 1536*4)

	decoded := decodeVector(encoded)
	assert.Equal(t, vector, decoded)
}

func TestVectorEncoding_Empty(t *testing.T) {
	assert.Nil(t, decodeVector(nil))
	assert.Empty(t, encodeVector(nil))
}

func TestSquaredDistance(t *testing.T) {
	assert.Equal(t, 0.0, squaredDistance([]float32{1, 2}, []float32{1, 2}))
	assert.InDelta(t, 25.0, squaredDistance([]float32{0, 0}, []float32{3, 4}), 1e-9)
}
