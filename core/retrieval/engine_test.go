package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstservice/askbank/core/pipeline"
	"github.com/firstservice/askbank/model"
)

// fakeChunkStore serves preset chunks keyed by owner id.
type fakeChunkStore struct {
	byOwner   map[int]*model.Chunk
	selectErr error
}

func (f *fakeChunkStore) Reset(ctx context.Context) error { return nil }

func (f *fakeChunkStore) InsertChunk(chunk *model.Chunk) error { return nil }

func (f *fakeChunkStore) SelectNearestChunk(ownerID int, embedding []float32) (*model.Chunk, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.byOwner[ownerID], nil
}

func (f *fakeChunkStore) CountChunks() (int64, error) { return int64(len(f.byOwner)), nil }

func staticEmbedder(err error) pipeline.EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if err != nil {
			return nil, err
		}
		return []float32{0.1, 0.2, 0.3, 0.4}, nil
	}
}

func TestEngineRetrieve(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the nearest chunk content verbatim", func(t *testing.T) {
		store := &fakeChunkStore{byOwner: map[int]*model.Chunk{
			7: model.NewChunk(7, "Official record: customer holds 250.00 USD.", nil),
		}}
		engine := NewEngine(store, staticEmbedder(nil))

		grounding, err := engine.Retrieve(ctx, 7, "What is my balance?")
		require.NoError(t, err, "Expected Retrieve to not return an error")
		assert.Equal(t, "Official record: customer holds 250.00 USD.", grounding, "Expected the chunk content unchanged")
	})

	t.Run("Owner without chunks gets the sentinel, not an error", func(t *testing.T) {
		store := &fakeChunkStore{byOwner: map[int]*model.Chunk{}}
		engine := NewEngine(store, staticEmbedder(nil))

		grounding, err := engine.Retrieve(ctx, 99, "What is my balance?")
		require.NoError(t, err, "Expected an empty result to be a valid business state")
		assert.Equal(t, NoDataSentinel, grounding, "Expected the fixed no-data sentinel")
	})

	t.Run("Embedding failure propagates as retrieval error", func(t *testing.T) {
		store := &fakeChunkStore{byOwner: map[int]*model.Chunk{}}
		engine := NewEngine(store, staticEmbedder(errors.New("model endpoint down")))

		_, err := engine.Retrieve(ctx, 7, "What is my balance?")
		assert.Error(t, err, "Expected an embedding failure to fail retrieval")
		assert.True(t, errors.Is(err, model.ErrRetrieval), "Expected the failure to match ErrRetrieval")
	})

	t.Run("Store failure propagates as retrieval error", func(t *testing.T) {
		store := &fakeChunkStore{selectErr: errors.New("connection reset")}
		engine := NewEngine(store, staticEmbedder(nil))

		_, err := engine.Retrieve(ctx, 7, "What is my balance?")
		assert.Error(t, err, "Expected a store failure to fail retrieval")
		assert.True(t, errors.Is(err, model.ErrRetrieval), "Expected the failure to match ErrRetrieval")
	})
}
