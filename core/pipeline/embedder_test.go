package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedder(t *testing.T) {
	// Note: LocalEmbedder uses hugot which requires downloading the model
	// on first run.

	t.Run("Create embedder successfully", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping LocalEmbedder test in short mode (requires model download)")
		}

		embed, err := LocalEmbedder()

		require.NoError(t, err)
		assert.NotNil(t, embed)
	})

	t.Run("Generate embedding with LocalEmbedderDim dimensions", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping LocalEmbedder test in short mode (requires model download)")
		}

		embed, err := LocalEmbedder()
		require.NoError(t, err)

		embedding, err := embed(context.Background(), "Official First Service record: customer Maria Lopez.")

		require.NoError(t, err)
		assert.Equal(t, LocalEmbedderDim, len(embedding), "all-MiniLM-L6-v2 produces 384-dimensional embeddings")

		hasNonZero := false
		for _, val := range embedding {
			if val != 0 {
				hasNonZero = true
				break
			}
		}
		assert.True(t, hasNonZero, "Embedding should contain non-zero values")
	})

	t.Run("Same text produces same embedding", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping LocalEmbedder test in short mode (requires model download)")
		}

		embed, err := LocalEmbedder()
		require.NoError(t, err)

		text := "What is my current balance?"
		embedding1, err := embed(context.Background(), text)
		require.NoError(t, err)

		embedding2, err := embed(context.Background(), text)
		require.NoError(t, err)

		require.Equal(t, len(embedding1), len(embedding2))
		for i := range embedding1 {
			assert.InDelta(t, embedding1[i], embedding2[i], 0.0001, "Same text should produce same embedding")
		}
	})

	t.Run("Different texts produce different embeddings", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping LocalEmbedder test in short mode (requires model download)")
		}

		embed, err := LocalEmbedder()
		require.NoError(t, err)

		embedding1, err := embed(context.Background(), "The account holds a current balance of 5000 USD")
		require.NoError(t, err)

		embedding2, err := embed(context.Background(), "The weather is nice today")
		require.NoError(t, err)

		require.Equal(t, len(embedding1), len(embedding2))

		isDifferent := false
		for i := range embedding1 {
			if embedding1[i] != embedding2[i] {
				isDifferent = true
				break
			}
		}
		assert.True(t, isDifferent, "Different texts should produce different embeddings")
	})

	t.Run("Cancelled context returns error", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping LocalEmbedder test in short mode (requires model download)")
		}

		embed, err := LocalEmbedder()
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = embed(ctx, "Never embedded")
		assert.Error(t, err, "Expected error from cancelled context")
	})
}
