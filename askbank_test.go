package askbank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firstservice/askbank/core/pipeline"
	"github.com/firstservice/askbank/core/retrieval"
	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
)

const testEmbeddingDim = 8

// testEmbedder creates a simple deterministic embedder for testing
func testEmbedder(dimension int) pipeline.EmbedFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		embedding := make([]float32, dimension)
		for i := 0; i < dimension; i++ {
			embedding[i] = float32((len(text)+i)%100) / 100.0
		}
		return embedding, nil
	}
}

// echoGenerator answers with the prompt itself, so tests can check the
// grounding that reached the generation collaborator.
func echoGenerator() pipeline.GenerateFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		return "Answered from: " + prompt, nil
	}
}

func initAskBank(t *testing.T) *AskBank {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")

	a, err := NewAskBank(dbConfig, testEmbeddingDim)
	require.NoError(t, err, "failed to create askbank")
	require.NotNil(t, a, "expected askbank to be non-nil")

	a.SetCollaborators(testEmbedder(testEmbeddingDim), echoGenerator())

	t.Cleanup(func() {
		a.Close()
	})

	return a
}

func TestNewAskBank(t *testing.T) {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err)

	t.Run("Valid call NewAskBank", func(t *testing.T) {
		a, err := NewAskBank(dbConfig, testEmbeddingDim)
		require.NoError(t, err, "Expected NewAskBank to not return an error")
		require.NotNil(t, a, "Expected NewAskBank to return a non-nil instance")
		assert.NotNil(t, a.DB, "Expected askbank to have a database instance")
		assert.NotNil(t, a.Chunks, "Expected askbank to have a chunks handler")
		assert.NotNil(t, a.Audit, "Expected askbank to have an audit handler")
		assert.NotNil(t, a.Monitor, "Expected askbank to have a monitor")
		assert.NotNil(t, a.Console, "Expected askbank to have a console")
		assert.Nil(t, a.Answerer, "Expected answerer to be nil before collaborators are set")

		// Cleanup
		err = a.Close()
		assert.NoError(t, err, "Expected Close to not return an error")
	})

	t.Run("AskBank with nil database handles Close gracefully", func(t *testing.T) {
		a := &AskBank{}
		err := a.Close()
		assert.NoError(t, err, "Expected Close to handle nil DB gracefully")
	})

	t.Run("Answer without collaborators fails", func(t *testing.T) {
		a, err := NewAskBank(dbConfig, testEmbeddingDim)
		require.NoError(t, err)
		defer a.Close()

		_, err = a.Answer(context.Background(), 1, "question")
		assert.Error(t, err, "Expected Answer to fail before collaborators are set")
	})

	t.Run("UseLocalEmbedder rejects a mismatched store dimension", func(t *testing.T) {
		a, err := NewAskBank(dbConfig, testEmbeddingDim)
		require.NoError(t, err)
		defer a.Close()

		err = a.UseLocalEmbedder(echoGenerator())
		require.Error(t, err, "Expected UseLocalEmbedder to fail against a non-384-dimension store")
		assert.Contains(t, err.Error(), "embedding dimension", "Expected the dimension mismatch named")
		assert.Nil(t, a.Answerer, "Expected no collaborators wired after the failure")
	})
}

func TestAskBankIngestAndAnswer(t *testing.T) {
	a := initAskBank(t)
	ctx := context.Background()

	records := []model.SourceRecord{
		{Customer: "Maria Lopez", OwnerID: 1, Amount: 2500.50, Category: "premium", LastMovement: "2024-03-01"},
		{Customer: "Juan Perez", OwnerID: 2, Amount: 130.00, Category: "savings", LastMovement: "2024-02-11"},
	}

	report, err := a.Ingest(ctx, records)
	require.NoError(t, err, "Expected Ingest to not return an error")
	assert.Equal(t, 2, report.Inserted, "Expected both records inserted")
	assert.False(t, report.Aborted, "Expected the batch to complete")

	t.Run("Answer is grounded in the owner's own chunk", func(t *testing.T) {
		response, err := a.Answer(ctx, 1, "What is my balance?")
		require.NoError(t, err, "Expected Answer to not return an error")
		assert.Contains(t, response, "Maria Lopez", "Expected owner 1 grounding in the prompt")
		assert.NotContains(t, response, "Juan Perez", "Expected no other owner's data in the prompt")
	})

	t.Run("Unknown owner is answered from the sentinel", func(t *testing.T) {
		response, err := a.Answer(ctx, 999, "What is my balance?")
		require.NoError(t, err, "Expected a data-less owner to still get an answer")
		assert.Contains(t, response, retrieval.NoDataSentinel, "Expected the no-data sentinel as grounding")
	})

	t.Run("Every answer leaves an audit entry", func(t *testing.T) {
		before, err := a.Audit.CountEntries()
		require.NoError(t, err)

		question := "How much money do I have right now?"
		response, err := a.Answer(ctx, 2, question)
		require.NoError(t, err)

		after, err := a.Audit.CountEntries()
		require.NoError(t, err)
		assert.Equal(t, before+1, after, "Expected exactly one new audit entry")

		entries, err := a.Audit.SelectRecentEntries(1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, 2, entries[0].OwnerID, "Expected the entry owner to match")
		assert.Equal(t, question, entries[0].Query, "Expected the question recorded verbatim")
		assert.Equal(t, response, entries[0].Response, "Expected the response recorded verbatim")
		assert.GreaterOrEqual(t, entries[0].LatencyMS, 0.0, "Expected a non-negative latency")
	})

	t.Run("Ingest again destroys prior chunks", func(t *testing.T) {
		newRecords := []model.SourceRecord{
			{Customer: "Ana Gomez", OwnerID: 3, Amount: 990.00, Category: "checking", LastMovement: "2024-04-01"},
		}
		report, err := a.Ingest(ctx, newRecords)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Inserted)

		count, err := a.Chunks.CountChunks()
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "Expected the rebuild to destroy the earlier batch")

		response, err := a.Answer(ctx, 1, "What is my balance?")
		require.NoError(t, err)
		assert.Contains(t, response, retrieval.NoDataSentinel, "Expected owner 1 to have no data after the rebuild")
	})
}

func TestAskBankStatsAndAnomalies(t *testing.T) {
	a := initAskBank(t)
	ctx := context.Background()

	_, err := a.Ingest(ctx, []model.SourceRecord{
		{Customer: "Maria Lopez", OwnerID: 1, Amount: 100, Category: "savings", LastMovement: "2024-01-01"},
	})
	require.NoError(t, err)

	// Owner 5 hammers the system past the default threshold.
	for i := 0; i < 11; i++ {
		_, err := a.Answer(ctx, 5, "What is my balance?")
		require.NoError(t, err)
	}

	t.Run("Stats reflect the store and the log", func(t *testing.T) {
		stats, err := a.Stats(ctx, 20)
		require.NoError(t, err, "Expected Stats to not return an error")
		assert.Equal(t, int64(1), stats.TotalChunks, "Expected the ingested chunk counted")
		assert.GreaterOrEqual(t, stats.TotalEntries, int64(11), "Expected the answered questions counted")
		assert.NotEmpty(t, stats.Recent, "Expected recent audit rows")
		assert.GreaterOrEqual(t, stats.OwnerHistogram[5], 11, "Expected owner 5 dominating the sample")
	})

	t.Run("Anomalies flag the heavy owner", func(t *testing.T) {
		anomalies, err := a.Anomalies(ctx)
		require.NoError(t, err, "Expected Anomalies to not return an error")
		count, ok := anomalies[5]
		assert.True(t, ok, "Expected owner 5 flagged")
		assert.Greater(t, count, 10, "Expected a count above the threshold")
	})
}
