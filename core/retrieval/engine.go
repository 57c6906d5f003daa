package retrieval

import (
	"context"
	"fmt"

	"github.com/firstservice/askbank/core/pipeline"
	"github.com/firstservice/askbank/database"
	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
)

// NoDataSentinel is the fixed context returned when the owner has no
// ingested chunks. An empty store for an owner is an expected business
// state (a new customer), not an error.
const NoDataSentinel = "No account data available."

// Engine answers the question "what do we know about this customer that is
// closest to their question". It embeds the question and performs an
// owner-scoped top-1 similarity lookup against the vector store.
type Engine struct {
	chunks database.ChunksDBHandlerFunctions
	embed  pipeline.EmbedFunc
}

// NewEngine creates a retrieval engine over the given chunk store and
// embedding collaborator. The collaborator must be the same one used at
// ingestion time so query and chunk vectors share a metric space.
func NewEngine(chunks database.ChunksDBHandlerFunctions, embed pipeline.EmbedFunc) *Engine {
	return &Engine{
		chunks: chunks,
		embed:  embed,
	}
}

// Retrieve returns the grounding context for the owner's question: the
// content of the single nearest chunk owned by ownerID, or NoDataSentinel
// when that owner has no chunks. An embedding failure propagates as an
// error; there is no degraded retrieval.
func (e *Engine) Retrieve(ctx context.Context, ownerID int, question string) (string, error) {
	embedding, err := e.embed(ctx, question)
	if err != nil {
		return "", helper.NewError("embed question", fmt.Errorf("%w: %w", model.ErrRetrieval, err))
	}

	chunk, err := e.chunks.SelectNearestChunk(ownerID, embedding)
	if err != nil {
		return "", helper.NewError("select nearest chunk", fmt.Errorf("%w: %w", model.ErrRetrieval, err))
	}

	if chunk == nil {
		return NoDataSentinel, nil
	}

	return chunk.Content, nil
}
