package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firstservice/askbank/database"
	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
)

// Ingestor transforms tabular customer records into per-customer semantic
// chunks and loads them into the vector store.
type Ingestor struct {
	chunks database.ChunksDBHandlerFunctions
	embed  EmbedFunc
	log    *slog.Logger
}

// NewIngestor creates an ingestor writing through the given chunk store
// and embedding collaborator.
func NewIngestor(chunks database.ChunksDBHandlerFunctions, embed EmbedFunc, log *slog.Logger) *Ingestor {
	return &Ingestor{
		chunks: chunks,
		embed:  embed,
		log:    log,
	}
}

// ResetSchema destructively recreates the vector store empty. Every
// previously ingested chunk is lost. The caller must hold exclusive access
// while this runs; concurrent answer traffic against a store mid-reset is
// an operational error the store cannot detect.
func (i *Ingestor) ResetSchema(ctx context.Context) error {
	return i.chunks.Reset(ctx)
}

// LoadBatch renders, embeds and inserts the given records in input order
// without touching existing chunks.
//
// Failure policy is asymmetric. An embedding failure aborts the remaining
// batch: an unreachable embedding service will fail for every remaining
// record too, so there is no point continuing. A single insert failure is
// treated as record-specific, the record is skipped and the batch
// continues.
func (i *Ingestor) LoadBatch(ctx context.Context, records []model.SourceRecord) (*model.IngestionReport, error) {
	report := &model.IngestionReport{}

	for n, record := range records {
		content := RenderRecord(record)

		embedding, err := i.embed(ctx, content)
		if err != nil {
			report.Aborted = true
			i.log.Error("Embedding failed, aborting batch",
				slog.Int("record", n),
				slog.Int("owner_id", record.OwnerID),
				slog.String("error", err.Error()),
			)
			return report, helper.NewError("embed record", fmt.Errorf("%w: %w", model.ErrConnectivity, err))
		}

		chunk := model.NewChunk(record.OwnerID, content, embedding)
		if err := i.chunks.InsertChunk(chunk); err != nil {
			report.Skipped++
			i.log.Warn("Insert failed, skipping record",
				slog.Int("record", n),
				slog.Int("owner_id", record.OwnerID),
				slog.String("error", err.Error()),
			)
			continue
		}

		report.Inserted++
	}

	i.log.Info("Batch loaded",
		slog.Int("inserted", report.Inserted),
		slog.Int("skipped", report.Skipped),
	)

	return report, nil
}

// Ingest performs a full, lossy rebuild: it resets the store once and then
// loads the batch. This is not an incremental upsert, all chunks from
// earlier runs are destroyed. Callers that want to keep existing chunks
// must use LoadBatch directly.
func (i *Ingestor) Ingest(ctx context.Context, records []model.SourceRecord) (*model.IngestionReport, error) {
	if err := i.ResetSchema(ctx); err != nil {
		return nil, err
	}
	return i.LoadBatch(ctx, records)
}
