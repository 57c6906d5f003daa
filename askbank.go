package askbank

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/firstservice/askbank/core/answer"
	"github.com/firstservice/askbank/core/console"
	"github.com/firstservice/askbank/core/monitor"
	"github.com/firstservice/askbank/core/pipeline"
	"github.com/firstservice/askbank/core/retrieval"
	"github.com/firstservice/askbank/database"
	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
	loadSql "github.com/firstservice/askbank/sql"
)

// AskBank provides a unified interface to the retrieval-and-audit pipeline:
// the vector store and audit log handlers, the ingestion pipeline, the
// scoped retrieval engine, the answer pipeline, the anomaly monitor and
// the read-only admin console.
type AskBank struct {
	DB     *helper.Database
	Chunks *database.ChunksDBHandler
	Audit  *database.AuditDBHandler
	// Set by SetCollaborators / UseOllama
	Ingestor *pipeline.Ingestor
	Engine   *retrieval.Engine
	Answerer *answer.Answerer
	Monitor  *monitor.Monitor
	Console  *console.Console
	// Logging
	log *slog.Logger
}

// NewAskBank creates a new AskBank instance with all database handlers
// initialized. embeddingDim fixes the vector dimension of the store and
// must match the embedding collaborator's output size.
func NewAskBank(config *helper.DatabaseConfiguration, embeddingDim int) (*AskBank, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("askbank", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	audit, err := database.NewAuditDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create audit handler", err)
	}

	mon := monitor.NewMonitor(audit, monitor.LastN{N: monitor.DefaultWindowSize}, monitor.DefaultThreshold)
	con := console.NewConsole(chunks, audit)

	return &AskBank{
		DB:      db,
		Chunks:  chunks,
		Audit:   audit,
		Monitor: mon,
		Console: con,
		log:     logger,
	}, nil
}

// Close closes the database connection
func (a *AskBank) Close() error {
	if a.DB != nil && a.DB.Instance != nil {
		return a.DB.Instance.Close()
	}
	return nil
}

// SetCollaborators wires the embedding and generation collaborators and
// builds the ingestion pipeline, retrieval engine and answer pipeline on
// top of them. The same embed function must be used for ingestion and
// queries so both sides share a metric space.
func (a *AskBank) SetCollaborators(embed pipeline.EmbedFunc, generate pipeline.GenerateFunc) {
	a.Ingestor = pipeline.NewIngestor(a.Chunks, embed, a.log)
	a.Engine = retrieval.NewEngine(a.Chunks, embed)
	a.Answerer = answer.NewAnswerer(a.Engine, generate, a.Audit, a.log)
}

// UseOllama wires the Ollama HTTP collaborators for embedding and
// generation. The zero OllamaConfig gives localhost and the llama3 model,
// whose 4096-dimension output matches pipeline.OllamaDefaultDim.
func (a *AskBank) UseOllama(cfg pipeline.OllamaConfig) {
	client := pipeline.NewOllamaClient(cfg)
	a.SetCollaborators(client.EmbedFunc(), client.GenerateFunc())
}

// UseLocalEmbedder wires the local sentence transformer embedder for
// ingestion and queries, paired with the given generation collaborator.
// The all-MiniLM-L6-v2 model produces 384-dimensional embeddings, so the
// store must have been created with pipeline.LocalEmbedderDim.
func (a *AskBank) UseLocalEmbedder(generate pipeline.GenerateFunc) error {
	if dim := a.Chunks.EmbeddingDim(); dim != pipeline.LocalEmbedderDim {
		return helper.NewError("use local embedder", fmt.Errorf("store has embedding dimension %d, local embedder produces %d", dim, pipeline.LocalEmbedderDim))
	}

	embed, err := pipeline.LocalEmbedder()
	if err != nil {
		return helper.NewError("create local embedder", err)
	}

	a.SetCollaborators(embed, generate)
	return nil
}

// Answer answers one customer question and records it in the audit log.
func (a *AskBank) Answer(ctx context.Context, ownerID int, question string) (string, error) {
	if a.Answerer == nil {
		return "", helper.NewError("answer", fmt.Errorf("collaborators not set, use SetCollaborators() or UseOllama() first"))
	}
	return a.Answerer.Answer(ctx, ownerID, question)
}

// Ingest performs a full, lossy rebuild of the vector store from the given
// records. All previously ingested chunks are destroyed; see
// pipeline.Ingestor for the incremental two-step alternative. Must not run
// concurrently with answer traffic.
func (a *AskBank) Ingest(ctx context.Context, records []model.SourceRecord) (*model.IngestionReport, error) {
	if a.Ingestor == nil {
		return nil, helper.NewError("ingest", fmt.Errorf("collaborators not set, use SetCollaborators() or UseOllama() first"))
	}
	return a.Ingestor.Ingest(ctx, records)
}

// IngestCSV reads a batch file and performs a full, lossy rebuild from it.
func (a *AskBank) IngestCSV(ctx context.Context, path string) (*model.IngestionReport, error) {
	records, err := pipeline.ReadRecordsCSV(path)
	if err != nil {
		return nil, err
	}

	a.log.Info("Read batch file", slog.String("path", path), slog.Int("records", len(records)))

	return a.Ingest(ctx, records)
}

// Anomalies returns owners whose query count in the monitor's sampling
// window exceeds its threshold.
func (a *AskBank) Anomalies(ctx context.Context) (map[int]int, error) {
	return a.Monitor.Check(ctx)
}

// Stats returns the read-only health snapshot for the admin console,
// sampling the sampleSize most recent audit rows.
func (a *AskBank) Stats(ctx context.Context, sampleSize int) (*console.Stats, error) {
	return a.Console.Stats(ctx, sampleSize)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (a *AskBank) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return a.Chunks.ChangeIndexType(ctx, indexType, params)
}
