package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
	loadSql "github.com/firstservice/askbank/sql"
)

// ChunksDBHandlerFunctions defines the interface for vector store operations.
type ChunksDBHandlerFunctions interface {
	Reset(ctx context.Context) error
	InsertChunk(chunk *model.Chunk) error
	SelectNearestChunk(ownerID int, embedding []float32) (*model.Chunk, error)
	CountChunks() (int64, error)
}

// ChunksDBHandler handles the vector_store table.
type ChunksDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// NewChunksDBHandler creates a new vector store handler.
// It loads the chunk-related SQL functions and creates the vector_store
// table if it does not exist yet. If force is true the SQL functions are
// reloaded even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'vector_store' table in the database.
// If the table already exists, it does not create it again.
func (h *ChunksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_vector_store($1);`, h.embeddingDim)
	if err != nil {
		return helper.NewError("initialize vector_store table", err)
	}

	h.db.Logger.Info("Checked/created table vector_store")

	return nil
}

// EmbeddingDim returns the fixed embedding dimension of this store instance.
func (h *ChunksDBHandler) EmbeddingDim() int {
	return h.embeddingDim
}

// Reset destructively recreates the vector store empty. All prior chunks
// are lost. Callers must guarantee exclusive access for the duration of
// the reset; the store cannot enforce that transactionally.
func (h *ChunksDBHandler) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT reset_vector_store($1);`, h.embeddingDim)
	if err != nil {
		return helper.NewError("reset vector store", fmt.Errorf("%w: %w", model.ErrSchemaReset, err))
	}

	h.db.Logger.Info("Reset table vector_store")

	return nil
}

// InsertChunk appends one immutable chunk to the store.
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_vector_chunk($1, $2, $3, $4)`,
		chunk.ID,
		chunk.Content,
		chunk.Metadata,
		pgvector.NewVector(chunk.Embedding),
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.Content,
		&chunk.Metadata,
	)
	if err != nil {
		return helper.NewError("scan", fmt.Errorf("%w: %w", model.ErrChunkWrite, err))
	}

	return nil
}

// SelectNearestChunk returns the single chunk closest to the given vector
// among chunks owned by ownerID, or nil if that owner has no chunks.
// The owner filter is part of the SQL query, so chunks of other owners
// can never be returned.
func (h *ChunksDBHandler) SelectNearestChunk(ownerID int, embedding []float32) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_nearest_chunk($1, $2)`,
		ownerID,
		pgvector.NewVector(embedding),
	)

	chunk := &model.Chunk{}
	err := row.Scan(
		&chunk.ID,
		&chunk.Content,
		&chunk.Metadata,
		&chunk.Distance,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// CountChunks returns the total number of stored chunks.
func (h *ChunksDBHandler) CountChunks() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_vector_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}
