package model

import (
	"github.com/google/uuid"
)

// OwnerKey is the metadata field carrying the owning customer id.
// The retrieval scope filter matches on this field.
const OwnerKey = "user_id"

// Chunk represents one semantic text chunk with its vector embedding
// and owner metadata, as stored in the vector_store table.
// Chunks are immutable after insert; the only delete is a full store reset.
type Chunk struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"embedding,omitempty"`
	// Results
	Distance float64 `json:"distance,omitempty"`
}

// NewChunk creates a chunk with a fresh unique id and owner metadata.
func NewChunk(ownerID int, content string, embedding []float32) *Chunk {
	return &Chunk{
		ID:        uuid.New(),
		Content:   content,
		Metadata:  Metadata{OwnerKey: ownerID},
		Embedding: embedding,
	}
}

// OwnerID returns the owner id from the chunk metadata.
// The second return is false if the metadata carries no usable owner id.
func (c *Chunk) OwnerID() (int, bool) {
	return c.Metadata.OwnerID()
}
