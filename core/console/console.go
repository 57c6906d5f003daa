package console

import (
	"context"

	"github.com/firstservice/askbank/database"
	"github.com/firstservice/askbank/model"
)

// Stats is the read-only health snapshot served to an external admin
// dashboard: store and log sizes, average pipeline latency, the most
// recent audit rows and the per-owner count histogram over that sample.
type Stats struct {
	TotalChunks    int64               `json:"total_chunks"`
	TotalEntries   int64               `json:"total_entries"`
	AvgLatencyMS   float64             `json:"avg_latency_ms"`
	Recent         []*model.AuditEntry `json:"recent"`
	OwnerHistogram map[int]int         `json:"owner_histogram"`
}

// Console aggregates the compliance log and vector store for operational
// reads. It never writes.
type Console struct {
	chunks database.ChunksDBHandlerFunctions
	audit  database.AuditDBHandlerFunctions
}

// NewConsole creates a console over the given handlers.
func NewConsole(chunks database.ChunksDBHandlerFunctions, audit database.AuditDBHandlerFunctions) *Console {
	return &Console{
		chunks: chunks,
		audit:  audit,
	}
}

// Stats collects the current health snapshot, sampling the sampleSize most
// recent audit rows for the detail view and histogram.
func (c *Console) Stats(ctx context.Context, sampleSize int) (*Stats, error) {
	totalChunks, err := c.chunks.CountChunks()
	if err != nil {
		return nil, err
	}

	totalEntries, err := c.audit.CountEntries()
	if err != nil {
		return nil, err
	}

	avgLatency, err := c.audit.AverageLatency()
	if err != nil {
		return nil, err
	}

	recent, err := c.audit.SelectRecentEntries(sampleSize)
	if err != nil {
		return nil, err
	}

	histogram := make(map[int]int)
	for _, entry := range recent {
		histogram[entry.OwnerID]++
	}

	return &Stats{
		TotalChunks:    totalChunks,
		TotalEntries:   totalEntries,
		AvgLatencyMS:   avgLatency,
		Recent:         recent,
		OwnerHistogram: histogram,
	}, nil
}
