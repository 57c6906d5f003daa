package model

// SourceRecord is one tabular customer record consumed by ingestion.
// It is ephemeral input, not persisted as-is.
type SourceRecord struct {
	Customer     string  `json:"customer"`
	OwnerID      int     `json:"id"`
	Amount       float64 `json:"amount"`
	Category     string  `json:"category"`
	LastMovement string  `json:"last_movement"`
}

// IngestionReport summarizes one batch load.
// Aborted means the batch stopped early on an embedding failure and the
// remaining records were never attempted.
type IngestionReport struct {
	Inserted int  `json:"inserted"`
	Skipped  int  `json:"skipped"`
	Aborted  bool `json:"aborted"`
}
