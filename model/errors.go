package model

import "errors"

// Error taxonomy for the retrieval-and-audit pipeline. All of these are
// recovered at the answer or ingestion boundary; only a schema reset
// failure halts an ingestion run. Match with errors.Is.
var (
	// ErrConnectivity marks an unreachable or timed-out embedding,
	// generation or storage endpoint.
	ErrConnectivity = errors.New("endpoint unreachable")

	// ErrSchemaReset marks a failed destructive store reset. Fatal to the
	// ingestion run that triggered it.
	ErrSchemaReset = errors.New("schema reset failed")

	// ErrChunkWrite marks a failed single chunk insert. The ingestion
	// pipeline skips the record and continues.
	ErrChunkWrite = errors.New("chunk write failed")

	// ErrRetrieval marks a failed query embedding. There is no fallback;
	// the answer invocation fails.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrAuditWrite marks a failed audit append after a response was
	// produced. The answer is still returned; the trail gap is reported.
	ErrAuditWrite = errors.New("audit write failed")
)
