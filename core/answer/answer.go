package answer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firstservice/askbank/core/pipeline"
	"github.com/firstservice/askbank/core/retrieval"
	"github.com/firstservice/askbank/database"
	"github.com/firstservice/askbank/helper"
	"github.com/firstservice/askbank/model"
)

// FailureMarker is recorded as the audit response when an invocation
// failed before any response text was produced. The trail stays complete
// even for failed questions.
const FailureMarker = "[no response: pipeline failure]"

// Answerer is the unit of work per incoming question: retrieve grounding
// context, generate a response, append the audit entry, return the
// response. Every completed invocation, success or user-visible failure,
// leaves exactly one audit entry behind.
type Answerer struct {
	engine   *retrieval.Engine
	generate pipeline.GenerateFunc
	audit    database.AuditDBHandlerFunctions
	log      *slog.Logger
}

// NewAnswerer creates an answer pipeline over the given retrieval engine,
// generation collaborator and audit log.
func NewAnswerer(engine *retrieval.Engine, generate pipeline.GenerateFunc, audit database.AuditDBHandlerFunctions, log *slog.Logger) *Answerer {
	return &Answerer{
		engine:   engine,
		generate: generate,
		audit:    audit,
		log:      log,
	}
}

// Answer answers one question for one customer. Retrieval completes
// before generation is issued, and the audit append is attempted before
// the response is handed back, so anything the caller displays has been
// through the audit write path. The recorded latency is the wall-clock
// time of the generation call.
//
// An audit write failure after a response was produced does not fail the
// answer: the response is still returned and the trail gap is reported at
// ERROR level.
func (a *Answerer) Answer(ctx context.Context, ownerID int, question string) (string, error) {
	grounding, err := a.engine.Retrieve(ctx, ownerID, question)
	if err != nil {
		a.recordFailure(ownerID, question, 0)
		return "", err
	}

	prompt := fmt.Sprintf("Context: %s. Question: %s", grounding, question)

	start := time.Now()
	response, err := a.generate(ctx, prompt)
	latency := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		a.recordFailure(ownerID, question, latency)
		return "", helper.NewError("generate response", fmt.Errorf("%w: %w", model.ErrConnectivity, err))
	}

	entry := &model.AuditEntry{
		OwnerID:   ownerID,
		Query:     question,
		Response:  response,
		LatencyMS: latency,
	}
	if err := a.audit.InsertEntry(entry); err != nil {
		a.log.Error("Audit write failed, answer returned with a trail gap",
			slog.Int("owner_id", ownerID),
			slog.String("question", question),
			slog.String("error", err.Error()),
		)
		return response, nil
	}

	return response, nil
}

// recordFailure appends a failure marker entry so failed invocations stay
// visible in the trail. Best effort: if the append itself fails there is
// nothing left to write to but the log.
func (a *Answerer) recordFailure(ownerID int, question string, latency float64) {
	entry := &model.AuditEntry{
		OwnerID:   ownerID,
		Query:     question,
		Response:  FailureMarker,
		LatencyMS: latency,
	}
	if err := a.audit.InsertEntry(entry); err != nil {
		a.log.Error("Failure marker audit write failed",
			slog.Int("owner_id", ownerID),
			slog.String("error", err.Error()),
		)
	}
}
