package pipeline

import (
	"fmt"

	"github.com/firstservice/askbank/model"
)

// RenderRecord renders one customer record into the natural-language chunk
// text handed to the embedding collaborator and, at answer time, to the
// generation collaborator as grounding context. The wording is a contract
// with the generation model and must stay stable across runs so batches
// are reproducible.
func RenderRecord(record model.SourceRecord) string {
	return fmt.Sprintf(
		"Official First Service record: customer %s (account ID: %d) holds a current balance of %.2f USD. The account is of category %s and the last recorded movement was on %s.",
		record.Customer,
		record.OwnerID,
		record.Amount,
		record.Category,
		record.LastMovement,
	)
}
