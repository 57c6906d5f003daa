package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/firstservice/askbank/helper"
)

// Metadata represents JSONB metadata stored in PostgreSQL.
// For account chunks it must carry the owner id under OwnerKey.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, m)
}

// OwnerID extracts the owner id from the metadata. JSON round-trips turn
// integers into float64, so both representations are accepted.
func (m Metadata) OwnerID() (int, bool) {
	v, ok := m[OwnerKey]
	if !ok {
		return 0, false
	}

	switch id := v.(type) {
	case int:
		return id, true
	case int64:
		return int(id), true
	case float64:
		return int(id), true
	default:
		return 0, false
	}
}
