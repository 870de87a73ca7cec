package events

import (
	"encoding/json"
	"fmt"

	"github.com/cofinco/backoffice/internal/domain/document"
)

// DefaultExchange is the exchange or topic audit entries are published to
const DefaultExchange = "backoffice.audit"

// AuditEvent is the wire form of a published audit entry
type AuditEvent struct {
	Type    string                 `json:"type"`
	At      string                 `json:"at"`
	Actor   string                 `json:"user"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func encode(entry *document.AuditEntry) ([]byte, error) {
	body, err := json.Marshal(AuditEvent{
		Type:    entry.Action,
		At:      entry.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Actor:   entry.Actor,
		Details: entry.Details,
	})
	if err != nil {
		return nil, fmt.Errorf("encode audit event %s: %w", entry.Action, err)
	}
	return body, nil
}
