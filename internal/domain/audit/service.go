package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/domain/document"
)

// Append prepends an entry to the document's audit log and returns it.
// The log is newest first and has no removal path.
func Append(doc *document.Document, at time.Time, actor, action string, details map[string]interface{}) *document.AuditEntry {
	entry := &document.AuditEntry{
		At:      at.UTC(),
		Actor:   actor,
		Action:  action,
		Details: details,
	}
	doc.Audit = append([]*document.AuditEntry{entry}, doc.Audit...)
	return entry
}

// Publisher forwards committed audit entries to an event stream
type Publisher interface {
	Publish(ctx context.Context, entry *document.AuditEntry) error
}

// PublishHook adapts a Publisher to a document commit hook. The document stays the
// system of record, so publish failures are only logged.
func PublishHook(pub Publisher, logger *zap.Logger) document.CommitHook {
	return func(ctx context.Context, entries []*document.AuditEntry) {
		for _, entry := range entries {
			if err := pub.Publish(ctx, entry); err != nil {
				logger.Warn("failed to publish audit entry",
					zap.String("action", entry.Action),
					zap.String("actor", entry.Actor),
					zap.Error(err))
			}
		}
	}
}

// Service exposes the audit log
type Service struct {
	session *document.Session
}

// NewService creates a new audit service
func NewService(session *document.Session) *Service {
	return &Service{session: session}
}

// List returns all entries, newest first
func (s *Service) List(ctx context.Context) ([]*document.AuditEntry, error) {
	var entries []*document.AuditEntry
	err := s.session.View(ctx, func(doc *document.Document) error {
		entries = append(entries, doc.Audit...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}
