package document

import (
	"context"

	"go.uber.org/zap"

	apperrors "github.com/cofinco/backoffice/internal/domain/errors"
)

// Locker serialises whole-document operations. The returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context) (unlock func(context.Context) error, err error)
}

// NoopLocker performs no serialisation
type NoopLocker struct{}

func (NoopLocker) Lock(ctx context.Context) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}

// CommitHook is called after a successful save with the audit entries the update appended,
// oldest first
type CommitHook func(ctx context.Context, entries []*AuditEntry)

// Session runs load/mutate/save cycles against a Repository
type Session struct {
	repo   Repository
	locker Locker
	hooks  []CommitHook
	logger *zap.Logger
}

// Option configures a Session
type Option func(*Session)

func WithLocker(l Locker) Option {
	return func(s *Session) {
		if l != nil {
			s.locker = l
		}
	}
}

func WithCommitHook(h CommitHook) Option {
	return func(s *Session) {
		if h != nil {
			s.hooks = append(s.hooks, h)
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession creates a new document session
func NewSession(repo Repository, opts ...Option) *Session {
	s := &Session{
		repo:   repo,
		locker: NoopLocker{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update loads the document, applies fn and saves the result.
// Nothing is saved when fn returns an error.
func (s *Session) Update(ctx context.Context, fn func(doc *Document) error) error {
	unlock, err := s.locker.Lock(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to lock document", err)
	}
	defer func() {
		if err := unlock(ctx); err != nil {
			s.logger.Warn("failed to release document lock", zap.Error(err))
		}
	}()

	doc, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	auditBefore := len(doc.Audit)
	if err := fn(doc); err != nil {
		return err
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		s.logger.Error("failed to save document", zap.Error(err))
		return err
	}

	if added := len(doc.Audit) - auditBefore; added > 0 && len(s.hooks) > 0 {
		// Audit is newest first; hand entries over in the order they happened.
		entries := make([]*AuditEntry, 0, added)
		for i := added - 1; i >= 0; i-- {
			entries = append(entries, doc.Audit[i])
		}
		for _, hook := range s.hooks {
			hook(ctx, entries)
		}
	}
	return nil
}

// View loads the document and passes it to fn without saving
func (s *Session) View(ctx context.Context, fn func(doc *Document) error) error {
	doc, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	return fn(doc)
}
