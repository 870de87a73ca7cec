package document

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	apperrors "github.com/cofinco/backoffice/internal/domain/errors"
)

// ErrNoDocument is returned by a Storage when nothing has been written yet
var ErrNoDocument = errors.New("document does not exist")

// Repository loads and saves the whole document
type Repository interface {
	// Load returns the current document, creating and persisting the seed on first use
	Load(ctx context.Context) (*Document, error)

	// Save replaces the stored document
	Save(ctx context.Context, doc *Document) error
}

// Storage is a byte-level backend holding one serialized document
type Storage interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, body []byte) error
}

// JSONRepository implements Repository on top of any Storage
type JSONRepository struct {
	storage Storage
	now     func() time.Time
}

// NewJSONRepository creates a repository that encodes the document as JSON
func NewJSONRepository(storage Storage) *JSONRepository {
	return &JSONRepository{
		storage: storage,
		now:     time.Now,
	}
}

// WithClock overrides the clock used for seeding and last-update stamps
func (r *JSONRepository) WithClock(now func() time.Time) *JSONRepository {
	r.now = now
	return r
}

// Load implements Repository.Load
func (r *JSONRepository) Load(ctx context.Context) (*Document, error) {
	body, err := r.storage.Read(ctx)
	if errors.Is(err, ErrNoDocument) {
		doc := Seed(r.now())
		if err := r.Save(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read document", err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperrors.NewInternalError("failed to decode document", err)
	}
	doc.normalize()
	return &doc, nil
}

// Save implements Repository.Save
func (r *JSONRepository) Save(ctx context.Context, doc *Document) error {
	doc.Meta.LastUpdate = r.now().UTC()
	if doc.Meta.Version == "" {
		doc.Meta.Version = SchemaVersion
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return apperrors.NewInternalError("failed to encode document", err)
	}
	if err := r.storage.Write(ctx, body); err != nil {
		return apperrors.NewInternalError("failed to write document", err)
	}
	return nil
}

// MemoryStorage keeps the serialized document in memory
type MemoryStorage struct {
	body []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Read(ctx context.Context) ([]byte, error) {
	if m.body == nil {
		return nil, ErrNoDocument
	}
	return append([]byte(nil), m.body...), nil
}

func (m *MemoryStorage) Write(ctx context.Context, body []byte) error {
	m.body = append([]byte(nil), body...)
	return nil
}
