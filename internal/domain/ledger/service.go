package ledger

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/common/utils"
	"github.com/cofinco/backoffice/internal/domain/audit"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/errors"
	"github.com/cofinco/backoffice/pkg/validator"
)

// Service records operations and derives their double-entry journal rows
type Service struct {
	session   *document.Session
	validator validator.Validator
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time
}

// NewService creates a new ledger service
func NewService(session *document.Session, logger *zap.Logger, cfg Config) *Service {
	return &Service{
		session:   session,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Record stores the operation and its journal rows in a single save
func (s *Service) Record(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Amount.IsZero() {
		return nil, errors.NewMissingFieldError("montant")
	}
	if req.Amount.IsNegative() {
		return nil, errors.NewValidationError("montant must be positive")
	}

	rule, known := RuleFor(req.Type)
	if !known && s.cfg.StrictTypes {
		return nil, errors.NewUnknownOperationTypeError(string(req.Type))
	}

	result := &RecordResult{}
	err := s.session.Update(ctx, func(doc *document.Document) error {
		now := s.now()
		op := &document.Operation{
			ID:          ulid.Make().String(),
			AgencyID:    req.AgencyID,
			Date:        utils.Day(now),
			Type:        req.Type,
			Product:     req.Product,
			Amount:      req.Amount,
			ActorID:     req.ActorID,
			ClientPhone: utils.NormalizePhone(doc.Settings.OTP.CallingCode(), req.ClientPhone),
		}
		doc.Operations = append(doc.Operations, op)

		entries := []*document.JournalEntry{}
		if known {
			entries = post(op, rule)
		}
		doc.Journal = append(doc.Journal, entries...)

		audit.Append(doc, now, req.ActorID, audit.ActionOperationRecorded, map[string]interface{}{
			"op":      *op,
			"entries": entries,
		})

		result.Operation = op
		result.Entries = entries
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !known {
		s.logger.Warn("operation recorded without postings", zap.String("type", string(req.Type)), zap.String("id", result.Operation.ID))
	}
	return result, nil
}

// post builds the debit leg then the credit leg of an operation
func post(op *document.Operation, rule PostingRule) []*document.JournalEntry {
	leg := func(account document.LedgerAccount, debit, credit decimal.Decimal) *document.JournalEntry {
		return &document.JournalEntry{
			ID:          ulid.Make().String(),
			OperationID: op.ID,
			Date:        op.Date,
			AgencyID:    op.AgencyID,
			Account:     account,
			Debit:       debit,
			Credit:      credit,
			Label:       string(op.Type),
		}
	}
	return []*document.JournalEntry{
		leg(rule.Debit, op.Amount, decimal.Zero),
		leg(rule.Credit, decimal.Zero, op.Amount),
	}
}

// Operations returns all recorded operations in insertion order
func (s *Service) Operations(ctx context.Context) ([]*document.Operation, error) {
	var out []*document.Operation
	err := s.session.View(ctx, func(doc *document.Document) error {
		out = doc.Operations
		return nil
	})
	return out, err
}

// Journal returns all journal rows in insertion order
func (s *Service) Journal(ctx context.Context) ([]*document.JournalEntry, error) {
	var out []*document.JournalEntry
	err := s.session.View(ctx, func(doc *document.Document) error {
		out = doc.Journal
		return nil
	})
	return out, err
}

// TrialBalance aggregates the journal per account with balance = debit - credit
func (s *Service) TrialBalance(ctx context.Context) (TrialBalance, error) {
	var journal []*document.JournalEntry
	err := s.session.View(ctx, func(doc *document.Document) error {
		journal = doc.Journal
		return nil
	})
	if err != nil {
		return nil, err
	}
	return Aggregate(journal), nil
}

// Aggregate builds a trial balance from journal rows
func Aggregate(journal []*document.JournalEntry) TrialBalance {
	index := make(map[document.LedgerAccount]int)
	tb := TrialBalance{}
	for _, entry := range journal {
		i, ok := index[entry.Account]
		if !ok {
			i = len(tb)
			index[entry.Account] = i
			tb = append(tb, BalanceRow{Account: entry.Account, Debit: decimal.Zero, Credit: decimal.Zero})
		}
		tb[i].Debit = tb[i].Debit.Add(entry.Debit)
		tb[i].Credit = tb[i].Credit.Add(entry.Credit)
	}
	for i := range tb {
		tb[i].Balance = tb[i].Debit.Sub(tb[i].Credit)
	}
	return tb
}
