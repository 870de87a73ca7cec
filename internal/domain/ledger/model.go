package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cofinco/backoffice/internal/domain/document"
)

// RecordRequest describes a client-facing operation to record
type RecordRequest struct {
	AgencyID    string                 `json:"agence" validate:"required"`
	Type        document.OperationType `json:"type" validate:"required"`
	Product     string                 `json:"produit" validate:"required"`
	Amount      decimal.Decimal        `json:"montant"`
	ActorID     string                 `json:"acteur" validate:"required"`
	ClientPhone string                 `json:"client" validate:"required"`
}

// RecordResult is the stored operation with the journal rows it produced
type RecordResult struct {
	Operation *document.Operation      `json:"operation"`
	Entries   []*document.JournalEntry `json:"entries"`
}

// BalanceRow aggregates the journal for one ledger account
type BalanceRow struct {
	Account document.LedgerAccount `json:"compte"`
	Debit   decimal.Decimal        `json:"debit"`
	Credit  decimal.Decimal        `json:"credit"`
	Balance decimal.Decimal        `json:"solde"`
}

// TrialBalance lists accounts in the order they first appear in the journal
type TrialBalance []BalanceRow

// Total sums every account balance. A consistent journal totals zero.
func (tb TrialBalance) Total() decimal.Decimal {
	total := decimal.Zero
	for _, row := range tb {
		total = total.Add(row.Balance)
	}
	return total
}

// Closes reports whether total debits equal total credits
func (tb TrialBalance) Closes() bool {
	return tb.Total().IsZero()
}

// Config tunes the ledger
type Config struct {
	// StrictTypes rejects operation types with no posting rule instead of
	// recording them without journal rows
	StrictTypes bool
}
