package ledger

import "github.com/cofinco/backoffice/internal/domain/document"

// PostingRule names the ledger accounts debited and credited by an operation type
type PostingRule struct {
	Debit  document.LedgerAccount
	Credit document.LedgerAccount
}

// RuleFor returns the posting rule of a known operation type
func RuleFor(t document.OperationType) (PostingRule, bool) {
	switch t {
	case document.OperationCashDeposit:
		return PostingRule{Debit: document.AccountCash, Credit: document.AccountSavings}, true
	case document.OperationCashWithdrawal:
		return PostingRule{Debit: document.AccountSavings, Credit: document.AccountCash}, true
	case document.OperationCreditCollection:
		return PostingRule{Debit: document.AccountCash, Credit: document.AccountCredit}, true
	case document.OperationTontineContribution:
		return PostingRule{Debit: document.AccountCash, Credit: document.AccountTontine}, true
	default:
		return PostingRule{}, false
	}
}

// KnownTypes lists the operation types that produce postings
func KnownTypes() []document.OperationType {
	return []document.OperationType{
		document.OperationCashDeposit,
		document.OperationCashWithdrawal,
		document.OperationCreditCollection,
		document.OperationTontineContribution,
	}
}
