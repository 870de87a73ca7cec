package document

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amounts are written as JSON numbers; decoding accepts numbers and strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Purpose identifies what an OTP is issued for
type Purpose string

const (
	PurposeOpen  Purpose = "open"
	PurposeCash  Purpose = "cash"
	PurposeField Purpose = "field"
)

// AccountStatus is the lifecycle state of an account-opening request
type AccountStatus string

const (
	StatusPending     AccountStatus = "PENDING"
	StatusAwaitingOtp AccountStatus = "AWAITING_OTP"
	StatusActive      AccountStatus = "ACTIVE"
	StatusRejected    AccountStatus = "REJECTED"
)

// OperationType is the kind of client-facing operation recorded at a counter or in the field.
// Values are the labels used by the front office and double as journal labels.
type OperationType string

const (
	OperationCashDeposit         OperationType = "Dépôt caisse"
	OperationCashWithdrawal      OperationType = "Retrait caisse"
	OperationCreditCollection    OperationType = "Recouvrement crédit"
	OperationTontineContribution OperationType = "Contribution tontine"
)

// LedgerAccount names a general ledger account
type LedgerAccount string

const (
	AccountCash    LedgerAccount = "Caisse"
	AccountSavings LedgerAccount = "Epargne"
	AccountCredit  LedgerAccount = "Crédit"
	AccountTontine LedgerAccount = "Tontine"
)

// Document is the whole persisted application state
type Document struct {
	Meta       Meta                  `json:"meta"`
	Users      []User                `json:"users"`
	Settings   Settings              `json:"settings"`
	Accounts   Accounts              `json:"accounts"`
	Operations []*Operation          `json:"operations"`
	Journal    []*JournalEntry       `json:"journal"`
	Otps       map[string]*OtpRecord `json:"otps"`
	Audit      []*AuditEntry         `json:"audit"`
}

type Meta struct {
	Version    string    `json:"version"`
	LastUpdate time.Time `json:"last_update"`
}

// User is a seeded back-office operator
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Settings struct {
	SMS SmsConfig `json:"sms"`
	OTP OtpConfig `json:"otp"`
}

// SmsConfig holds the outbound SMS provider settings
type SmsConfig struct {
	Provider string `json:"provider"`
	Sender   string `json:"sender"`
	APIKey   string `json:"apiKey"`
	Template string `json:"template"`
}

// OtpConfig controls code generation and which purposes may issue codes
type OtpConfig struct {
	CodeLength         int    `json:"length"`
	TTLSeconds         int    `json:"ttl"`
	EnableOpen         bool   `json:"enable_open"`
	EnableCash         bool   `json:"enable_cash"`
	EnableField        bool   `json:"enable_field"`
	CountryCallingCode string `json:"cc"`
}

// Enabled reports whether codes may be issued for the purpose.
// Unknown purposes are never enabled.
func (c OtpConfig) Enabled(p Purpose) bool {
	switch p {
	case PurposeOpen:
		return c.EnableOpen
	case PurposeCash:
		return c.EnableCash
	case PurposeField:
		return c.EnableField
	default:
		return false
	}
}

// Length returns the code length, falling back to the default when unset
// and capped at MaxCodeLength
func (c OtpConfig) Length() int {
	switch {
	case c.CodeLength <= 0:
		return DefaultCodeLength
	case c.CodeLength > MaxCodeLength:
		return MaxCodeLength
	}
	return c.CodeLength
}

// TTL returns the validity window of a code, falling back to the default when unset
func (c OtpConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return DefaultTTLSeconds * time.Second
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// CallingCode returns the country calling code used to normalise phones
func (c OtpConfig) CallingCode() string {
	if c.CountryCallingCode == "" {
		return DefaultCountryCallingCode
	}
	return c.CountryCallingCode
}

// OtpRecord is an issued one-time code. Records are never deleted.
type OtpRecord struct {
	TransactionID string    `json:"txnId"`
	Code          string    `json:"code"`
	Phone         string    `json:"phone"`
	Purpose       Purpose   `json:"purpose"`
	ExpireAt      time.Time `json:"expireAt"`
	Verified      bool      `json:"verified"`
}

// Accounts splits account requests into the pending and active collections.
// AWAITING_OTP requests stay in Pending.
type Accounts struct {
	Pending []*AccountRequest `json:"pending"`
	Active  []*AccountRequest `json:"active"`
}

type AccountRequest struct {
	ID          string        `json:"id"`
	Name        string        `json:"nom"`
	Phone       string        `json:"tel"`
	AccountType string        `json:"type"`
	Status      AccountStatus `json:"status"`
	CreatedBy   string        `json:"createdBy"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Operation is an immutable client-facing transaction
type Operation struct {
	ID          string          `json:"id"`
	AgencyID    string          `json:"agence"`
	Date        string          `json:"date"`
	Type        OperationType   `json:"type"`
	Product     string          `json:"produit"`
	Amount      decimal.Decimal `json:"montant"`
	ActorID     string          `json:"acteur"`
	ClientPhone string          `json:"client"`
}

// JournalEntry is one leg of a double-entry posting
type JournalEntry struct {
	ID          string          `json:"id"`
	OperationID string          `json:"operationId"`
	Date        string          `json:"date"`
	AgencyID    string          `json:"agence"`
	Account     LedgerAccount   `json:"compte"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Label       string          `json:"libelle"`
}

// AuditEntry records a state-changing action
type AuditEntry struct {
	At      time.Time              `json:"at"`
	Actor   string                 `json:"user"`
	Action  string                 `json:"action"`
	Details map[string]interface{} `json:"details"`
}

// FindPending returns the index of a pending request, or -1
func (d *Document) FindPending(id string) int {
	for i, acc := range d.Accounts.Pending {
		if acc.ID == id {
			return i
		}
	}
	return -1
}

// FindActive returns the index of an active account, or -1
func (d *Document) FindActive(id string) int {
	for i, acc := range d.Accounts.Active {
		if acc.ID == id {
			return i
		}
	}
	return -1
}

// FindUser looks up a user by username
func (d *Document) FindUser(username string) (User, bool) {
	for _, u := range d.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

// normalize fills collections that a hand-edited or older document may lack
func (d *Document) normalize() {
	if d.Otps == nil {
		d.Otps = make(map[string]*OtpRecord)
	}
	if d.Accounts.Pending == nil {
		d.Accounts.Pending = []*AccountRequest{}
	}
	if d.Accounts.Active == nil {
		d.Accounts.Active = []*AccountRequest{}
	}
	if d.Operations == nil {
		d.Operations = []*Operation{}
	}
	if d.Journal == nil {
		d.Journal = []*JournalEntry{}
	}
	if d.Audit == nil {
		d.Audit = []*AuditEntry{}
	}
}
