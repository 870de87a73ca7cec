package account

import "github.com/cofinco/backoffice/internal/domain/document"

// Default actors used when a request does not name one
const (
	defaultCreator  = "unknown"
	defaultApprover = "chef"
)

// OpenRequest creates a pending account request
type OpenRequest struct {
	Name        string `json:"nom" validate:"required"`
	Phone       string `json:"tel" validate:"required"`
	AccountType string `json:"type" validate:"required"`
	CreatedBy   string `json:"createdBy"`
}

// ConfirmRequest activates an account once its OTP is verified
type ConfirmRequest struct {
	ID               string `json:"-"`
	OtpTransactionID string `json:"otpTxnId"`
	Code             string `json:"code"`
	ConfirmedBy      string `json:"confirmedBy"`
}

// Listing is returned when no status filter is given
type Listing struct {
	Pending []*document.AccountRequest `json:"pending"`
	Active  []*document.AccountRequest `json:"active"`
}
