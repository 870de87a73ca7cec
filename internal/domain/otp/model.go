package otp

import (
	"context"
	"time"

	"github.com/cofinco/backoffice/internal/domain/document"
)

// IssueRequest asks for a new code to be sent to a phone
type IssueRequest struct {
	Phone   string           `json:"phone" validate:"required"`
	Purpose document.Purpose `json:"purpose" validate:"required"`
}

// IssueResult identifies the issued code. DemoCode is only set when the
// service runs with code reveal enabled.
type IssueResult struct {
	TransactionID string    `json:"txnId"`
	Phone         string    `json:"phone"`
	ExpireAt      time.Time `json:"expireAt"`
	DemoCode      string    `json:"codeDemo,omitempty"`
}

// VerifyRequest checks a code against an issued transaction
type VerifyRequest struct {
	TransactionID string `json:"txnId" validate:"required"`
	Code          string `json:"code" validate:"required"`
}

// Delivery is a code ready to be handed to the SMS provider
type Delivery struct {
	SMS     document.SmsConfig
	Phone   string
	Purpose document.Purpose
	Code    string
}

// CodeSender delivers issued codes out of band
type CodeSender interface {
	SendCode(ctx context.Context, d Delivery) error
}

// Config tunes the service
type Config struct {
	// RevealCode returns the generated code to the caller. Demo use only.
	RevealCode bool
}
