package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/common/utils"
	"github.com/cofinco/backoffice/internal/domain/audit"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/errors"
	"github.com/cofinco/backoffice/pkg/validator"
)

// Service drives account-opening requests through
// PENDING -> AWAITING_OTP -> ACTIVE, or PENDING -> REJECTED.
type Service struct {
	session   *document.Session
	validator validator.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a new account workflow service
func NewService(session *document.Session, logger *zap.Logger) *Service {
	return &Service{
		session:   session,
		validator: validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Open records a new pending request
func (s *Service) Open(ctx context.Context, req OpenRequest) (*document.AccountRequest, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var acc *document.AccountRequest
	err := s.session.Update(ctx, func(doc *document.Document) error {
		now := s.now()
		acc = &document.AccountRequest{
			ID:          uuid.New().String(),
			Name:        req.Name,
			Phone:       utils.NormalizePhone(doc.Settings.OTP.CallingCode(), req.Phone),
			AccountType: req.AccountType,
			Status:      document.StatusPending,
			CreatedBy:   req.CreatedBy,
			CreatedAt:   now.UTC(),
		}
		doc.Accounts.Pending = append(doc.Accounts.Pending, acc)

		audit.Append(doc, now, actorOr(req.CreatedBy, defaultCreator), audit.ActionAccountCreated, map[string]interface{}{
			"acc": *acc,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account request opened", zap.String("id", acc.ID), zap.String("type", acc.AccountType))
	return acc, nil
}

// Approve moves a pending request to AWAITING_OTP. The OTP itself is issued
// separately with purpose "open".
func (s *Service) Approve(ctx context.Context, id, approvedBy string) (*document.AccountRequest, error) {
	var acc *document.AccountRequest
	err := s.session.Update(ctx, func(doc *document.Document) error {
		idx := doc.FindPending(id)
		if idx == -1 {
			return errors.NewNotFoundError("account request not found")
		}

		acc = doc.Accounts.Pending[idx]
		acc.Status = document.StatusAwaitingOtp
		audit.Append(doc, s.now(), actorOr(approvedBy, defaultApprover), audit.ActionAccountApproved, map[string]interface{}{
			"accId": id,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Confirm activates a pending request. The referenced OTP must exist, carry the
// supplied code and be verified.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*document.AccountRequest, error) {
	var acc *document.AccountRequest
	err := s.session.Update(ctx, func(doc *document.Document) error {
		rec, ok := doc.Otps[req.OtpTransactionID]
		if !ok || rec.Code != req.Code || !rec.Verified {
			return errors.NewOtpNotVerifiedError("otp has not been verified")
		}

		idx := doc.FindPending(req.ID)
		if idx == -1 {
			return errors.NewNotFoundError("account request not found")
		}

		acc = doc.Accounts.Pending[idx]
		acc.Status = document.StatusActive
		doc.Accounts.Active = append(doc.Accounts.Active, acc)
		doc.Accounts.Pending = append(doc.Accounts.Pending[:idx], doc.Accounts.Pending[idx+1:]...)

		audit.Append(doc, s.now(), actorOr(req.ConfirmedBy, defaultApprover), audit.ActionAccountConfirmed, map[string]interface{}{
			"accId": req.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account activated", zap.String("id", acc.ID))
	return acc, nil
}

// Reject removes a pending request permanently
func (s *Service) Reject(ctx context.Context, id, rejectedBy, reason string) error {
	return s.session.Update(ctx, func(doc *document.Document) error {
		idx := doc.FindPending(id)
		if idx == -1 {
			return errors.NewNotFoundError("account request not found")
		}

		doc.Accounts.Pending[idx].Status = document.StatusRejected
		doc.Accounts.Pending = append(doc.Accounts.Pending[:idx], doc.Accounts.Pending[idx+1:]...)

		audit.Append(doc, s.now(), actorOr(rejectedBy, defaultApprover), audit.ActionAccountRejected, map[string]interface{}{
			"accId":  id,
			"reason": reason,
		})
		return nil
	})
}

// List returns the collection matching status. ACTIVE selects the active set,
// PENDING the pending set (including AWAITING_OTP) and an empty status both.
func (s *Service) List(ctx context.Context, status document.AccountStatus) (*Listing, error) {
	out := &Listing{}
	err := s.session.View(ctx, func(doc *document.Document) error {
		switch status {
		case document.StatusActive:
			out.Active = doc.Accounts.Active
		case document.StatusPending:
			out.Pending = doc.Accounts.Pending
		case "":
			out.Pending = doc.Accounts.Pending
			out.Active = doc.Accounts.Active
		default:
			return errors.NewValidationError("status must be PENDING or ACTIVE")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func actorOr(actor, fallback string) string {
	if actor == "" {
		return fallback
	}
	return actor
}

