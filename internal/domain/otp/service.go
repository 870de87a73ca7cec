package otp

import (
	"context"
	"crypto/rand"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/cofinco/backoffice/internal/common/utils"
	"github.com/cofinco/backoffice/internal/domain/audit"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/errors"
	"github.com/cofinco/backoffice/pkg/validator"
)

// Service issues and verifies one-time codes
type Service struct {
	session   *document.Session
	sender    CodeSender
	validator validator.Validator
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time
	entropy   io.Reader
}

// NewService creates a new OTP service
func NewService(session *document.Session, sender CodeSender, logger *zap.Logger, cfg Config) *Service {
	return &Service{
		session:   session,
		sender:    sender,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		entropy:   rand.Reader,
	}
}

// Issue generates and stores a code for the phone, then hands it to the sender
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		rec *document.OtpRecord
		sms document.SmsConfig
	)
	err := s.session.Update(ctx, func(doc *document.Document) error {
		cfg := doc.Settings.OTP
		if !cfg.Enabled(req.Purpose) {
			return errors.NewPurposeDisabledError(string(req.Purpose))
		}

		code, err := randomCode(s.entropy, cfg.Length())
		if err != nil {
			return errors.NewInternalError("failed to generate code", err)
		}

		now := s.now()
		rec = &document.OtpRecord{
			TransactionID: ulid.Make().String(),
			Code:          code,
			Phone:         utils.NormalizePhone(cfg.CallingCode(), req.Phone),
			Purpose:       req.Purpose,
			ExpireAt:      now.Add(cfg.TTL()).UTC(),
		}
		doc.Otps[rec.TransactionID] = rec
		sms = doc.Settings.SMS

		audit.Append(doc, now, audit.SystemActor, audit.ActionOtpSend, map[string]interface{}{
			"txnId":   rec.TransactionID,
			"phone":   rec.Phone,
			"purpose": string(rec.Purpose),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = s.sender.SendCode(ctx, Delivery{SMS: sms, Phone: rec.Phone, Purpose: rec.Purpose, Code: rec.Code})
	if err != nil {
		s.logger.Error("failed to deliver otp",
			zap.String("txnId", rec.TransactionID),
			zap.String("phone", rec.Phone),
			zap.Error(err))
		return nil, errors.NewInternalError("failed to deliver code", err)
	}

	s.logger.Info("otp issued",
		zap.String("txnId", rec.TransactionID),
		zap.String("purpose", string(rec.Purpose)))

	result := &IssueResult{
		TransactionID: rec.TransactionID,
		Phone:         rec.Phone,
		ExpireAt:      rec.ExpireAt,
	}
	if s.cfg.RevealCode {
		result.DemoCode = rec.Code
	}
	return result, nil
}

// Verify marks the transaction verified when the code matches before expiry.
// Verifying again with the same correct code succeeds.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	return s.session.Update(ctx, func(doc *document.Document) error {
		rec, ok := doc.Otps[req.TransactionID]
		if !ok {
			return errors.NewNotFoundError("otp transaction not found")
		}

		now := s.now()
		if now.After(rec.ExpireAt) {
			return errors.NewExpiredError("otp has expired")
		}
		if rec.Code != req.Code {
			return errors.NewCodeMismatchError("otp code is incorrect")
		}

		rec.Verified = true
		audit.Append(doc, now, audit.SystemActor, audit.ActionOtpVerify, map[string]interface{}{
			"txnId": rec.TransactionID,
		})
		return nil
	})
}
