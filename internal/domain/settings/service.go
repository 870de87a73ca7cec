package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/cofinco/backoffice/internal/domain/audit"
	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/errors"
)

// Service reads and updates process-wide settings stored in the document
type Service struct {
	session *document.Session
	now     func() time.Time
}

// NewService creates a new settings service
func NewService(session *document.Session) *Service {
	return &Service{
		session: session,
		now:     time.Now,
	}
}

// Get returns the full settings block
func (s *Service) Get(ctx context.Context) (document.Settings, error) {
	var out document.Settings
	err := s.session.View(ctx, func(doc *document.Document) error {
		out = doc.Settings
		return nil
	})
	return out, err
}

// OtpConfig returns the OTP configuration
func (s *Service) OtpConfig(ctx context.Context) (document.OtpConfig, error) {
	settings, err := s.Get(ctx)
	return settings.OTP, err
}

// MergeOtpConfig overwrites the supplied fields and keeps the rest
func (s *Service) MergeOtpConfig(ctx context.Context, patch OtpConfigPatch) (document.OtpConfig, error) {
	var out document.OtpConfig
	err := s.session.Update(ctx, func(doc *document.Document) error {
		merged, fields := patch.Merge(doc.Settings.OTP)
		if err := validateOtpConfig(merged); err != nil {
			return err
		}
		doc.Settings.OTP = merged
		out = merged
		if len(fields) > 0 {
			audit.Append(doc, s.now(), audit.SystemActor, audit.ActionOtpSettingsUpdated, map[string]interface{}{"fields": fields})
		}
		return nil
	})
	return out, err
}

// MergeSmsConfig overwrites the supplied fields and keeps the rest
func (s *Service) MergeSmsConfig(ctx context.Context, patch SmsConfigPatch) (document.SmsConfig, error) {
	var out document.SmsConfig
	err := s.session.Update(ctx, func(doc *document.Document) error {
		merged, fields := patch.Merge(doc.Settings.SMS)
		doc.Settings.SMS = merged
		out = merged
		if len(fields) > 0 {
			audit.Append(doc, s.now(), audit.SystemActor, audit.ActionSmsSettingsUpdated, map[string]interface{}{"fields": fields})
		}
		return nil
	})
	return out, err
}

func validateOtpConfig(cfg document.OtpConfig) error {
	if cfg.CodeLength < 1 || cfg.CodeLength > document.MaxCodeLength {
		return errors.NewValidationError(fmt.Sprintf("otp length must be between 1 and %d", document.MaxCodeLength))
	}
	if cfg.TTLSeconds <= 0 {
		return errors.NewValidationError("otp ttl must be positive")
	}
	return nil
}
