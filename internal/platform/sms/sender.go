package sms

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cofinco/backoffice/internal/domain/document"
	"github.com/cofinco/backoffice/internal/domain/otp"
)

// LogSender renders the configured SMS template and writes it to the log
// instead of calling the provider.
type LogSender struct {
	logger     *zap.Logger
	revealCode bool
}

func NewLogSender(logger *zap.Logger, revealCode bool) *LogSender {
	return &LogSender{logger: logger, revealCode: revealCode}
}

// SendCode implements otp.CodeSender
func (s *LogSender) SendCode(ctx context.Context, d otp.Delivery) error {
	code := d.Code
	if !s.revealCode {
		code = mask(code)
	}

	s.logger.Info("sms sent",
		zap.String("provider", d.SMS.Provider),
		zap.String("sender", d.SMS.Sender),
		zap.String("to", d.Phone),
		zap.String("body", Render(d.SMS.Template, code, d.Purpose)))
	return nil
}

// Render substitutes {{code}} and {{purpose}} in the template
func Render(template, code string, purpose document.Purpose) string {
	if template == "" {
		template = document.DefaultSmsTemplate
	}
	return strings.NewReplacer(
		"{{code}}", code,
		"{{purpose}}", formatPurpose(purpose),
	).Replace(template)
}

func formatPurpose(p document.Purpose) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(p), "_", " "))
}

func mask(code string) string {
	return strings.Repeat("*", len(code))
}
