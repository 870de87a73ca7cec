package settings

import "github.com/cofinco/backoffice/internal/domain/document"

// OtpConfigPatch is a partial update of the OTP configuration.
// Nil fields keep their current value.
type OtpConfigPatch struct {
	CodeLength         *int    `json:"length,omitempty"`
	TTLSeconds         *int    `json:"ttl,omitempty"`
	EnableOpen         *bool   `json:"enable_open,omitempty"`
	EnableCash         *bool   `json:"enable_cash,omitempty"`
	EnableField        *bool   `json:"enable_field,omitempty"`
	CountryCallingCode *string `json:"cc,omitempty"`
}

// Merge applies the patch over cfg and lists the fields it changed
func (p OtpConfigPatch) Merge(cfg document.OtpConfig) (document.OtpConfig, []string) {
	var fields []string
	if p.CodeLength != nil {
		cfg.CodeLength = *p.CodeLength
		fields = append(fields, "length")
	}
	if p.TTLSeconds != nil {
		cfg.TTLSeconds = *p.TTLSeconds
		fields = append(fields, "ttl")
	}
	if p.EnableOpen != nil {
		cfg.EnableOpen = *p.EnableOpen
		fields = append(fields, "enable_open")
	}
	if p.EnableCash != nil {
		cfg.EnableCash = *p.EnableCash
		fields = append(fields, "enable_cash")
	}
	if p.EnableField != nil {
		cfg.EnableField = *p.EnableField
		fields = append(fields, "enable_field")
	}
	if p.CountryCallingCode != nil {
		cfg.CountryCallingCode = *p.CountryCallingCode
		fields = append(fields, "cc")
	}
	return cfg, fields
}

// SmsConfigPatch is a partial update of the SMS provider configuration
type SmsConfigPatch struct {
	Provider *string `json:"provider,omitempty"`
	Sender   *string `json:"sender,omitempty"`
	APIKey   *string `json:"apiKey,omitempty"`
	Template *string `json:"template,omitempty"`
}

// Merge applies the patch over cfg and lists the fields it changed
func (p SmsConfigPatch) Merge(cfg document.SmsConfig) (document.SmsConfig, []string) {
	var fields []string
	if p.Provider != nil {
		cfg.Provider = *p.Provider
		fields = append(fields, "provider")
	}
	if p.Sender != nil {
		cfg.Sender = *p.Sender
		fields = append(fields, "sender")
	}
	if p.APIKey != nil {
		cfg.APIKey = *p.APIKey
		fields = append(fields, "apiKey")
	}
	if p.Template != nil {
		cfg.Template = *p.Template
		fields = append(fields, "template")
	}
	return cfg, fields
}
