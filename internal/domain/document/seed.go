package document

import "time"

const (
	SchemaVersion = "1.0.0"

	DefaultCountryCallingCode = "+242"
	DefaultCodeLength         = 6
	MaxCodeLength             = 12
	DefaultTTLSeconds         = 180
	DefaultSmsTemplate        = "[COFIN] Code: {{code}} pour {{purpose}}"
)

// Seed returns the document created on first run
func Seed(now time.Time) *Document {
	doc := &Document{
		Meta: Meta{Version: SchemaVersion, LastUpdate: now.UTC()},
		Users: []User{
			{ID: "u1", Username: "superadmin", Role: "Super Admin"},
			{ID: "u2", Username: "chefA", Role: "ChefAgence"},
			{ID: "u3", Username: "caisse1", Role: "Caissier"},
			{ID: "u4", Username: "terrain1", Role: "AgentTerrain"},
		},
		Settings: Settings{
			SMS: SmsConfig{
				Provider: "Twilio",
				Sender:   "COFIN",
				Template: DefaultSmsTemplate,
			},
			OTP: OtpConfig{
				CodeLength:         DefaultCodeLength,
				TTLSeconds:         DefaultTTLSeconds,
				EnableOpen:         true,
				EnableCash:         true,
				EnableField:        true,
				CountryCallingCode: DefaultCountryCallingCode,
			},
		},
	}
	doc.normalize()
	return doc
}
