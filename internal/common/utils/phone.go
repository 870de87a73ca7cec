package utils

import "strings"

// NormalizePhone turns a local number into an international one using countryCode.
// Input already carrying the country code or any '+' prefix is returned unchanged;
// otherwise a single leading '0' is dropped and the country code prepended.
// This is a best-effort heuristic, not E.164 validation.
func NormalizePhone(countryCode, raw string) string {
	p := strings.TrimSpace(raw)
	if countryCode != "" && strings.HasPrefix(p, countryCode) {
		return p
	}
	if strings.HasPrefix(p, "+") {
		return p
	}
	p = strings.TrimPrefix(p, "0")
	return countryCode + p
}
