package enrich

import "strings"

// freeEmailProviders are consumer mail domains that say nothing about the
// lead's business.
var freeEmailProviders = map[string]bool{
	"gmail.com":      true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"aol.com":        true,
	"icloud.com":     true,
	"mail.com":       true,
	"protonmail.com": true,
	"zoho.com":       true,
	"yandex.com":     true,
	"live.com":       true,
	"msn.com":        true,
	"me.com":         true,
	"mac.com":        true,
}

// DomainFromEmail returns the lowercased business domain of email. It
// returns false for malformed addresses and free mail providers.
func DomainFromEmail(email string) (string, bool) {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return "", false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if domain == "" || !strings.Contains(domain, ".") || freeEmailProviders[domain] {
		return "", false
	}
	return domain, true
}

// IsFreeProvider reports whether domain is a consumer mail provider.
func IsFreeProvider(domain string) bool {
	return freeEmailProviders[strings.ToLower(domain)]
}
