package domains

import (
	"strings"

	"go.uber.org/zap"
)

// List holds the trusted-domain allowlist, the brand names attackers
// impersonate and the registered typosquatting patterns. All lookups are
// read-only after construction.
type List struct {
	trusted      map[string]struct{}
	brands       []string
	typoPatterns []string
	logger       *zap.Logger
}

// DefaultTrusted is the built-in trusted-domain allowlist.
func DefaultTrusted() []string {
	return []string{
		"google.com", "microsoft.com", "apple.com", "amazon.com",
		"github.com", "linkedin.com", "paypal.com", "ebay.com",
		"facebook.com", "netflix.com", "spotify.com", "ups.com",
		"fedex.com", "usps.com", "walmart.com",
	}
}

// DefaultBrands is the built-in list of brand names commonly targeted by
// domain impersonation.
func DefaultBrands() []string {
	return []string{
		"paypal", "amazon", "netflix", "microsoft", "apple", "google",
		"facebook", "chase",
	}
}

// DefaultTypoPatterns is the built-in list of registered typosquatting
// substrings.
func DefaultTypoPatterns() []string {
	return []string{
		"paypa1", "micr0soft", "g00gle", "amaz0n", "app1e", "netf1ix",
		"faceb00k", "twiter", "gogle", "amazom",
	}
}

// NewList creates a new domain list. Empty slices fall back to the built-in
// defaults.
func NewList(trusted, brands, typoPatterns []string, logger *zap.Logger) *List {
	if len(trusted) == 0 {
		trusted = DefaultTrusted()
	}
	if len(brands) == 0 {
		brands = DefaultBrands()
	}
	if len(typoPatterns) == 0 {
		typoPatterns = DefaultTypoPatterns()
	}

	trustedSet := make(map[string]struct{}, len(trusted))
	for _, d := range trusted {
		trustedSet[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	normBrands := make([]string, len(brands))
	for i, b := range brands {
		normBrands[i] = strings.ToLower(strings.TrimSpace(b))
	}
	normTypos := make([]string, len(typoPatterns))
	for i, t := range typoPatterns {
		normTypos[i] = strings.ToLower(strings.TrimSpace(t))
	}

	if logger != nil {
		logger.Info("Initialized domain lists",
			zap.Int("trusted", len(trustedSet)),
			zap.Int("brands", len(normBrands)),
			zap.Int("typo_patterns", len(normTypos)))
	}

	return &List{
		trusted:      trustedSet,
		brands:       normBrands,
		typoPatterns: normTypos,
		logger:       logger,
	}
}

// IsTrusted checks if a domain is on the allowlist, including subdomains of
// allowlisted domains (mail.paypal.com matches paypal.com).
func (l *List) IsTrusted(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	if _, ok := l.trusted[domain]; ok {
		return true
	}
	for t := range l.trusted {
		if strings.HasSuffix(domain, "."+t) {
			return true
		}
	}
	return false
}

// IsTyposquat reports whether a domain impersonates a known brand: either a
// registered typosquatting pattern occurs in it, or it contains a brand
// name while not being on the trusted allowlist.
func (l *List) IsTyposquat(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false
	}
	for _, t := range l.typoPatterns {
		if strings.Contains(domain, t) {
			return true
		}
	}
	if l.IsTrusted(domain) {
		return false
	}
	for _, b := range l.brands {
		if strings.Contains(domain, b) {
			return true
		}
	}
	return false
}
