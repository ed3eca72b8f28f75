package features

import (
	"regexp"
	"strings"

	"github.com/trustaware/phish-trust-filter/internal/domains"
)

var (
	// Permissive by design: phishing URLs are frequently malformed.
	urlPattern    = regexp.MustCompile(`https?://[^\s<>"]+|www\.[a-zA-Z0-9-]+\.[a-zA-Z]{2,}[^\s<>"]*`)
	domainPattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?([a-zA-Z0-9-]+(?:\.[a-zA-Z0-9-]+)*\.[a-zA-Z]{2,})`)
	ipHostPattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
)

var shortenerDomains = []string{"bit.ly", "tinyurl", "goo.gl", "ow.ly", "is.gd"}

var suspiciousTLDs = []string{
	".gq", ".tk", ".cf", ".ml", ".ga", ".top", ".xyz", ".work", ".club", ".online",
}

// ExtractURLs finds all URLs in a text, including bare www. hosts.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// extractDomains returns all domain-shaped tokens in a text, lower-cased.
// Used for trusted-domain awareness beyond explicit URLs.
func extractDomains(text string) []string {
	matches := domainPattern.FindAllStringSubmatch(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		d := m[1]
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// hostOf strips scheme, path, query and port from a URL.
func hostOf(rawURL string) string {
	u := strings.ToLower(rawURL)
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	if i := strings.IndexAny(u, "/?#"); i >= 0 {
		u = u[:i]
	}
	if i := strings.IndexByte(u, ':'); i >= 0 {
		u = u[:i]
	}
	return u
}

// urlAnalysis aggregates per-URL risk signals.
type urlAnalysis struct {
	hasURL           bool
	urlRisk          float64
	shortenedRatio   float64
	typosquat        bool
	typosquatDomains []string
	ipDomain         bool
	suspiciousTLD    bool
}

// analyzeURLs flags shortener domains, suspicious TLDs, IP-literal hosts and
// typosquatting, and aggregates them into url_risk and shortened_ratio.
func analyzeURLs(urls []string, list *domains.List) urlAnalysis {
	if len(urls) == 0 {
		return urlAnalysis{}
	}

	var suspicious, shortened int
	a := urlAnalysis{hasURL: true}

	for _, u := range urls {
		lower := strings.ToLower(u)
		for _, s := range shortenerDomains {
			if strings.Contains(lower, s) {
				shortened++
				suspicious++
				break
			}
		}

		host := hostOf(u)
		if host == "" {
			suspicious++
			continue
		}

		for _, tld := range suspiciousTLDs {
			if strings.HasSuffix(host, tld) {
				suspicious++
				a.suspiciousTLD = true
				break
			}
		}

		if list.IsTyposquat(host) {
			suspicious++
			a.typosquat = true
			a.typosquatDomains = append(a.typosquatDomains, host)
		}

		if ipHostPattern.MatchString(host) {
			suspicious++
			a.ipDomain = true
		}
	}

	n := float64(len(urls))
	a.urlRisk = clamp01(float64(suspicious) / n)
	a.shortenedRatio = float64(shortened) / n
	return a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
