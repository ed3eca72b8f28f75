package features

import (
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/domains"
)

const specialChars = "!@#$%^&*()_+={}[]|\\:;\"<>?,./~`"

// Extractor derives the fixed-length feature vector and the lexical signals
// from raw text. It never errors: empty or pathological input yields a
// neutral vector with vocabulary richness defaulted to 0.5.
type Extractor struct {
	domains *domains.List
	logger  *zap.Logger
}

// NewExtractor creates a new feature extractor
func NewExtractor(list *domains.List, logger *zap.Logger) *Extractor {
	return &Extractor{domains: list, logger: logger}
}

// Extract computes the feature vector for a text. Normalization is applied
// to a derived copy used for lexical matching only; URL and character
// statistics run on the raw input.
func (e *Extractor) Extract(text string) (core.FeatureVector, *core.TextSignals) {
	normalized := Normalize(text)
	words := strings.Fields(normalized)

	signals := &core.TextSignals{
		Normalized:      normalized,
		CategoryDensity: make(map[string]float64, len(evidenceLexicon)),
		CategoryHits:    make(map[string][]string, len(evidenceLexicon)),
		WordCount:       len(words),
	}

	var v core.FeatureVector
	if len(words) == 0 {
		// Degenerate input: neutral defaults, never an error.
		v[core.FeatVocabRichness] = 0.5
		return v, signals
	}

	urls := ExtractURLs(text)
	ua := analyzeURLs(urls, e.domains)
	signals.URLs = urls
	signals.HasURL = ua.hasURL
	signals.URLRisk = ua.urlRisk
	signals.ShortenedRatio = ua.shortenedRatio
	signals.Typosquat = ua.typosquat
	signals.TyposquatDomains = ua.typosquatDomains
	signals.IPDomain = ua.ipDomain
	signals.SuspiciousTLD = ua.suspiciousTLD
	for _, d := range extractDomains(text) {
		if e.domains.IsTrusted(d) {
			signals.TrustedDomains = append(signals.TrustedDomains, d)
		}
	}

	totalWords := float64(len(words))
	for category, keywords := range evidenceLexicon {
		var hits []string
		for _, kw := range keywords {
			if strings.Contains(normalized, kw) {
				hits = append(hits, kw)
			}
		}
		signals.CategoryHits[category] = hits
		signals.CategoryDensity[category] = clamp01(float64(len(hits)) / totalWords)
	}

	var composite float64
	for category, weight := range compositeWeights {
		composite += signals.CategoryDensity[category] * weight
	}
	composite = clamp01(composite / compositeDivisor)

	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[w] = struct{}{}
	}
	richness := float64(len(unique)) / totalWords

	var upper, special, digits int
	runeCount := 0
	for _, r := range text {
		runeCount++
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
			digits++
		}
		if strings.ContainsRune(specialChars, r) {
			special++
		}
	}
	capsRatio := float64(upper) / float64(runeCount)
	signals.CapsRatio = capsRatio
	signals.AbnormalCaps = capsRatio > 0.5 || capsRatio < 0.01

	v[core.FeatOverallDensity] = composite
	v[core.FeatUrgency] = signals.CategoryDensity[core.CategoryUrgency]
	v[core.FeatThreats] = signals.CategoryDensity[core.CategoryThreats]
	v[core.FeatVerification] = signals.CategoryDensity[core.CategoryVerification]
	v[core.FeatFinancial] = signals.CategoryDensity[core.CategoryFinancial]
	v[core.FeatCredentials] = signals.CategoryDensity[core.CategoryCredentials]
	v[core.FeatAuthority] = signals.CategoryDensity[core.CategoryAuthority]
	if ua.hasURL {
		v[core.FeatHasURL] = 1.0
	}
	v[core.FeatURLRisk] = ua.urlRisk
	v[core.FeatShortenedRatio] = ua.shortenedRatio
	if ua.typosquat {
		v[core.FeatTyposquat] = 1.0
	}
	v[core.FeatVocabRichness] = clamp01(richness)
	if signals.AbnormalCaps {
		v[core.FeatAbnormalCaps] = 1.0
	}
	v[core.FeatSpecialDensity] = clamp01(float64(special) / float64(runeCount))
	v[core.FeatDigitDensity] = clamp01(float64(digits) / float64(runeCount))

	return v, signals
}
