package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// Signal token names claimed by explanations. Category components reuse the
// category name as their token.
const (
	TokenTyposquat     = "typosquat"
	TokenURLRisk       = "url_risk"
	TokenIPDomain      = "ip_domain"
	TokenSuspiciousTLD = "suspicious_tld"
	TokenShortened     = "shortened"
	TokenFormatting    = "formatting"
)

// densityFloor is the category density below which no component is emitted.
const densityFloor = 0.05

// Synthesizer builds the human-readable rationale from extraction signals,
// optionally refined by a deletion-based surrogate pass over the classifier.
type Synthesizer struct {
	surrogate        *Surrogate
	surrogateTimeout time.Duration
	logger           *zap.Logger
}

// NewSynthesizer creates a rule-based synthesizer. The surrogate may be nil,
// in which case explanations are rules-only and never degrade.
func NewSynthesizer(surrogate *Surrogate, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{surrogate: surrogate, logger: logger}
}

// WithSurrogateTimeout caps the surrogate pass. Zero means no cap beyond the
// caller's context.
func (s *Synthesizer) WithSurrogateTimeout(d time.Duration) *Synthesizer {
	s.surrogateTimeout = d
	return s
}

// Explain never fails: when the surrogate pass exceeds its context budget the
// explanation falls back to the rule components and is marked degraded.
func (s *Synthesizer) Explain(ctx context.Context, text string, features core.FeatureVector, signals *core.TextSignals, cls *core.ClassificationResult) *core.Explanation {
	expl := &core.Explanation{}

	if signals.Typosquat {
		s.addComponent(expl,
			fmt.Sprintf("Domain impersonation detected: %s", strings.Join(signals.TyposquatDomains, ", ")),
			TokenTyposquat, signals.TyposquatDomains)
	}
	if signals.IPDomain {
		s.addComponent(expl, "Link points at a raw IP address instead of a named host", TokenIPDomain, nil)
	}
	if signals.SuspiciousTLD {
		s.addComponent(expl, "Link uses a top-level domain common in abuse", TokenSuspiciousTLD, nil)
	}
	if signals.URLRisk >= 0.5 {
		s.addComponent(expl,
			fmt.Sprintf("Suspicious link structure (risk %.2f)", signals.URLRisk),
			TokenURLRisk, nil)
	}
	if signals.ShortenedRatio > 0 {
		s.addComponent(expl, "Shortened links conceal the real destination", TokenShortened, nil)
	}
	if signals.HasURL && !signals.Typosquat && signals.URLRisk == 0 &&
		signals.ShortenedRatio == 0 && len(signals.TrustedDomains) > 0 {
		s.addComponent(expl,
			fmt.Sprintf("Linked domains are on the trusted list: %s", strings.Join(signals.TrustedDomains, ", ")),
			"", nil)
	}
	for _, cat := range orderedCategories {
		if signals.CategoryDensity[cat] >= densityFloor {
			hits := signals.CategoryHits[cat]
			s.addComponent(expl,
				fmt.Sprintf("Elevated %s language: %s", cat, strings.Join(hits, ", ")),
				cat, hits)
		}
	}
	if signals.AbnormalCaps {
		s.addComponent(expl, "Abnormal capitalization pattern", TokenFormatting, nil)
	}

	if s.surrogate != nil && len(signals.Normalized) > 0 {
		surrogateCtx := ctx
		if s.surrogateTimeout > 0 {
			var cancel context.CancelFunc
			surrogateCtx, cancel = context.WithTimeout(ctx, s.surrogateTimeout)
			defer cancel()
		}
		influential, err := s.surrogate.InfluentialWords(surrogateCtx, text, cls)
		switch {
		case err != nil:
			expl.Degraded = true
			s.logger.Warn("surrogate explanation skipped", zap.Error(err))
		case len(influential) > 0:
			s.addComponent(expl,
				fmt.Sprintf("Most influential terms: %s", strings.Join(influential, ", ")),
				"", influential)
		}
	}

	if len(expl.Components) == 0 {
		if cls.Label == core.LabelSafe {
			expl.Components = append(expl.Components, "No significant phishing indicators found")
		} else {
			expl.Components = append(expl.Components, "Classifier flagged the message without strong lexical evidence")
		}
	}
	expl.RenderedText = strings.Join(expl.Components, "; ")
	return expl
}

func (s *Synthesizer) addComponent(expl *core.Explanation, component, token string, words []string) {
	expl.Components = append(expl.Components, component)
	if token != "" && !expl.HasToken(token) {
		expl.EvidenceTokens = append(expl.EvidenceTokens, token)
	}
	for _, w := range words {
		expl.MatchedWords = append(expl.MatchedWords, strings.ToLower(w))
	}
}

// orderedCategories fixes component ordering so explanations are stable
// across runs.
var orderedCategories = []string{
	core.CategorySpoofing,
	core.CategoryUrgency,
	core.CategoryThreats,
	core.CategoryVerification,
	core.CategoryFinancial,
	core.CategoryCredentials,
	core.CategoryRewards,
	core.CategoryAuthority,
}
