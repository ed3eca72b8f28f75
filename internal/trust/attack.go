package trust

import (
	"strings"

	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/features"
)

// Attack type labels, most specific first. Typing is diagnostic metadata; it
// never feeds back into the verdict.
const (
	AttackTyposquatting        = "typosquatting"
	AttackHomoglyph            = "homoglyph"
	AttackURLObfuscation       = "url-obfuscation"
	AttackUrgency              = "urgency"
	AttackThreat               = "threat"
	AttackCredentialHarvesting = "credential-harvesting"
	AttackSocialEngineering    = "social-engineering"
	AttackNone                 = "none"
)

// cyrillicLookalikes are the mixed-script characters treated as homoglyph
// evidence when they appear in otherwise Latin text.
const cyrillicLookalikes = "аеорсух"

// AttackType classifies the dominant technique behind a phishing verdict.
// SAFE verdicts always type as none.
func (e *Engine) AttackType(text string, signals *core.TextSignals, verdict core.Label) string {
	if verdict != core.LabelPhishing {
		return AttackNone
	}
	switch {
	case signals.Typosquat:
		return AttackTyposquatting
	case usesInvisibleOrMixedScript(text):
		return AttackHomoglyph
	case signals.IPDomain || signals.SuspiciousTLD || signals.ShortenedRatio > 0 || signals.URLRisk >= 0.5:
		return AttackURLObfuscation
	case signals.HitCount(core.CategoryUrgency) > 0:
		return AttackUrgency
	case signals.HitCount(core.CategoryThreats) > 0:
		return AttackThreat
	case signals.HitCount(core.CategoryCredentials) > 0 || signals.HitCount(core.CategoryVerification) > 0:
		return AttackCredentialHarvesting
	default:
		return AttackSocialEngineering
	}
}

func usesInvisibleOrMixedScript(text string) bool {
	if features.StripZeroWidth(text) != text {
		return true
	}
	return strings.ContainsAny(text, cyrillicLookalikes)
}
