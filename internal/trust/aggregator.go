package trust

import (
	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// Weights is the fixed trust aggregation policy. Confidence and fidelity
// reward agreement between the classifier and its evidence; stability weights
// the complement of instability so perturbation drift always costs trust.
type Weights struct {
	Confidence float64
	Fidelity   float64
	Stability  float64
}

// DefaultWeights is the deployed policy.
func DefaultWeights() Weights {
	return Weights{Confidence: 0.35, Fidelity: 0.40, Stability: 0.25}
}

// Tier thresholds on the final trust score.
const (
	acceptThreshold = 0.8
	flagThreshold   = 0.5
)

// Fidelity blend: evidence overlap with the canonical indicator set versus
// the verifier's consistency score.
const (
	jaccardWeight      = 0.6
	verificationWeight = 0.4
)

// referenceIndicators is the canonical phishing indicator set the fidelity
// Jaccard is computed against. Token names match the synthesizer's.
var referenceIndicators = map[string]bool{
	"typosquat":      true,
	"url_risk":       true,
	"suspicious_tld": true,
	"ip_domain":      true,
	"shortened":      true,
	"spoofing":       true,
	"urgency":        true,
	"threats":        true,
	"verification":   true,
	"credentials":    true,
	"financial":      true,
}

// Engine aggregates the pipeline stages into a trust score and a decision.
type Engine struct {
	weights   Weights
	overrides []OverrideRule
	logger    *zap.Logger
}

// NewEngine creates a trust engine with the given weights and the default
// semantic override rules.
func NewEngine(weights Weights, logger *zap.Logger) *Engine {
	if weights.Confidence <= 0 && weights.Fidelity <= 0 && weights.Stability <= 0 {
		weights = DefaultWeights()
	}
	return &Engine{weights: weights, overrides: DefaultOverrideRules(), logger: logger}
}

// Aggregate computes the trust breakdown and the decision. The semantic
// override runs after aggregation so an override can flip the verdict but
// never silently inflate trust in it.
func (e *Engine) Aggregate(cls *core.ClassificationResult, expl *core.Explanation, ver *core.VerificationResult, instability float64, signals *core.TextSignals) (core.TrustBreakdown, core.Decision) {
	confidence := cls.Confidence

	fidelity := jaccardWeight*jaccardWithReference(expl.EvidenceTokens) + verificationWeight*ver.Score
	if cls.Label == core.LabelSafe {
		fidelity = 1 - fidelity
	}

	score := e.weights.Confidence*confidence +
		e.weights.Fidelity*fidelity +
		e.weights.Stability*(1-instability)
	score = clamp01(score)

	breakdown := core.TrustBreakdown{
		Confidence:  confidence,
		Fidelity:    fidelity,
		Instability: instability,
		TrustScore:  score,
	}

	decision := core.Decision{Verdict: cls.Label, Tier: tierFor(score)}

	for _, rule := range e.overrides {
		if !rule.Matches(signals) {
			continue
		}
		if decision.Verdict == core.LabelPhishing {
			break
		}
		decision.Verdict = core.LabelPhishing
		decision.Overridden = true
		decision.OverrideReason = rule.Reason
		if decision.Tier == core.TierAccept {
			decision.Tier = core.TierFlag
		}
		e.logger.Warn("semantic override forced phishing verdict",
			zap.String("rule", rule.Name),
			zap.String("reason", rule.Reason),
			zap.Float64("trust_score", score))
		break
	}
	return breakdown, decision
}

func jaccardWithReference(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(tokens))
	intersection := 0
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if referenceIndicators[tok] {
			intersection++
		}
	}
	union := len(referenceIndicators) + len(seen) - intersection
	return float64(intersection) / float64(union)
}

func tierFor(score float64) core.Tier {
	switch {
	case score >= acceptThreshold:
		return core.TierAccept
	case score >= flagThreshold:
		return core.TierFlag
	default:
		return core.TierEscalate
	}
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
