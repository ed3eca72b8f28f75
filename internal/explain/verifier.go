package explain

import (
	"strings"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// Verification thresholds and penalties. The score starts at 1.0 and each
// independent check subtracts a fixed amount; 0.7 is the consistency bar.
const (
	weakEvidencePenalty   = 0.20
	lowEvidencePenalty    = 0.20
	disagreementPenalty   = 0.15
	evidenceFloorFraction = 0.5
	highConfidenceBar     = 0.8
	minComponents         = 2
	disagreementBar       = 0.3
	consistencyBar        = 0.7
)

// Verifier cross-checks an explanation against the literal input text and
// against ensemble agreement. It judges only support, never correctness.
type Verifier struct {
	logger *zap.Logger
}

// NewVerifier creates a verifier.
func NewVerifier(logger *zap.Logger) *Verifier {
	return &Verifier{logger: logger}
}

// Verify scores the explanation. An explanation that claims nothing is not
// penalized for missing evidence; there is nothing to support.
func (v *Verifier) Verify(signals *core.TextSignals, expl *core.Explanation, cls *core.ClassificationResult) *core.VerificationResult {
	result := &core.VerificationResult{Score: 1.0}

	claims := expl.MatchedWords
	if len(claims) == 0 {
		claims = expl.EvidenceTokens
	}
	if len(claims) > 0 {
		found := 0
		for _, c := range claims {
			if strings.Contains(signals.Normalized, strings.ToLower(c)) {
				found++
			}
		}
		if float64(found)/float64(len(claims)) < evidenceFloorFraction {
			result.Score -= weakEvidencePenalty
			result.Issues = append(result.Issues, "claimed evidence weakly present in text")
		}
	}

	if cls.Confidence > highConfidenceBar && len(expl.Components) < minComponents {
		result.Score -= lowEvidencePenalty
		result.Issues = append(result.Issues, "high confidence with little supporting evidence")
	}

	if cls.EnsembleAgreement > disagreementBar {
		result.Score -= disagreementPenalty
		result.Issues = append(result.Issues, "ensemble members disagree")
	}

	if result.Score < 0 {
		result.Score = 0
	}
	result.IsConsistent = result.Score >= consistencyBar
	if !result.IsConsistent {
		v.logger.Debug("explanation failed verification",
			zap.Float64("score", result.Score),
			zap.Strings("issues", result.Issues))
	}
	return result
}
