package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalysisService runs the full trust-scoring pipeline:
// extract -> classify -> explain -> verify -> probe -> aggregate -> decide.
// All per-analysis state is created fresh per call; the service itself is
// safe for concurrent use.
type AnalysisService struct {
	extractor    FeatureExtractor
	classifier   EmailClassifier
	synthesizer  ExplanationSynthesizer
	verifier     ExplanationVerifier
	prober       InstabilityProber
	trust        TrustEngine
	cache        CacheRepository
	feedback     FeedbackRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	extractor FeatureExtractor,
	classifier EmailClassifier,
	synthesizer ExplanationSynthesizer,
	verifier ExplanationVerifier,
	prober InstabilityProber,
	trust TrustEngine,
	cache CacheRepository,
	feedback FeedbackRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *AnalysisService {
	return &AnalysisService{
		extractor:    extractor,
		classifier:   classifier,
		synthesizer:  synthesizer,
		verifier:     verifier,
		prober:       prober,
		trust:        trust,
		cache:        cache,
		feedback:     feedback,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// AnalyzeEmail analyzes a parsed email message.
func (s *AnalysisService) AnalyzeEmail(ctx context.Context, email *Email) (*AnalysisResult, error) {
	return s.Analyze(ctx, email.AnalysisText(), nil)
}

// Analyze classifies the text, verifies the generated explanation, probes
// local stability and fuses everything into a trust score and decision.
// Feedback, if supplied, is recorded for offline calibration and never
// influences the current call.
func (s *AnalysisService) Analyze(ctx context.Context, text string, feedback *Feedback) (*AnalysisResult, error) {
	textHash := HashText(text)

	if s.cacheEnabled && s.cache != nil {
		if entry, err := s.cache.Get(ctx, textHash); err == nil && entry != nil {
			s.logger.Debug("Cache hit for text", zap.String("hash", textHash))
			result := &AnalysisResult{
				Prediction:      entry.Verdict,
				TrustScore:      entry.TrustScore,
				Tier:            entry.Tier,
				NaturalLanguage: "Result from cache",
				ProcessingID:    uuid.NewString(),
				AnalyzedAt:      time.Now().UTC(),
				ModelUsed:       "cache",
			}
			s.recordFeedback(ctx, result, feedback)
			return result, nil
		}
	}

	features, signals := s.extractor.Extract(text)

	cls, err := s.classifier.Classify(features)
	if err != nil {
		// ModelUnavailable fails the call outright. "We could not analyze
		// this" must never look like "we analyzed this and it is safe".
		return nil, err
	}

	expl := s.synthesizer.Explain(ctx, text, features, signals, cls)
	ver := s.verifier.Verify(signals, expl, cls)

	instability, err := s.prober.Probe(ctx, text, cls)
	if err != nil {
		s.logger.Warn("Instability probe failed, using zero drift", zap.Error(err))
		instability = 0
	}

	breakdown, decision := s.trust.Aggregate(cls, expl, ver, instability, signals)
	attackType := s.trust.AttackType(text, signals, decision.Verdict)

	result := &AnalysisResult{
		Prediction:      decision.Verdict,
		TrustScore:      breakdown.TrustScore,
		NaturalLanguage: renderNaturalLanguage(expl, ver, decision),
		Metrics: Metrics{
			Confidence:  breakdown.Confidence,
			Fidelity:    breakdown.Fidelity,
			Instability: breakdown.Instability,
			RawFeatures: features,
		},
		Tier:         decision.Tier,
		AttackType:   attackType,
		ProcessingID: uuid.NewString(),
		AnalyzedAt:   time.Now().UTC(),
		ModelUsed:    cls.ModelUsed,
		Degraded:     cls.Degraded || expl.Degraded,
	}

	if s.cacheEnabled && s.cache != nil && !result.Degraded {
		entry := &CacheEntry{
			TextHash:   textHash,
			Verdict:    result.Prediction,
			TrustScore: result.TrustScore,
			Tier:       result.Tier,
			LastSeen:   time.Now(),
			ExpiresAt:  time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	s.recordFeedback(ctx, result, feedback)

	return result, nil
}

// recordFeedback appends caller feedback to the audit log. Failures are
// logged, not returned; feedback must never affect the analysis outcome.
func (s *AnalysisService) recordFeedback(ctx context.Context, result *AnalysisResult, feedback *Feedback) {
	if feedback == nil || s.feedback == nil {
		return
	}
	entry := &FeedbackEntry{
		ProcessingID: result.ProcessingID,
		Verdict:      result.Prediction,
		TrustScore:   result.TrustScore,
		Feedback:     *feedback,
		ReceivedAt:   time.Now().UTC(),
	}
	if err := s.feedback.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to record feedback", zap.Error(err))
	}
}

// HashText returns the cache key for an input text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func renderNaturalLanguage(expl *Explanation, ver *VerificationResult, decision Decision) string {
	var b strings.Builder
	b.WriteString(expl.RenderedText)
	if !ver.IsConsistent {
		b.WriteString(" (Inconsistent: ")
		b.WriteString(strings.Join(ver.Issues, ", "))
		b.WriteString(")")
	}
	if decision.Overridden {
		b.WriteString(" [OVERRIDE: ")
		b.WriteString(decision.OverrideReason)
		b.WriteString("]")
	}
	if decision.Tier == TierEscalate && decision.Verdict == LabelPhishing {
		b.WriteString(" [LOW TRUST: escalate to secondary classifier]")
	}
	return b.String()
}
