package core

import (
	"context"
)

// FeatureExtractor turns raw text into the fixed-length feature vector plus
// the lexical signals observed along the way. It never fails; degenerate
// input yields labeled neutral defaults.
type FeatureExtractor interface {
	Extract(text string) (FeatureVector, *TextSignals)
}

// Classifier is the capability every loadable model must expose. The core
// never branches on model identity.
type Classifier interface {
	Name() string

	// Predict returns the predicted class label.
	Predict(v FeatureVector) (Label, error)

	// PredictProba returns [p_safe, p_phishing].
	PredictProba(v FeatureVector) ([2]float64, error)
}

// EmailClassifier fuses one or more Classifiers into a single result.
type EmailClassifier interface {
	Classify(v FeatureVector) (*ClassificationResult, error)
}

// ExplanationSynthesizer produces the human-readable rationale for a
// classification. The context bounds the optional surrogate step; on
// timeout the synthesizer degrades rather than fails.
type ExplanationSynthesizer interface {
	Explain(ctx context.Context, text string, features FeatureVector, signals *TextSignals, cls *ClassificationResult) *Explanation
}

// ExplanationVerifier checks a rationale against the literal input and
// against classifier agreement.
type ExplanationVerifier interface {
	Verify(signals *TextSignals, expl *Explanation, cls *ClassificationResult) *VerificationResult
}

// InstabilityProber measures prediction drift under small adversarial
// perturbations of the input.
type InstabilityProber interface {
	Probe(ctx context.Context, text string, cls *ClassificationResult) (float64, error)
}

// TrustBreakdown is the aggregation result: the trust score together with
// the exact C/F/I terms that produced it.
type TrustBreakdown struct {
	Confidence  float64
	Fidelity    float64
	Instability float64
	TrustScore  float64
}

// TrustEngine aggregates confidence, fidelity and instability into a trust
// score, applies the decision tiers and the semantic override, and types
// the attack it believes it is seeing.
type TrustEngine interface {
	Aggregate(cls *ClassificationResult, expl *Explanation, ver *VerificationResult, instability float64, signals *TextSignals) (TrustBreakdown, Decision)
	AttackType(text string, signals *TextSignals, verdict Label) string
}

// PerturbationStrategy is a pure, seedable text transform. Strategies are
// interchangeable; the prober treats them as opaque.
type PerturbationStrategy interface {
	Name() string
	Apply(text string, seed int64) string
}

// EmailFilter is a delivery surface: something that accepts email, runs the
// analysis pipeline and acts on the decision.
type EmailFilter interface {
	// ProcessEmail analyzes one email and returns the result
	ProcessEmail(ctx context.Context, email *Email) (*AnalysisResult, error)

	// Start starts the filter service
	Start() error

	// Stop stops the filter service
	Stop() error
}

// CacheRepository caches analysis results keyed by content hash.
type CacheRepository interface {
	// Get retrieves a cached entry for a text hash
	Get(ctx context.Context, textHash string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, textHash string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// FeedbackRepository is an append-only audit log for caller feedback. It is
// consumed by offline calibration tooling, never by the live pipeline.
type FeedbackRepository interface {
	Append(ctx context.Context, entry *FeedbackEntry) error
}
