package core

import (
	"time"
)

// Label is the classification verdict for an email.
type Label string

const (
	LabelSafe     Label = "SAFE"
	LabelPhishing Label = "PHISHING"
)

// Tier is the action tier derived from the trust score.
type Tier string

const (
	TierAccept   Tier = "ACCEPT"
	TierFlag     Tier = "FLAG"
	TierEscalate Tier = "ESCALATE"
)

// Feature vector shape is versioned. Changing FeatureDim invalidates any
// persisted classifier trained against the old shape, so loaders must check
// the declared dimension before accepting a model file.
const (
	FeatureVersion = 1
	FeatureDim     = 15
)

// Indices into a FeatureVector.
const (
	FeatOverallDensity = iota
	FeatUrgency
	FeatThreats
	FeatVerification
	FeatFinancial
	FeatCredentials
	FeatAuthority
	FeatHasURL
	FeatURLRisk
	FeatShortenedRatio
	FeatTyposquat
	FeatVocabRichness
	FeatAbnormalCaps
	FeatSpecialDensity
	FeatDigitDensity
)

// FeatureVector is a fixed-length numeric representation of an email.
// Every dimension is normalized to [0,1].
type FeatureVector [FeatureDim]float64

// Evidence category names used by the lexicon, the explanation synthesizer
// and the semantic override rules.
const (
	CategorySpoofing     = "spoofing"
	CategoryUrgency      = "urgency"
	CategoryThreats      = "threats"
	CategoryVerification = "verification"
	CategoryFinancial    = "financial"
	CategoryCredentials  = "credentials"
	CategoryRewards      = "rewards"
	CategoryAuthority    = "authority"
	CategoryAction       = "action"
	CategorySecrecy      = "secrecy"
	CategoryReply        = "reply"
)

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// AnalysisText returns the text submitted to the pipeline. The raw input is
// never mutated; normalization happens on a derived copy inside the
// feature extractor.
func (e *Email) AnalysisText() string {
	if e.Subject == "" {
		return e.Body
	}
	return e.Subject + "\n" + e.Body
}

// TextSignals carries the lexical and structural cues observed during
// feature extraction. The synthesizer, the verifier and the override rules
// all consume it so the text is only scanned once.
type TextSignals struct {
	Normalized string

	URLs             []string
	HasURL           bool
	URLRisk          float64
	ShortenedRatio   float64
	Typosquat        bool
	TyposquatDomains []string
	TrustedDomains   []string
	IPDomain         bool
	SuspiciousTLD    bool

	CategoryDensity map[string]float64
	CategoryHits    map[string][]string

	CapsRatio    float64
	AbnormalCaps bool
	WordCount    int
}

// HitCount returns the number of lexicon hits for a category.
func (s *TextSignals) HitCount(category string) int {
	if s == nil || s.CategoryHits == nil {
		return 0
	}
	return len(s.CategoryHits[category])
}

// ModelVote is a single classifier's phishing probability.
type ModelVote struct {
	Name         string
	PhishingProb float64
}

// ClassificationResult is the fused output of the classifier ensemble.
type ClassificationResult struct {
	// Label is the predicted class (argmax of the fused probabilities).
	Label Label
	// Confidence is the fused probability of the predicted class, not
	// necessarily the phishing class.
	Confidence float64
	// FusedPhishing is the fused probability of the phishing class.
	FusedPhishing float64
	// EnsembleAgreement is |p_phishing_A - p_phishing_B|; 0 with one model.
	EnsembleAgreement float64
	Votes             []ModelVote
	// Degraded marks results from the non-discriminative stub classifier.
	// A degraded result must never be confusable with a real one.
	Degraded  bool
	ModelUsed string
}

// Explanation is the rule-derived rationale for a classification.
type Explanation struct {
	// Components is the ordered list of human-readable rationale lines.
	Components []string
	// EvidenceTokens are the category/signal names that triggered a
	// component, deduplicated in insertion order.
	EvidenceTokens []string
	// MatchedWords are literal words from the text backing the evidence,
	// used for consistency checking.
	MatchedWords []string
	RenderedText string
	// Degraded is set when the surrogate explainer timed out and the
	// explanation fell back to rules only.
	Degraded bool
}

// HasToken reports whether the explanation claims a given evidence token.
func (e *Explanation) HasToken(token string) bool {
	for _, t := range e.EvidenceTokens {
		if t == token {
			return true
		}
	}
	return false
}

// VerificationResult scores how well an explanation is supported by the
// literal input and by classifier agreement.
type VerificationResult struct {
	Score        float64
	Issues       []string
	IsConsistent bool
}

// Decision maps a verdict and trust score to an action.
type Decision struct {
	Verdict Label
	Tier    Tier
	// Overridden is set when the semantic override forced the verdict.
	Overridden     bool
	OverrideReason string
}

// Metrics is the per-analysis breakdown exposed to callers.
type Metrics struct {
	Confidence  float64       `json:"confidence"`
	Fidelity    float64       `json:"fidelity"`
	Instability float64       `json:"instability"`
	RawFeatures FeatureVector `json:"raw_features"`
}

// AnalysisResult is the stable output shape of a single analysis.
type AnalysisResult struct {
	Prediction      Label     `json:"prediction"`
	TrustScore      float64   `json:"trust_score"`
	NaturalLanguage string    `json:"natural_language"`
	Metrics         Metrics   `json:"metrics"`
	Tier            Tier      `json:"tier"`
	AttackType      string    `json:"attack_type"`
	ProcessingID    string    `json:"processing_id"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
	ModelUsed       string    `json:"model_used"`
	Degraded        bool      `json:"degraded,omitempty"`
}

// Feedback is an optional structured value supplied by the caller. It is
// recorded for offline calibration and never influences the current call.
type Feedback struct {
	ReportedLabel Label  `json:"reported_label,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

// FeedbackEntry is one append-only audit log record.
type FeedbackEntry struct {
	ProcessingID string
	Verdict      Label
	TrustScore   float64
	Feedback     Feedback
	ReceivedAt   time.Time
}

// CacheEntry caches a prior verdict for an exact input text.
type CacheEntry struct {
	TextHash   string
	Verdict    Label
	TrustScore float64
	Tier       Tier
	LastSeen   time.Time
	ExpiresAt  time.Time
}
