package explain

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/classifier"
	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/domains"
	"github.com/trustaware/phish-trust-filter/internal/features"
)

func newExtractor(t *testing.T) *features.Extractor {
	t.Helper()
	list := domains.NewList(nil, nil, nil, zap.NewNop())
	return features.NewExtractor(list, zap.NewNop())
}

func newClassifier(t *testing.T) core.EmailClassifier {
	t.Helper()
	e, err := classifier.NewEnsemble(classifier.BuiltinModels(), nil, 0.5, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEnsemble: %v", err)
	}
	return e
}

func analyze(t *testing.T, text string) (core.FeatureVector, *core.TextSignals, *core.ClassificationResult) {
	t.Helper()
	v, signals := newExtractor(t).Extract(text)
	cls, err := newClassifier(t).Classify(v)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	return v, signals, cls
}

func TestExplainTyposquatComponent(t *testing.T) {
	text := "Your PayPal account has been suspended. Verify now: http://paypa1-secure.com"
	v, signals, cls := analyze(t, text)

	s := NewSynthesizer(nil, zap.NewNop())
	expl := s.Explain(context.Background(), text, v, signals, cls)

	if !expl.HasToken(TokenTyposquat) {
		t.Errorf("tokens = %v, want %s claimed", expl.EvidenceTokens, TokenTyposquat)
	}
	found := false
	for _, c := range expl.Components {
		if strings.Contains(c, "impersonation") {
			found = true
		}
	}
	if !found {
		t.Errorf("components = %v, want a domain impersonation entry", expl.Components)
	}
	if expl.Degraded {
		t.Error("rules-only explanation must never be degraded")
	}
}

func TestExplainBenignFallbackComponent(t *testing.T) {
	text := "Hi Team, the budget summary is attached for Friday. Thanks, Sarah"
	v, signals, cls := analyze(t, text)

	s := NewSynthesizer(nil, zap.NewNop())
	expl := s.Explain(context.Background(), text, v, signals, cls)

	if len(expl.Components) != 1 {
		t.Fatalf("components = %v, want single fallback entry", expl.Components)
	}
	if !strings.Contains(expl.Components[0], "No significant") {
		t.Errorf("fallback component = %q", expl.Components[0])
	}
	if len(expl.EvidenceTokens) != 0 {
		t.Errorf("benign explanation claims tokens %v", expl.EvidenceTokens)
	}
}

func TestSurrogateFindsInfluentialWords(t *testing.T) {
	text := "URGENT action required: verify your password immediately or your account will be suspended"
	v, _, _ := analyze(t, text)
	cls, err := newClassifier(t).Classify(v)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	sur := NewSurrogate(newExtractor(t), newClassifier(t))
	words, err := sur.InfluentialWords(context.Background(), text, cls)
	if err != nil {
		t.Fatalf("InfluentialWords: %v", err)
	}
	if len(words) == 0 {
		t.Fatal("expected at least one influential word for a keyword-dense text")
	}
	for _, w := range words {
		if !strings.Contains(strings.ToLower(text), w) {
			t.Errorf("influential word %q does not occur in the text", w)
		}
	}
}

func TestSurrogateTimeoutDegrades(t *testing.T) {
	text := "URGENT action required: verify your password immediately or your account will be suspended"
	v, signals, cls := analyze(t, text)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	s := NewSynthesizer(NewSurrogate(newExtractor(t), newClassifier(t)), zap.NewNop())
	expl := s.Explain(ctx, text, v, signals, cls)

	if !expl.Degraded {
		t.Error("expired context must degrade the explanation")
	}
	if len(expl.Components) == 0 {
		t.Error("degraded explanation must keep its rule components")
	}
}

func TestVerifyPenalties(t *testing.T) {
	nop := zap.NewNop()
	signals := &core.TextSignals{Normalized: "verify your account password now"}

	tests := []struct {
		name           string
		expl           *core.Explanation
		cls            *core.ClassificationResult
		wantScore      float64
		wantConsistent bool
	}{
		{
			name: "fully supported",
			expl: &core.Explanation{
				Components:   []string{"a", "b"},
				MatchedWords: []string{"verify", "password"},
			},
			cls:            &core.ClassificationResult{Confidence: 0.95, EnsembleAgreement: 0.05},
			wantScore:      1.0,
			wantConsistent: true,
		},
		{
			name: "claims absent from text",
			expl: &core.Explanation{
				Components:   []string{"a", "b"},
				MatchedWords: []string{"lottery", "bitcoin"},
			},
			cls:            &core.ClassificationResult{Confidence: 0.6},
			wantScore:      0.8,
			wantConsistent: true,
		},
		{
			name: "high confidence, single component",
			expl: &core.Explanation{
				Components:   []string{"a"},
				MatchedWords: []string{"verify"},
			},
			cls:            &core.ClassificationResult{Confidence: 0.95},
			wantScore:      0.8,
			wantConsistent: true,
		},
		{
			name: "ensemble disagreement",
			expl: &core.Explanation{
				Components:   []string{"a", "b"},
				MatchedWords: []string{"verify"},
			},
			cls:            &core.ClassificationResult{Confidence: 0.6, EnsembleAgreement: 0.4},
			wantScore:      0.85,
			wantConsistent: true,
		},
		{
			name: "everything wrong at once",
			expl: &core.Explanation{
				Components:   []string{"a"},
				MatchedWords: []string{"lottery", "bitcoin"},
			},
			cls:            &core.ClassificationResult{Confidence: 0.95, EnsembleAgreement: 0.5},
			wantScore:      0.45,
			wantConsistent: false,
		},
		{
			name:           "nothing claimed is not weak evidence",
			expl:           &core.Explanation{Components: []string{"No significant phishing indicators found", "x"}},
			cls:            &core.ClassificationResult{Confidence: 0.95},
			wantScore:      1.0,
			wantConsistent: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewVerifier(nop).Verify(signals, tt.expl, tt.cls)
			if diff := got.Score - tt.wantScore; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("score = %f, want %f (issues %v)", got.Score, tt.wantScore, got.Issues)
			}
			if got.IsConsistent != tt.wantConsistent {
				t.Errorf("IsConsistent = %v, want %v", got.IsConsistent, tt.wantConsistent)
			}
		})
	}
}

func TestExplainTrustedDomainNote(t *testing.T) {
	text := "Your receipt is available at https://paypal.com/receipts"
	v, signals, cls := analyze(t, text)

	s := NewSynthesizer(nil, zap.NewNop())
	expl := s.Explain(context.Background(), text, v, signals, cls)

	found := false
	for _, c := range expl.Components {
		if strings.Contains(c, "trusted list") {
			found = true
		}
	}
	if !found {
		t.Errorf("no trusted-domain component in %v", expl.Components)
	}
}
