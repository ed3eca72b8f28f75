package trust

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

func engine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(DefaultWeights(), zap.NewNop())
}

func phishingResult(conf float64) *core.ClassificationResult {
	return &core.ClassificationResult{
		Label:         core.LabelPhishing,
		Confidence:    conf,
		FusedPhishing: conf,
	}
}

func safeResult(conf float64) *core.ClassificationResult {
	return &core.ClassificationResult{
		Label:         core.LabelSafe,
		Confidence:    conf,
		FusedPhishing: 1 - conf,
	}
}

func TestTrustScoreStaysInUnitInterval(t *testing.T) {
	e := engine(t)
	expl := &core.Explanation{EvidenceTokens: []string{"typosquat", "urgency", "threats"}}
	for _, conf := range []float64{0, 0.25, 0.5, 0.75, 1} {
		for _, verScore := range []float64{0, 0.5, 1} {
			for _, inst := range []float64{0, 0.5, 1} {
				ver := &core.VerificationResult{Score: verScore}
				breakdown, _ := e.Aggregate(phishingResult(conf), expl, ver, inst, &core.TextSignals{})
				if breakdown.TrustScore < 0 || breakdown.TrustScore > 1 {
					t.Fatalf("trust score %f outside [0,1] for conf=%f ver=%f inst=%f",
						breakdown.TrustScore, conf, verScore, inst)
				}
			}
		}
	}
}

func TestHigherConfidenceRaisesTrust(t *testing.T) {
	e := engine(t)
	expl := &core.Explanation{EvidenceTokens: []string{"urgency"}}
	ver := &core.VerificationResult{Score: 1.0}

	low, _ := e.Aggregate(phishingResult(0.6), expl, ver, 0.1, &core.TextSignals{})
	high, _ := e.Aggregate(phishingResult(0.95), expl, ver, 0.1, &core.TextSignals{})
	if high.TrustScore <= low.TrustScore {
		t.Errorf("trust %f for conf 0.95 not above %f for conf 0.6", high.TrustScore, low.TrustScore)
	}
}

func TestInstabilityLowersTrust(t *testing.T) {
	e := engine(t)
	expl := &core.Explanation{EvidenceTokens: []string{"urgency"}}
	ver := &core.VerificationResult{Score: 1.0}

	stable, _ := e.Aggregate(phishingResult(0.9), expl, ver, 0.0, &core.TextSignals{})
	unstable, _ := e.Aggregate(phishingResult(0.9), expl, ver, 0.6, &core.TextSignals{})
	if unstable.TrustScore >= stable.TrustScore {
		t.Errorf("trust %f under drift not below stable %f", unstable.TrustScore, stable.TrustScore)
	}
	want := stable.TrustScore - DefaultWeights().Stability*0.6
	if math.Abs(unstable.TrustScore-want) > 1e-9 {
		t.Errorf("trust %f, want %f", unstable.TrustScore, want)
	}
}

func TestFidelityPolarityInvertsForSafe(t *testing.T) {
	e := engine(t)
	expl := &core.Explanation{EvidenceTokens: []string{"urgency", "threats"}}
	ver := &core.VerificationResult{Score: 0.8}

	phish, _ := e.Aggregate(phishingResult(0.9), expl, ver, 0, &core.TextSignals{})
	safe, _ := e.Aggregate(safeResult(0.9), expl, ver, 0, &core.TextSignals{})
	if math.Abs((phish.Fidelity+safe.Fidelity)-1.0) > 1e-9 {
		t.Errorf("fidelities %f and %f do not mirror around 0.5", phish.Fidelity, safe.Fidelity)
	}
}

func TestJaccardWithReference(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   float64
	}{
		{name: "no evidence", tokens: nil, want: 0},
		{name: "all canonical", tokens: []string{"typosquat", "url_risk"}, want: 2.0 / 11.0},
		{name: "off-reference token", tokens: []string{"authority"}, want: 0},
		{name: "mixed", tokens: []string{"typosquat", "authority"}, want: 1.0 / 12.0},
		{name: "duplicates collapse", tokens: []string{"urgency", "urgency"}, want: 1.0 / 11.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jaccardWithReference(tt.tokens); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("jaccard(%v) = %f, want %f", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestDecisionTiers(t *testing.T) {
	tests := []struct {
		score float64
		want  core.Tier
	}{
		{0.95, core.TierAccept},
		{0.8, core.TierAccept},
		{0.79, core.TierFlag},
		{0.5, core.TierFlag},
		{0.49, core.TierEscalate},
		{0.0, core.TierEscalate},
	}
	for _, tt := range tests {
		if got := tierFor(tt.score); got != tt.want {
			t.Errorf("tierFor(%f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestSemanticOverrideFlipsSafeVerdict(t *testing.T) {
	e := engine(t)
	signals := &core.TextSignals{
		CategoryHits: map[string][]string{
			core.CategoryUrgency: {"urgent"},
			core.CategoryAction:  {"click"},
		},
	}
	expl := &core.Explanation{}
	ver := &core.VerificationResult{Score: 1.0}

	_, decision := e.Aggregate(safeResult(0.95), expl, ver, 0, signals)
	if decision.Verdict != core.LabelPhishing {
		t.Fatalf("verdict = %s, want %s", decision.Verdict, core.LabelPhishing)
	}
	if !decision.Overridden || decision.OverrideReason == "" {
		t.Error("override must be marked with its reason")
	}
	if decision.Tier == core.TierAccept {
		t.Error("an overridden verdict must not remain in the accept tier")
	}
}

func TestSemanticOverrideRules(t *testing.T) {
	tests := []struct {
		name    string
		signals *core.TextSignals
		flipped bool
	}{
		{
			name: "urgency without action",
			signals: &core.TextSignals{
				CategoryHits: map[string][]string{core.CategoryUrgency: {"urgent"}},
			},
			flipped: false,
		},
		{
			name: "reward with action",
			signals: &core.TextSignals{
				CategoryHits: map[string][]string{
					core.CategoryRewards: {"prize"},
					core.CategoryAction:  {"click"},
				},
			},
			flipped: true,
		},
		{
			name: "secrecy with financial",
			signals: &core.TextSignals{
				CategoryHits: map[string][]string{
					core.CategorySecrecy:   {"confidential"},
					core.CategoryFinancial: {"wire"},
				},
			},
			flipped: true,
		},
		{
			name: "secrecy alone",
			signals: &core.TextSignals{
				CategoryHits: map[string][]string{core.CategorySecrecy: {"confidential"}},
			},
			flipped: false,
		},
		{
			name:    "typosquat link",
			signals: &core.TextSignals{Typosquat: true},
			flipped: true,
		},
	}
	e := engine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, decision := e.Aggregate(safeResult(0.9), &core.Explanation{}, &core.VerificationResult{Score: 1}, 0, tt.signals)
			if (decision.Verdict == core.LabelPhishing) != tt.flipped {
				t.Errorf("verdict = %s, want flipped=%v", decision.Verdict, tt.flipped)
			}
			if decision.Overridden != tt.flipped {
				t.Errorf("Overridden = %v, want %v", decision.Overridden, tt.flipped)
			}
		})
	}
}

func TestOverrideDoesNotMarkExistingPhishingVerdict(t *testing.T) {
	e := engine(t)
	signals := &core.TextSignals{Typosquat: true}
	_, decision := e.Aggregate(phishingResult(0.95), &core.Explanation{EvidenceTokens: []string{"typosquat"}}, &core.VerificationResult{Score: 1}, 0, signals)
	if decision.Verdict != core.LabelPhishing {
		t.Fatalf("verdict = %s", decision.Verdict)
	}
	if decision.Overridden {
		t.Error("a verdict the classifier already reached is not an override")
	}
}

func TestAttackTypePriority(t *testing.T) {
	e := engine(t)
	tests := []struct {
		name    string
		text    string
		signals *core.TextSignals
		verdict core.Label
		want    string
	}{
		{
			name:    "safe is none",
			text:    "hello",
			signals: &core.TextSignals{Typosquat: true},
			verdict: core.LabelSafe,
			want:    AttackNone,
		},
		{
			name:    "typosquat beats homoglyph",
			text:    "pаypal link",
			signals: &core.TextSignals{Typosquat: true},
			verdict: core.LabelPhishing,
			want:    AttackTyposquatting,
		},
		{
			name:    "zero width is homoglyph",
			text:    "ver​ify now",
			signals: &core.TextSignals{},
			verdict: core.LabelPhishing,
			want:    AttackHomoglyph,
		},
		{
			name:    "cyrillic is homoglyph",
			text:    "verify your аccount",
			signals: &core.TextSignals{},
			verdict: core.LabelPhishing,
			want:    AttackHomoglyph,
		},
		{
			name:    "shortener is url obfuscation",
			text:    "click http://bit.ly/x",
			signals: &core.TextSignals{ShortenedRatio: 1},
			verdict: core.LabelPhishing,
			want:    AttackURLObfuscation,
		},
		{
			name: "urgency beats threat",
			text: "act now or else",
			signals: &core.TextSignals{CategoryHits: map[string][]string{
				core.CategoryUrgency: {"act now"},
				core.CategoryThreats: {"suspend"},
			}},
			verdict: core.LabelPhishing,
			want:    AttackUrgency,
		},
		{
			name: "credential harvesting",
			text: "enter your password",
			signals: &core.TextSignals{CategoryHits: map[string][]string{
				core.CategoryCredentials: {"password"},
			}},
			verdict: core.LabelPhishing,
			want:    AttackCredentialHarvesting,
		},
		{
			name:    "fallback is social engineering",
			text:    "trust me",
			signals: &core.TextSignals{},
			verdict: core.LabelPhishing,
			want:    AttackSocialEngineering,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.AttackType(tt.text, tt.signals, tt.verdict); got != tt.want {
				t.Errorf("AttackType = %q, want %q", got, tt.want)
			}
		})
	}
}
