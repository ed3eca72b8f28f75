package core_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/classifier"
	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/domains"
	"github.com/trustaware/phish-trust-filter/internal/explain"
	"github.com/trustaware/phish-trust-filter/internal/features"
	"github.com/trustaware/phish-trust-filter/internal/probe"
	"github.com/trustaware/phish-trust-filter/internal/trust"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*core.CacheEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*core.CacheEntry)}
}

func (c *fakeCache) Get(_ context.Context, hash string) (*core.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[hash], nil
}

func (c *fakeCache) Set(_ context.Context, entry *core.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.TextHash] = entry
	return nil
}

func (c *fakeCache) Delete(_ context.Context, hash string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, hash)
	return nil
}

func (c *fakeCache) Cleanup(context.Context) error { return nil }

type recordingFeedback struct {
	mu      sync.Mutex
	entries []*core.FeedbackEntry
}

func (r *recordingFeedback) Append(_ context.Context, entry *core.FeedbackEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

type serviceOptions struct {
	strategies []core.PerturbationStrategy
	cache      core.CacheRepository
	feedback   core.FeedbackRepository
	degraded   bool
}

func newService(t *testing.T, opts serviceOptions) *core.AnalysisService {
	t.Helper()
	nop := zap.NewNop()
	extractor := features.NewExtractor(domains.NewList(nil, nil, nil, nop), nop)

	var emailCls core.EmailClassifier
	if opts.degraded {
		emailCls = classifier.NewDegradedEnsemble(nop)
	} else {
		e, err := classifier.NewEnsemble(classifier.BuiltinModels(), nil, 0.5, nop)
		if err != nil {
			t.Fatalf("NewEnsemble: %v", err)
		}
		emailCls = e
	}

	return core.NewAnalysisService(
		extractor,
		emailCls,
		explain.NewSynthesizer(nil, nop),
		explain.NewVerifier(nop),
		probe.NewProber(extractor, emailCls, opts.strategies, 1337, 4, nop),
		trust.NewEngine(trust.DefaultWeights(), nop),
		opts.cache,
		opts.feedback,
		nop,
		opts.cache != nil,
		time.Hour,
	)
}

const (
	typosquatEmail = "Your PayPal account has been suspended. Verify now: http://paypa1-secure.com"
	benignEmail    = "Hi Team, the budget review is at 2pm Friday. Thanks, Sarah"
)

func TestAnalyzeTyposquatPhishing(t *testing.T) {
	svc := newService(t, serviceOptions{})
	res, err := svc.Analyze(context.Background(), typosquatEmail, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Prediction != core.LabelPhishing {
		t.Errorf("prediction = %s, want %s", res.Prediction, core.LabelPhishing)
	}
	if res.Tier != core.TierAccept && res.Tier != core.TierFlag {
		t.Errorf("tier = %s, want ACCEPT or FLAG", res.Tier)
	}
	if res.AttackType != trust.AttackTyposquatting {
		t.Errorf("attack type = %q, want %q", res.AttackType, trust.AttackTyposquatting)
	}
	if !strings.Contains(res.NaturalLanguage, "impersonation") {
		t.Errorf("natural language lacks impersonation rationale: %q", res.NaturalLanguage)
	}
	if res.Metrics.Confidence < 0.9 {
		t.Errorf("confidence = %f, want >= 0.9", res.Metrics.Confidence)
	}
	if res.Degraded {
		t.Error("full pipeline result must not be degraded")
	}
}

func TestAnalyzeBenignEmail(t *testing.T) {
	svc := newService(t, serviceOptions{})
	res, err := svc.Analyze(context.Background(), benignEmail, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Prediction != core.LabelSafe {
		t.Errorf("prediction = %s, want %s", res.Prediction, core.LabelSafe)
	}
	if res.Tier != core.TierAccept {
		t.Errorf("tier = %s, want %s (trust %f)", res.Tier, core.TierAccept, res.TrustScore)
	}
	if res.TrustScore < 0.8 {
		t.Errorf("trust score = %f, want >= 0.8", res.TrustScore)
	}
	if res.AttackType != trust.AttackNone {
		t.Errorf("attack type = %q, want %q", res.AttackType, trust.AttackNone)
	}
}

func TestAnalyzeTrustScoreBounds(t *testing.T) {
	svc := newService(t, serviceOptions{})
	texts := []string{
		typosquatEmail,
		benignEmail,
		"",
		"CONGRATULATIONS winner! Claim your prize: click http://bit.ly/win now, urgent!",
		strings.Repeat("verify password urgent ", 100),
	}
	for _, text := range texts {
		res, err := svc.Analyze(context.Background(), text, nil)
		if err != nil {
			t.Fatalf("Analyze(%.30q): %v", text, err)
		}
		if res.TrustScore < 0 || res.TrustScore > 1 {
			t.Errorf("trust score %f outside [0,1] for %.30q", res.TrustScore, text)
		}
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	svc := newService(t, serviceOptions{})
	first, err := svc.Analyze(context.Background(), typosquatEmail, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := svc.Analyze(context.Background(), typosquatEmail, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	ignore := cmpopts.IgnoreFields(core.AnalysisResult{}, "ProcessingID", "AnalyzedAt")
	if diff := cmp.Diff(first, second, ignore); diff != "" {
		t.Errorf("repeated analysis differs (-first +second):\n%s", diff)
	}
}

func TestAnalyzeTyposquatLowersTrustAgainstLegitimateDomain(t *testing.T) {
	svc := newService(t, serviceOptions{})
	legit := "Your receipt is available at https://paypal.com/receipts for review"
	typo := "Your receipt is available at https://paypa1-secure.com/receipts for review"

	legitRes, err := svc.Analyze(context.Background(), legit, nil)
	if err != nil {
		t.Fatalf("Analyze(legit): %v", err)
	}
	typoRes, err := svc.Analyze(context.Background(), typo, nil)
	if err != nil {
		t.Fatalf("Analyze(typo): %v", err)
	}
	if typoRes.TrustScore >= legitRes.TrustScore {
		t.Errorf("typosquat trust %f not below legitimate %f", typoRes.TrustScore, legitRes.TrustScore)
	}
	if typoRes.Prediction != core.LabelPhishing && typoRes.Tier != core.TierEscalate {
		t.Errorf("typosquat verdict %s / tier %s, want PHISHING or ESCALATE", typoRes.Prediction, typoRes.Tier)
	}
}

func TestAnalyzeZeroWidthObfuscationRaisesInstability(t *testing.T) {
	// Restoration-only probing isolates the drift caused by invisible
	// characters: zero on clean text, positive once they are present.
	svc := newService(t, serviceOptions{
		strategies: []core.PerturbationStrategy{probe.HomoglyphRestoration{}},
	})
	clean := "URGENT: Verify your account password immediately or access will be suspended. http://secure-login.example.com/verify"
	obfuscated := probe.ZeroWidthInsertion{Rate: 0.5}.Apply(clean, 7)

	cleanRes, err := svc.Analyze(context.Background(), clean, nil)
	if err != nil {
		t.Fatalf("Analyze(clean): %v", err)
	}
	obfRes, err := svc.Analyze(context.Background(), obfuscated, nil)
	if err != nil {
		t.Fatalf("Analyze(obfuscated): %v", err)
	}
	if cleanRes.Prediction != core.LabelPhishing || obfRes.Prediction != core.LabelPhishing {
		t.Fatalf("predictions %s / %s, want PHISHING for both", cleanRes.Prediction, obfRes.Prediction)
	}
	if obfRes.Metrics.Instability <= cleanRes.Metrics.Instability {
		t.Errorf("obfuscated instability %f not above clean %f",
			obfRes.Metrics.Instability, cleanRes.Metrics.Instability)
	}
}

func TestAnalyzeSemanticOverride(t *testing.T) {
	svc := newService(t, serviceOptions{})
	// Low keyword density keeps the classifier quiet; the urgency plus
	// requested action combination still forces the verdict.
	text := "Quick note before the afternoon sync about the vendor contract renewal and the catering order for the offsite. It expires today so please click the portal tile when you have a moment to keep everything on schedule for the team."
	res, err := svc.Analyze(context.Background(), text, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Prediction != core.LabelPhishing {
		t.Errorf("prediction = %s, want %s", res.Prediction, core.LabelPhishing)
	}
	if !strings.Contains(res.NaturalLanguage, "OVERRIDE") {
		t.Errorf("natural language lacks override marker: %q", res.NaturalLanguage)
	}
	if res.Tier == core.TierAccept {
		t.Errorf("tier = %s, overridden verdict must not be auto-accepted", res.Tier)
	}
}

func TestAnalyzeCacheRoundTrip(t *testing.T) {
	cache := newFakeCache()
	svc := newService(t, serviceOptions{cache: cache})

	first, err := svc.Analyze(context.Background(), typosquatEmail, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := svc.Analyze(context.Background(), typosquatEmail, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if second.ModelUsed != "cache" {
		t.Errorf("second call ModelUsed = %q, want cache", second.ModelUsed)
	}
	if second.Prediction != first.Prediction || second.TrustScore != first.TrustScore || second.Tier != first.Tier {
		t.Error("cached result disagrees with original analysis")
	}
}

func TestAnalyzeFeedbackIsRecordedButInert(t *testing.T) {
	rec := &recordingFeedback{}
	svc := newService(t, serviceOptions{feedback: rec})

	plain, err := svc.Analyze(context.Background(), typosquatEmail, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	withFeedback, err := svc.Analyze(context.Background(), typosquatEmail, &core.Feedback{
		ReportedLabel: core.LabelSafe,
		Comment:       "false positive",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if withFeedback.Prediction != plain.Prediction || withFeedback.TrustScore != plain.TrustScore {
		t.Error("feedback changed the analysis outcome")
	}
	if len(rec.entries) != 1 {
		t.Fatalf("recorded %d feedback entries, want 1", len(rec.entries))
	}
	if rec.entries[0].Feedback.ReportedLabel != core.LabelSafe {
		t.Errorf("recorded label = %s", rec.entries[0].Feedback.ReportedLabel)
	}
	if rec.entries[0].ProcessingID != withFeedback.ProcessingID {
		t.Error("feedback entry not linked to its analysis")
	}
}

func TestAnalyzeDegradedStub(t *testing.T) {
	svc := newService(t, serviceOptions{degraded: true})
	res, err := svc.Analyze(context.Background(), benignEmail, nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.Degraded {
		t.Error("stub-backed analysis must be marked degraded")
	}
	if res.ModelUsed != "stub" {
		t.Errorf("ModelUsed = %q, want stub", res.ModelUsed)
	}
}

func TestAnalyzeEmailJoinsSubjectAndBody(t *testing.T) {
	svc := newService(t, serviceOptions{})
	email := &core.Email{
		From:    "security@paypa1-secure.com",
		To:      []string{"victim@example.com"},
		Subject: "Account suspended",
		Body:    "Verify now: http://paypa1-secure.com",
	}
	res, err := svc.AnalyzeEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("AnalyzeEmail: %v", err)
	}
	if res.Prediction != core.LabelPhishing {
		t.Errorf("prediction = %s, want %s", res.Prediction, core.LabelPhishing)
	}
}
