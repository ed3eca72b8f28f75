package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/classifier"
	"github.com/trustaware/phish-trust-filter/internal/config"
	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/domains"
	"github.com/trustaware/phish-trust-filter/internal/explain"
	"github.com/trustaware/phish-trust-filter/internal/features"
	"github.com/trustaware/phish-trust-filter/internal/probe"
	"github.com/trustaware/phish-trust-filter/internal/trust"
)

// PipelineFactory creates the analysis pipeline stages from configuration
type PipelineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPipelineFactory creates a new pipeline factory
func NewPipelineFactory(cfg *config.Config, logger *zap.Logger) *PipelineFactory {
	return &PipelineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateDomainList creates the trusted-domain and brand list used by the
// feature extractor. Empty configured lists keep the built-in sets.
func (f *PipelineFactory) CreateDomainList() *domains.List {
	dc := f.cfg.GetDomains()
	return domains.NewList(dc.Trusted, dc.Brands, dc.TypoPatterns, f.logger)
}

// CreateExtractor creates the feature extractor
func (f *PipelineFactory) CreateExtractor(list *domains.List) *features.Extractor {
	return features.NewExtractor(list, f.logger)
}

// CreateClassifier creates the shared classifier ensemble. A model loading
// failure degrades to the stub instead of failing startup so mail flow is
// never blocked on a bad model file.
func (f *PipelineFactory) CreateClassifier() *classifier.Ensemble {
	cc := f.cfg.GetClassifier()
	ens, err := classifier.LoadShared(classifier.EnsembleConfig{
		ModelPaths:    cc.ModelPaths,
		FusionWeights: cc.FusionWeights,
		Threshold:     cc.Threshold,
	}, f.logger)
	if err != nil {
		f.logger.Warn("Running with degraded classifier", zap.Error(err))
	}
	return ens
}

// CreateSynthesizer creates the explanation synthesizer, wired to a
// deletion-based surrogate unless the surrogate is disabled.
func (f *PipelineFactory) CreateSynthesizer(extractor *features.Extractor, ens *classifier.Ensemble) (*explain.Synthesizer, error) {
	var surrogate *explain.Surrogate
	if f.cfg.GetBool("explain.surrogate_enabled") {
		surrogate = explain.NewSurrogate(extractor, ens)
		if samples := f.cfg.GetInt("explain.surrogate_samples"); samples > 0 {
			surrogate.MaxCandidates = samples
		}
	}
	synth := explain.NewSynthesizer(surrogate, f.logger)
	if surrogate != nil {
		timeout, err := f.cfg.GetDuration("explain.surrogate_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid surrogate timeout: %w", err)
		}
		synth = synth.WithSurrogateTimeout(timeout)
	}
	return synth, nil
}

// CreateVerifier creates the explanation verifier
func (f *PipelineFactory) CreateVerifier() *explain.Verifier {
	return explain.NewVerifier(f.logger)
}

// CreateProber creates the instability prober
func (f *PipelineFactory) CreateProber(extractor *features.Extractor, ens *classifier.Ensemble) (*probe.Prober, error) {
	pc := f.cfg.GetProbe()
	strategies, err := probe.StrategiesByName(pc.Strategies)
	if err != nil {
		return nil, err
	}
	return probe.NewProber(extractor, ens, strategies, pc.Seed, pc.MaxParallel, f.logger), nil
}

// CreateTrustEngine creates the trust aggregation engine
func (f *PipelineFactory) CreateTrustEngine() *trust.Engine {
	tc := f.cfg.GetTrust()
	weights := trust.Weights{
		Confidence: tc.Confidence,
		Fidelity:   tc.Fidelity,
		Stability:  tc.Stability,
	}
	if weights.Confidence <= 0 && weights.Fidelity <= 0 && weights.Stability <= 0 {
		weights = trust.DefaultWeights()
	}
	return trust.NewEngine(weights, f.logger)
}

// CreateAnalysisService assembles the full pipeline into the analysis service
func (f *PipelineFactory) CreateAnalysisService(
	extractor *features.Extractor,
	ens *classifier.Ensemble,
	synth *explain.Synthesizer,
	verifier *explain.Verifier,
	prober *probe.Prober,
	engine *trust.Engine,
	cacheRepo core.CacheRepository,
	feedbackRepo core.FeedbackRepository,
	cacheFactory *CacheFactory,
) (*core.AnalysisService, error) {
	cacheTTL, err := cacheFactory.GetCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}
	return core.NewAnalysisService(
		extractor,
		ens,
		synth,
		verifier,
		prober,
		engine,
		cacheRepo,
		feedbackRepo,
		f.logger,
		cacheFactory.IsCacheEnabled(),
		cacheTTL,
	), nil
}
