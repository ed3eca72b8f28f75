package di

import (
	"go.uber.org/dig"

	"github.com/trustaware/phish-trust-filter/internal/classifier"
	"github.com/trustaware/phish-trust-filter/internal/config"
	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/domains"
	"github.com/trustaware/phish-trust-filter/internal/explain"
	"github.com/trustaware/phish-trust-filter/internal/factory"
	"github.com/trustaware/phish-trust-filter/internal/features"
	"github.com/trustaware/phish-trust-filter/internal/logging"
	"github.com/trustaware/phish-trust-filter/internal/probe"
	"github.com/trustaware/phish-trust-filter/internal/trust"
	"github.com/trustaware/phish-trust-filter/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewPipelineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFeedbackFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register pipeline stages
	if err := container.Provide(func(f *factory.PipelineFactory) *domains.List {
		return f.CreateDomainList()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory, list *domains.List) *features.Extractor {
		return f.CreateExtractor(list)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) *classifier.Ensemble {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory, extractor *features.Extractor, ens *classifier.Ensemble) (*explain.Synthesizer, error) {
		return f.CreateSynthesizer(extractor, ens)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) *explain.Verifier {
		return f.CreateVerifier()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory, extractor *features.Extractor, ens *classifier.Ensemble) (*probe.Prober, error) {
		return f.CreateProber(extractor, ens)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.PipelineFactory) *trust.Engine {
		return f.CreateTrustEngine()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register feedback repository
	if err := container.Provide(func(f *factory.FeedbackFactory) (core.FeedbackRepository, error) {
		return f.CreateFeedbackRepository()
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(func(
		f *factory.PipelineFactory,
		extractor *features.Extractor,
		ens *classifier.Ensemble,
		synth *explain.Synthesizer,
		verifier *explain.Verifier,
		prober *probe.Prober,
		engine *trust.Engine,
		cacheRepo core.CacheRepository,
		feedbackRepo core.FeedbackRepository,
		cacheFactory *factory.CacheFactory,
	) (*core.AnalysisService, error) {
		return f.CreateAnalysisService(extractor, ens, synth, verifier, prober, engine, cacheRepo, feedbackRepo, cacheFactory)
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (core.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
