package di

import (
	"flag"
	"strings"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

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

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Classifier flags
	ModelPaths string
	Threshold  float64

	// Probe flags
	ProbeSeed        int64
	ProbeMaxParallel int

	// Explanation flags
	SurrogateEnabled bool
	SurrogateTimeout time.Duration

	// Domain flags
	TrustedDomains string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	JSONOutput bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Classifier flags
	flag.StringVar(&flags.ModelPaths, "models", "", "Comma-separated model files (empty uses the built-in ensemble)")
	flag.Float64Var(&flags.Threshold, "threshold", 0.5, "Phishing decision threshold on the fused probability")

	// Probe flags
	flag.Int64Var(&flags.ProbeSeed, "probe-seed", 1337, "Seed for the instability probe")
	flag.IntVar(&flags.ProbeMaxParallel, "probe-parallel", 4, "Maximum concurrent probe variants")

	// Explanation flags
	flag.BoolVar(&flags.SurrogateEnabled, "surrogate", true, "Enable the surrogate explanation pass")
	flag.DurationVar(&flags.SurrogateTimeout, "surrogate-timeout", 2*time.Second, "Time budget for the surrogate pass")

	// Domain flags
	flag.StringVar(&flags.TrustedDomains, "trusted-domains", "", "Comma-separated trusted domains (empty uses the built-in list)")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.BoolVar(&flags.JSONOutput, "json", false, "Print the analysis result as JSON")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewPipelineFactory); err != nil {
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

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register analysis service with no cache or feedback log
	if err := container.Provide(func(
		extractor *features.Extractor,
		ens *classifier.Ensemble,
		synth *explain.Synthesizer,
		verifier *explain.Verifier,
		prober *probe.Prober,
		engine *trust.Engine,
		logger *zap.Logger,
	) *core.AnalysisService {
		return core.NewAnalysisService(
			extractor,
			ens,
			synth,
			verifier,
			prober,
			engine,
			nil, // No cache for CLI
			nil, // No feedback log for CLI
			logger,
			false,            // Cache disabled
			time.Duration(0), // No TTL
		)
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

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cli.json_output", flags.JSONOutput)

	// Set classifier configuration
	if flags.ModelPaths != "" {
		v.Set("classifier.model_paths", splitAndTrim(flags.ModelPaths))
	}
	v.Set("classifier.threshold", flags.Threshold)

	// Set probe configuration
	v.Set("probe.seed", flags.ProbeSeed)
	v.Set("probe.max_parallel", flags.ProbeMaxParallel)

	// Set explanation configuration
	v.Set("explain.surrogate_enabled", flags.SurrogateEnabled)
	v.Set("explain.surrogate_timeout", flags.SurrogateTimeout.String())

	// Set domain lists
	if flags.TrustedDomains != "" {
		v.Set("domains.trusted", splitAndTrim(flags.TrustedDomains))
	}

	return config.NewFromViper(v)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
