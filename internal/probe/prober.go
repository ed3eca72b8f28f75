package probe

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// Prober measures prediction stability under adversarial perturbations. Each
// strategy produces one variant; instability is the mean probability drift
// and the verdict flip rate, averaged. Raw instability lands in [0,1].
type Prober struct {
	extractor   core.FeatureExtractor
	classifier  core.EmailClassifier
	strategies  []core.PerturbationStrategy
	seed        int64
	maxParallel int
	logger      *zap.Logger
}

// NewProber creates a prober over the given strategy set. The seed fixes
// every stochastic strategy, so repeated probes of the same text agree.
func NewProber(extractor core.FeatureExtractor, classifier core.EmailClassifier, strategies []core.PerturbationStrategy, seed int64, maxParallel int, logger *zap.Logger) *Prober {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Prober{
		extractor:   extractor,
		classifier:  classifier,
		strategies:  strategies,
		seed:        seed,
		maxParallel: maxParallel,
		logger:      logger,
	}
}

type variantOutcome struct {
	drift   float64
	flipped bool
}

// Probe runs every strategy against the text and aggregates the outcomes. A
// strategy whose variant fails to classify is skipped; the probe only fails
// when no variant could be scored at all.
func (p *Prober) Probe(ctx context.Context, text string, cls *core.ClassificationResult) (float64, error) {
	outcomes := make([]*variantOutcome, len(p.strategies))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxParallel)
	for i, strat := range p.strategies {
		i, strat := i, strat
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			variant := strat.Apply(text, p.seed+int64(i))
			v, _ := p.extractor.Extract(variant)
			res, err := p.classifier.Classify(v)
			if err != nil {
				p.logger.Warn("perturbation variant failed to classify",
					zap.String("strategy", strat.Name()),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			outcomes[i] = &variantOutcome{
				drift:   math.Abs(res.FusedPhishing - cls.FusedPhishing),
				flipped: res.Label != cls.Label,
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("instability probe interrupted: %w", err)
	}

	var drift float64
	var flips, scored int
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		scored++
		drift += o.drift
		if o.flipped {
			flips++
		}
	}
	if scored == 0 {
		return 0, fmt.Errorf("no perturbation variant could be scored")
	}
	instability := (drift/float64(scored) + float64(flips)/float64(scored)) / 2.0
	p.logger.Debug("instability probe complete",
		zap.Int("variants", scored),
		zap.Int("flips", flips),
		zap.Float64("instability", instability))
	return instability, nil
}
