package classifier

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// Ensemble fuses member probabilities with fixed convex weights and applies a
// decision threshold on the fused phishing probability. It implements
// core.EmailClassifier.
type Ensemble struct {
	models    []core.Classifier
	weights   []float64
	threshold float64
	degraded  bool
	logger    *zap.Logger
}

// NewEnsemble creates an ensemble. Weights must match the model count; they
// are normalized to sum to one. A nil weight slice distributes weight as
// 0.6/0.4 for a pair and uniformly otherwise.
func NewEnsemble(models []core.Classifier, weights []float64, threshold float64, logger *zap.Logger) (*Ensemble, error) {
	if len(models) == 0 {
		return nil, core.ErrModelUnavailable
	}
	if weights == nil {
		if len(models) == 2 {
			weights = []float64{0.6, 0.4}
		} else {
			weights = make([]float64, len(models))
			for i := range weights {
				weights[i] = 1.0 / float64(len(models))
			}
		}
	}
	if len(weights) != len(models) {
		return nil, fmt.Errorf("fusion weights: got %d for %d models: %w", len(weights), len(models), core.ErrShapeMismatch)
	}
	var sum float64
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("fusion weight %f is negative", w)
		}
		sum += w
	}
	if sum <= 0 {
		return nil, fmt.Errorf("fusion weights sum to zero")
	}
	norm := make([]float64, len(weights))
	for i, w := range weights {
		norm[i] = w / sum
	}
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.5
	}
	return &Ensemble{models: models, weights: norm, threshold: threshold, logger: logger}, nil
}

// NewDegradedEnsemble wraps the stub model so the pipeline can keep running
// when no real model is loadable. Results are marked degraded.
func NewDegradedEnsemble(logger *zap.Logger) *Ensemble {
	e, _ := NewEnsemble([]core.Classifier{NewStubModel()}, nil, 0.5, logger)
	e.degraded = true
	return e
}

// Classify runs every member on the same feature vector and fuses the votes.
// A failing member is skipped with its weight redistributed; if every member
// fails the ensemble reports ErrModelUnavailable.
func (e *Ensemble) Classify(v core.FeatureVector) (*core.ClassificationResult, error) {
	votes := make([]core.ModelVote, 0, len(e.models))
	var fused, used float64
	for i, m := range e.models {
		p, err := m.PredictProba(v)
		if err != nil {
			e.logger.Warn("ensemble member failed",
				zap.String("model", m.Name()),
				zap.Error(err))
			continue
		}
		votes = append(votes, core.ModelVote{Name: m.Name(), PhishingProb: p[1]})
		fused += e.weights[i] * p[1]
		used += e.weights[i]
	}
	if len(votes) == 0 {
		return nil, fmt.Errorf("all ensemble members failed: %w", core.ErrModelUnavailable)
	}
	fused /= used

	agreement := 0.0
	if len(votes) >= 2 {
		agreement = math.Abs(votes[0].PhishingProb - votes[1].PhishingProb)
	}

	label := core.LabelSafe
	confidence := 1 - fused
	if fused >= e.threshold {
		label = core.LabelPhishing
		confidence = fused
	}
	names := make([]string, len(votes))
	for i, vote := range votes {
		names[i] = vote.Name
	}
	return &core.ClassificationResult{
		Label:             label,
		Confidence:        confidence,
		FusedPhishing:     fused,
		EnsembleAgreement: agreement,
		Votes:             votes,
		Degraded:          e.degraded || len(votes) < len(e.models),
		ModelUsed:         strings.Join(names, "+"),
	}, nil
}
