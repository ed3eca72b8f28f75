package classifier

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// modelFile is the on-disk YAML shape for a persisted model.
type modelFile struct {
	Version  int       `yaml:"version"`
	Type     string    `yaml:"type"`
	Name     string    `yaml:"name"`
	Features int       `yaml:"features"`
	Bias     float64   `yaml:"bias"`
	Weights  []float64 `yaml:"weights"`
	Stumps   []struct {
		Feature   int     `yaml:"feature"`
		Threshold float64 `yaml:"threshold"`
		Below     float64 `yaml:"below"`
		Above     float64 `yaml:"above"`
	} `yaml:"stumps"`
}

// LoadModel parses a model file and validates it against the extractor's
// feature dimension. A dimension mismatch is a hard error, never a silent
// truncation.
func LoadModel(path string) (core.Classifier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	var mf modelFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	if mf.Version != core.FeatureVersion {
		return nil, fmt.Errorf("model %s has feature version %d, extractor has %d: %w",
			path, mf.Version, core.FeatureVersion, core.ErrShapeMismatch)
	}
	if mf.Features != core.FeatureDim {
		return nil, fmt.Errorf("model %s expects %d features, extractor produces %d: %w",
			path, mf.Features, core.FeatureDim, core.ErrShapeMismatch)
	}
	name := mf.Name
	if name == "" {
		name = path
	}
	switch mf.Type {
	case "linear":
		if len(mf.Weights) != core.FeatureDim {
			return nil, fmt.Errorf("model %s has %d weights, expected %d: %w",
				path, len(mf.Weights), core.FeatureDim, core.ErrShapeMismatch)
		}
		var w core.FeatureVector
		copy(w[:], mf.Weights)
		return NewLinearModel(name, w, mf.Bias), nil
	case "stumps":
		stumps := make([]Stump, len(mf.Stumps))
		for i, s := range mf.Stumps {
			stumps[i] = Stump{Feature: s.Feature, Threshold: s.Threshold, Below: s.Below, Above: s.Above}
		}
		return NewStumpModel(name, mf.Bias, stumps)
	default:
		return nil, fmt.Errorf("model %s has unknown type %q", path, mf.Type)
	}
}

// EnsembleConfig selects the ensemble members and fusion policy.
type EnsembleConfig struct {
	// ModelPaths lists model files to load; empty means the built-in pair.
	ModelPaths []string
	// FusionWeights must match the member count; nil uses the defaults.
	FusionWeights []float64
	// Threshold is the phishing decision threshold on the fused probability.
	Threshold float64
}

var (
	sharedOnce     sync.Once
	sharedEnsemble *Ensemble
	sharedErr      error
)

// LoadShared builds the process-wide ensemble exactly once; concurrent
// callers share the same instance. If loading fails the ensemble degrades to
// the stub and the error is reported alongside it.
func LoadShared(cfg EnsembleConfig, logger *zap.Logger) (*Ensemble, error) {
	sharedOnce.Do(func() {
		sharedEnsemble, sharedErr = buildEnsemble(cfg, logger)
		if sharedErr != nil {
			logger.Error("model loading failed, degrading to stub classifier",
				zap.Error(sharedErr))
			sharedEnsemble = NewDegradedEnsemble(logger)
		}
	})
	return sharedEnsemble, sharedErr
}

// NewFromConfig builds a fresh ensemble without touching the shared
// singleton. Tests and one-shot CLI runs use this.
func NewFromConfig(cfg EnsembleConfig, logger *zap.Logger) (*Ensemble, error) {
	return buildEnsemble(cfg, logger)
}

func buildEnsemble(cfg EnsembleConfig, logger *zap.Logger) (*Ensemble, error) {
	if len(cfg.ModelPaths) == 0 {
		return NewEnsemble(BuiltinModels(), cfg.FusionWeights, cfg.Threshold, logger)
	}
	models := make([]core.Classifier, 0, len(cfg.ModelPaths))
	for _, p := range cfg.ModelPaths {
		m, err := LoadModel(p)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return NewEnsemble(models, cfg.FusionWeights, cfg.Threshold, logger)
}
