package classifier

import (
	"fmt"
	"math"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// LinearModel is a logistic classifier over the fixed feature vector. It is
// the default persisted-model shape: deterministic, shape-checked and cheap
// enough to re-run for every perturbation variant.
type LinearModel struct {
	name    string
	weights core.FeatureVector
	bias    float64
}

// NewLinearModel creates a linear model from explicit coefficients.
func NewLinearModel(name string, weights core.FeatureVector, bias float64) *LinearModel {
	return &LinearModel{name: name, weights: weights, bias: bias}
}

// Name returns the model identifier.
func (m *LinearModel) Name() string {
	return m.name
}

// Predict returns the predicted class label.
func (m *LinearModel) Predict(v core.FeatureVector) (core.Label, error) {
	p, err := m.PredictProba(v)
	if err != nil {
		return core.LabelSafe, err
	}
	if p[1] >= p[0] {
		return core.LabelPhishing, nil
	}
	return core.LabelSafe, nil
}

// PredictProba returns [p_safe, p_phishing].
func (m *LinearModel) PredictProba(v core.FeatureVector) ([2]float64, error) {
	logit := m.bias
	for i, w := range m.weights {
		logit += w * v[i]
	}
	p := sigmoid(logit)
	if math.IsNaN(p) {
		return [2]float64{}, fmt.Errorf("model %s produced NaN probability", m.name)
	}
	return [2]float64{1 - p, p}, nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
