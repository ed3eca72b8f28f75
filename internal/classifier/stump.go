package classifier

import (
	"fmt"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// Stump is a single decision stump contributing an additive margin.
type Stump struct {
	Feature   int
	Threshold float64
	Below     float64
	Above     float64
}

// StumpModel sums stump margins and squashes the total through a sigmoid.
// It approximates a small boosted tree ensemble without any tree library.
type StumpModel struct {
	name   string
	bias   float64
	stumps []Stump
}

// NewStumpModel creates a stump model. Feature indices are validated against
// the vector dimension up front so Predict never has to bounds-check.
func NewStumpModel(name string, bias float64, stumps []Stump) (*StumpModel, error) {
	for _, s := range stumps {
		if s.Feature < 0 || s.Feature >= core.FeatureDim {
			return nil, fmt.Errorf("stump feature index %d out of range: %w", s.Feature, core.ErrShapeMismatch)
		}
	}
	return &StumpModel{name: name, bias: bias, stumps: stumps}, nil
}

// Name returns the model identifier.
func (m *StumpModel) Name() string {
	return m.name
}

// Predict returns the predicted class label.
func (m *StumpModel) Predict(v core.FeatureVector) (core.Label, error) {
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
func (m *StumpModel) PredictProba(v core.FeatureVector) ([2]float64, error) {
	score := m.bias
	for _, s := range m.stumps {
		if v[s.Feature] >= s.Threshold {
			score += s.Above
		} else {
			score += s.Below
		}
	}
	p := sigmoid(score)
	return [2]float64{1 - p, p}, nil
}
