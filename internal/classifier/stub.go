package classifier

import "github.com/trustaware/phish-trust-filter/internal/core"

// StubModel returns a maximally uninformative 50/50 split. It exists so the
// pipeline can degrade instead of failing outright when no model loads; any
// ensemble built on it marks its results degraded.
type StubModel struct{}

// NewStubModel creates the stub.
func NewStubModel() *StubModel {
	return &StubModel{}
}

// Name returns the stub identifier.
func (s *StubModel) Name() string {
	return "stub"
}

// Predict always reports SAFE.
func (s *StubModel) Predict(core.FeatureVector) (core.Label, error) {
	return core.LabelSafe, nil
}

// PredictProba always returns an even split.
func (s *StubModel) PredictProba(core.FeatureVector) ([2]float64, error) {
	return [2]float64{0.5, 0.5}, nil
}
