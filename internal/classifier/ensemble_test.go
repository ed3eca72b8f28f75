package classifier

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

func phishyVector() core.FeatureVector {
	var v core.FeatureVector
	v[core.FeatOverallDensity] = 0.3
	v[core.FeatUrgency] = 0.2
	v[core.FeatThreats] = 0.2
	v[core.FeatCredentials] = 0.2
	v[core.FeatHasURL] = 1.0
	v[core.FeatURLRisk] = 1.0
	v[core.FeatTyposquat] = 1.0
	v[core.FeatVocabRichness] = 0.6
	return v
}

func benignVector() core.FeatureVector {
	var v core.FeatureVector
	v[core.FeatVocabRichness] = 1.0
	return v
}

func TestEnsembleSeparatesClasses(t *testing.T) {
	e, err := NewEnsemble(BuiltinModels(), nil, 0.5, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEnsemble: %v", err)
	}

	phish, err := e.Classify(phishyVector())
	if err != nil {
		t.Fatalf("Classify(phishy): %v", err)
	}
	if phish.Label != core.LabelPhishing {
		t.Errorf("phishy vector classified %s, want %s", phish.Label, core.LabelPhishing)
	}
	if phish.Confidence < 0.8 {
		t.Errorf("phishy confidence = %f, want >= 0.8", phish.Confidence)
	}

	benign, err := e.Classify(benignVector())
	if err != nil {
		t.Fatalf("Classify(benign): %v", err)
	}
	if benign.Label != core.LabelSafe {
		t.Errorf("benign vector classified %s, want %s", benign.Label, core.LabelSafe)
	}
	if benign.FusedPhishing >= 0.5 {
		t.Errorf("benign fused phishing = %f, want < 0.5", benign.FusedPhishing)
	}
}

func TestEnsembleConfidenceIsPredictedClassProbability(t *testing.T) {
	e, err := NewEnsemble(BuiltinModels(), nil, 0.5, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEnsemble: %v", err)
	}
	for _, v := range []core.FeatureVector{phishyVector(), benignVector()} {
		res, err := e.Classify(v)
		if err != nil {
			t.Fatalf("Classify: %v", err)
		}
		want := res.FusedPhishing
		if res.Label == core.LabelSafe {
			want = 1 - res.FusedPhishing
		}
		if math.Abs(res.Confidence-want) > 1e-12 {
			t.Errorf("confidence = %f, want %f for label %s", res.Confidence, want, res.Label)
		}
	}
}

func TestEnsembleFusionWeights(t *testing.T) {
	a := NewLinearModel("always-high", core.FeatureVector{}, 4.0)
	b := NewLinearModel("always-low", core.FeatureVector{}, -4.0)
	e, err := NewEnsemble([]core.Classifier{a, b}, []float64{0.6, 0.4}, 0.5, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEnsemble: %v", err)
	}
	res, err := e.Classify(core.FeatureVector{})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	pa := sigmoid(4.0)
	pb := sigmoid(-4.0)
	wantFused := 0.6*pa + 0.4*pb
	if math.Abs(res.FusedPhishing-wantFused) > 1e-12 {
		t.Errorf("fused = %f, want %f", res.FusedPhishing, wantFused)
	}
	wantAgreement := math.Abs(pa - pb)
	if math.Abs(res.EnsembleAgreement-wantAgreement) > 1e-12 {
		t.Errorf("agreement = %f, want %f", res.EnsembleAgreement, wantAgreement)
	}
	if res.ModelUsed != "always-high+always-low" {
		t.Errorf("ModelUsed = %q", res.ModelUsed)
	}
}

func TestEnsembleRejectsEmptyModelSet(t *testing.T) {
	_, err := NewEnsemble(nil, nil, 0.5, zap.NewNop())
	if !errors.Is(err, core.ErrModelUnavailable) {
		t.Errorf("err = %v, want ErrModelUnavailable", err)
	}
}

func TestEnsembleWeightCountMismatch(t *testing.T) {
	_, err := NewEnsemble(BuiltinModels(), []float64{1.0}, 0.5, zap.NewNop())
	if !errors.Is(err, core.ErrShapeMismatch) {
		t.Errorf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestDegradedEnsembleIsMarked(t *testing.T) {
	e := NewDegradedEnsemble(zap.NewNop())
	res, err := e.Classify(phishyVector())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !res.Degraded {
		t.Error("stub-backed result not marked degraded")
	}
	if res.FusedPhishing != 0.5 {
		t.Errorf("stub fused = %f, want 0.5", res.FusedPhishing)
	}
}
