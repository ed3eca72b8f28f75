package explain

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/trustaware/phish-trust-filter/internal/core"
)

// Surrogate estimates per-word influence by deleting each candidate word and
// re-running the classifier on the shortened text. It is strictly best
// effort: the caller's context bounds the whole pass.
type Surrogate struct {
	extractor  core.FeatureExtractor
	classifier core.EmailClassifier

	// MaxCandidates caps the distinct words probed per message.
	MaxCandidates int
	// TopK caps how many influential words are reported.
	TopK int
	// MinInfluence is the smallest probability shift worth reporting.
	MinInfluence float64
}

// NewSurrogate creates a surrogate explainer with the default budget.
func NewSurrogate(extractor core.FeatureExtractor, classifier core.EmailClassifier) *Surrogate {
	return &Surrogate{
		extractor:     extractor,
		classifier:    classifier,
		MaxCandidates: 24,
		TopK:          3,
		MinInfluence:  0.02,
	}
}

type wordInfluence struct {
	word  string
	shift float64
}

// InfluentialWords returns up to TopK words whose removal moves the fused
// phishing probability toward SAFE the most. Candidate order follows first
// appearance in the text, so results are deterministic.
func (s *Surrogate) InfluentialWords(ctx context.Context, text string, cls *core.ClassificationResult) ([]string, error) {
	words := strings.Fields(text)
	if len(words) < 2 {
		return nil, nil
	}
	seen := make(map[string]bool, len(words))
	candidates := make([]string, 0, s.MaxCandidates)
	for _, w := range words {
		key := strings.ToLower(strings.Trim(w, ".,:;!?\"'()"))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, key)
		if len(candidates) >= s.MaxCandidates {
			break
		}
	}

	influences := make([]wordInfluence, 0, len(candidates))
	for _, cand := range candidates {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("surrogate pass interrupted: %w", ctx.Err())
		default:
		}
		variant := deleteWord(words, cand)
		if variant == "" {
			continue
		}
		v, _ := s.extractor.Extract(variant)
		res, err := s.classifier.Classify(v)
		if err != nil {
			continue
		}
		shift := cls.FusedPhishing - res.FusedPhishing
		if shift >= s.MinInfluence {
			influences = append(influences, wordInfluence{word: cand, shift: shift})
		}
	}

	sort.SliceStable(influences, func(i, j int) bool {
		return influences[i].shift > influences[j].shift
	})
	if len(influences) > s.TopK {
		influences = influences[:s.TopK]
	}
	out := make([]string, len(influences))
	for i, inf := range influences {
		out[i] = inf.word
	}
	return out, nil
}

func deleteWord(words []string, target string) string {
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if strings.ToLower(strings.Trim(w, ".,:;!?\"'()")) == target {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
