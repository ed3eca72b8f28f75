package probe

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/trustaware/phish-trust-filter/internal/core"
	"github.com/trustaware/phish-trust-filter/internal/features"
)

// substitutions maps Latin characters to the look-alikes attackers use.
var substitutions = map[rune]rune{
	'a': '@',
	'e': '3',
	'i': '1',
	'o': '0',
	's': '$',
	't': '7',
	'l': '1',
}

// restorations inverts the look-alike table back to canonical Latin.
var restorations = strings.NewReplacer(
	"0", "o",
	"1", "l",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"$", "s",
	"@", "a",
	"!", "i",
	"а", "a",
	"е", "e",
	"о", "o",
	"р", "p",
	"с", "c",
	"у", "y",
	"х", "x",
)

// HomoglyphSubstitution replaces a fraction of eligible characters with
// look-alikes, imitating a character-level evasion attempt.
type HomoglyphSubstitution struct {
	// Strength is the fraction of eligible characters replaced.
	Strength float64
}

func (s HomoglyphSubstitution) Name() string { return "homoglyph_substitution" }

func (s HomoglyphSubstitution) Apply(text string, seed int64) string {
	strength := s.Strength
	if strength <= 0 {
		strength = 0.1
	}
	rng := rand.New(rand.NewSource(seed))
	runes := []rune(text)
	for i, r := range runes {
		sub, ok := substitutions[r]
		if !ok {
			continue
		}
		if rng.Float64() < strength {
			runes[i] = sub
		}
	}
	return string(runes)
}

// HomoglyphRestoration strips invisible characters and maps look-alikes back
// to canonical Latin. On clean text it is the identity, so its drift isolates
// how much of the prediction rests on obfuscated characters.
type HomoglyphRestoration struct{}

func (HomoglyphRestoration) Name() string { return "homoglyph_restoration" }

func (HomoglyphRestoration) Apply(text string, _ int64) string {
	return restorations.Replace(features.StripZeroWidth(text))
}

// ZeroWidthInsertion injects zero-width spaces inside words.
type ZeroWidthInsertion struct {
	// Rate is the per-letter insertion probability.
	Rate float64
}

func (z ZeroWidthInsertion) Name() string { return "zero_width_insertion" }

func (z ZeroWidthInsertion) Apply(text string, seed int64) string {
	rate := z.Rate
	if rate <= 0 {
		rate = 0.2
	}
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	b.Grow(len(text) * 2)
	for _, r := range text {
		b.WriteRune(r)
		if r != ' ' && r != '\n' && rng.Float64() < rate {
			b.WriteRune('​')
		}
	}
	return b.String()
}

// WordSwap exchanges one adjacent word pair chosen by the seed.
type WordSwap struct{}

func (WordSwap) Name() string { return "word_swap" }

func (WordSwap) Apply(text string, seed int64) string {
	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}
	rng := rand.New(rand.NewSource(seed))
	i := rng.Intn(len(words) - 1)
	words[i], words[i+1] = words[i+1], words[i]
	return strings.Join(words, " ")
}

// CharSwap transposes one adjacent character pair inside a seeded word,
// imitating a typo-style evasion.
type CharSwap struct{}

func (CharSwap) Name() string { return "char_swap" }

func (CharSwap) Apply(text string, seed int64) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	rng := rand.New(rand.NewSource(seed))
	// Pick the first sufficiently long word from a seeded offset.
	start := rng.Intn(len(words))
	for off := 0; off < len(words); off++ {
		idx := (start + off) % len(words)
		runes := []rune(words[idx])
		if len(runes) < 4 {
			continue
		}
		i := 1 + rng.Intn(len(runes)-2)
		runes[i], runes[i+1] = runes[i+1], runes[i]
		words[idx] = string(runes)
		break
	}
	return strings.Join(words, " ")
}

// ShortLinkInjection appends a shortened link, testing how far one injected
// URL can move a verdict.
type ShortLinkInjection struct{}

func (ShortLinkInjection) Name() string { return "short_link_injection" }

func (ShortLinkInjection) Apply(text string, _ int64) string {
	return text + " http://bit.ly/x7f2q"
}

// NoiseInjection appends neutral filler words drawn from a fixed pool.
type NoiseInjection struct{}

var noisePool = []string{
	"regards", "thanks", "meeting", "schedule", "attached",
	"team", "project", "afternoon", "document", "calendar",
}

func (NoiseInjection) Name() string { return "noise_injection" }

func (NoiseInjection) Apply(text string, seed int64) string {
	rng := rand.New(rand.NewSource(seed))
	picks := make([]string, 4)
	for i := range picks {
		picks[i] = noisePool[rng.Intn(len(noisePool))]
	}
	return text + " " + strings.Join(picks, " ")
}

// DefaultStrategies is the production probe set.
func DefaultStrategies() []core.PerturbationStrategy {
	return []core.PerturbationStrategy{
		HomoglyphRestoration{},
		HomoglyphSubstitution{},
		ZeroWidthInsertion{},
		WordSwap{},
		CharSwap{},
	}
}

// StrategiesByName resolves configured strategy names. Unknown names are
// reported rather than skipped so a typo in config cannot silently weaken
// the probe. An empty list yields the default set.
func StrategiesByName(names []string) ([]core.PerturbationStrategy, error) {
	if len(names) == 0 {
		return DefaultStrategies(), nil
	}
	known := map[string]core.PerturbationStrategy{}
	for _, s := range []core.PerturbationStrategy{
		HomoglyphRestoration{},
		HomoglyphSubstitution{},
		ZeroWidthInsertion{},
		WordSwap{},
		CharSwap{},
		ShortLinkInjection{},
		NoiseInjection{},
		FakeDomainEdit{},
	} {
		known[s.Name()] = s
	}
	out := make([]core.PerturbationStrategy, 0, len(names))
	for _, name := range names {
		s, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown perturbation strategy %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}

// FakeDomainEdit corrupts one character inside each linked URL, modelling a
// lookalike-domain swap rather than body obfuscation. Identity on link-free
// text.
type FakeDomainEdit struct{}

func (FakeDomainEdit) Name() string { return "fake_domain_edit" }

func (FakeDomainEdit) Apply(text string, seed int64) string {
	urls := features.ExtractURLs(text)
	if len(urls) == 0 {
		return text
	}
	rng := rand.New(rand.NewSource(seed))
	for _, u := range urls {
		runes := []rune(u)
		var candidates []int
		for i, r := range runes {
			if _, ok := substitutions[r]; ok {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		i := candidates[rng.Intn(len(candidates))]
		runes[i] = substitutions[runes[i]]
		text = strings.Replace(text, u, string(runes), 1)
	}
	return text
}
