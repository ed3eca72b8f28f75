package trust

import "github.com/trustaware/phish-trust-filter/internal/core"

// OverrideRule is a semantic rule that forces a PHISHING verdict when its
// category combination fires, regardless of classifier probabilities. Rules
// encode request patterns no legitimate sender combines.
type OverrideRule struct {
	Name    string
	Reason  string
	Matches func(signals *core.TextSignals) bool
}

// DefaultOverrideRules is the deployed rule set.
func DefaultOverrideRules() []OverrideRule {
	return []OverrideRule{
		{
			Name:   "pressured_action",
			Reason: "urgency or reward language paired with a requested action",
			Matches: func(s *core.TextSignals) bool {
				pressure := s.HitCount(core.CategoryUrgency) > 0 || s.HitCount(core.CategoryRewards) > 0
				return pressure && s.HitCount(core.CategoryAction) > 0
			},
		},
		{
			Name:   "covert_transaction",
			Reason: "secrecy language paired with a financial or reply request",
			Matches: func(s *core.TextSignals) bool {
				covert := s.HitCount(core.CategoryFinancial) > 0 || s.HitCount(core.CategoryReply) > 0
				return s.HitCount(core.CategorySecrecy) > 0 && covert
			},
		},
		{
			Name:   "impersonated_domain",
			Reason: "link domain imitates a known brand",
			Matches: func(s *core.TextSignals) bool {
				return s.Typosquat
			},
		},
	}
}
