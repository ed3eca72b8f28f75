package features

import (
	"github.com/trustaware/phish-trust-filter/internal/core"
)

// evidenceLexicon maps each evidence category to the keywords matched
// against the normalized text. Matching is by substring, so "suspend" also
// hits "suspended".
var evidenceLexicon = map[string][]string{
	core.CategorySpoofing:     {"similar domain", "typo", "misspell", "look-alike", "impersonat"},
	core.CategoryUrgency:      {"urgent", "immediately", "asap", "limited time", "expires", "act now"},
	core.CategoryThreats:      {"suspend", "lock", "frozen", "terminate", "restricted", "blocked"},
	core.CategoryVerification: {"verify", "confirm", "validate", "authenticate", "update"},
	core.CategoryFinancial:    {"payment", "refund", "wire", "bitcoin", "gift card", "transfer"},
	core.CategoryCredentials:  {"password", "username", "login", "credential", "ssn"},
	core.CategoryRewards:      {"winner", "prize", "reward", "claim", "congratulations"},
	core.CategoryAuthority:    {"irs", "fbi", "bank", "paypal", "amazon", "microsoft"},

	// Override-only categories. They never enter the composite density but
	// feed the semantic override rules.
	core.CategoryAction:  {"click", "download", "open the attachment", "follow the link", "log in", "sign in"},
	core.CategorySecrecy: {"confidential", "secret", "do not share", "do not tell", "discreet", "between us"},
	core.CategoryReply:   {"reply", "respond", "contact me", "call me", "write back"},
}

// compositeWeights are the fixed per-category weights of the weighted
// density feature. The divisor keeps the composite in [0,1] for ordinary
// inputs; the extractor clamps regardless.
var compositeWeights = map[string]float64{
	core.CategorySpoofing:     2.0,
	core.CategoryUrgency:      1.5,
	core.CategoryThreats:      1.8,
	core.CategoryVerification: 1.3,
	core.CategoryFinancial:    1.6,
	core.CategoryCredentials:  2.0,
	core.CategoryRewards:      1.4,
	core.CategoryAuthority:    1.2,
}

const compositeDivisor = 12.0

// DensityCategories lists the categories that map onto feature-vector
// dimensions, in vector order.
var DensityCategories = []string{
	core.CategoryUrgency,
	core.CategoryThreats,
	core.CategoryVerification,
	core.CategoryFinancial,
	core.CategoryCredentials,
	core.CategoryAuthority,
}
