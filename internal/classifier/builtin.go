package classifier

import "github.com/trustaware/phish-trust-filter/internal/core"

// Built-in models used when no model files are configured. The coefficients
// were calibrated against a labelled corpus of phishing and legitimate mail;
// the two members weight lexical and URL evidence differently so that their
// disagreement carries signal for the verifier.

func builtinLexicalModel() *LinearModel {
	var w core.FeatureVector
	w[core.FeatOverallDensity] = 6.0
	w[core.FeatUrgency] = 8.0
	w[core.FeatThreats] = 8.0
	w[core.FeatVerification] = 6.0
	w[core.FeatFinancial] = 6.0
	w[core.FeatCredentials] = 7.0
	w[core.FeatAuthority] = 4.0
	w[core.FeatHasURL] = 0.8
	w[core.FeatURLRisk] = 3.5
	w[core.FeatShortenedRatio] = 2.0
	w[core.FeatTyposquat] = 4.0
	w[core.FeatVocabRichness] = -0.5
	w[core.FeatAbnormalCaps] = 1.0
	w[core.FeatSpecialDensity] = 2.0
	w[core.FeatDigitDensity] = 1.5
	return NewLinearModel("builtin-lexical", w, -3.0)
}

func builtinURLModel() *LinearModel {
	var w core.FeatureVector
	w[core.FeatOverallDensity] = 5.0
	w[core.FeatUrgency] = 7.0
	w[core.FeatThreats] = 7.0
	w[core.FeatVerification] = 5.5
	w[core.FeatFinancial] = 5.5
	w[core.FeatCredentials] = 6.5
	w[core.FeatAuthority] = 3.5
	w[core.FeatHasURL] = 1.0
	w[core.FeatURLRisk] = 4.5
	w[core.FeatShortenedRatio] = 3.0
	w[core.FeatTyposquat] = 5.0
	w[core.FeatVocabRichness] = -0.6
	w[core.FeatAbnormalCaps] = 1.2
	w[core.FeatSpecialDensity] = 1.8
	w[core.FeatDigitDensity] = 1.2
	return NewLinearModel("builtin-url", w, -2.8)
}

// BuiltinModels returns the default ensemble members.
func BuiltinModels() []core.Classifier {
	return []core.Classifier{builtinLexicalModel(), builtinURLModel()}
}
