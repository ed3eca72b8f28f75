package features

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// homoglyphPairs collapses the fixed homoglyph table: leetspeak digits and
// symbols plus the Cyrillic look-alikes attackers substitute for Latin
// letters. Applied to the lexical-matching copy only, never to the raw
// input.
var homoglyphPairs = []string{
	"@", "a",
	"1", "i",
	"0", "o",
	"3", "e",
	"$", "s",
	"!", "i",
	"5", "s",
	"7", "t",
	"4", "a",
	"а", "a", // Cyrillic а
	"е", "e", // Cyrillic е
	"о", "o", // Cyrillic о
	"р", "p", // Cyrillic р
	"с", "c", // Cyrillic с
	"у", "y", // Cyrillic у
	"х", "x", // Cyrillic х
}

var homoglyphReplacer = strings.NewReplacer(homoglyphPairs...)

// zeroWidthSet covers the invisible characters used for zero-width
// injection attacks.
var zeroWidthSet = runes.In(&unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200b, Hi: 0x200d, Stride: 1},
		{Lo: 0xfeff, Hi: 0xfeff, Stride: 1},
	},
})

var stripInvisible = transform.Chain(norm.NFKC, runes.Remove(zeroWidthSet))

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize derives the lexical-matching copy of a text: NFKC fold, strip
// zero-width runes, lower-case, collapse the homoglyph table and squeeze
// whitespace. The original string is left untouched.
func Normalize(text string) string {
	folded, _, err := transform.String(stripInvisible, text)
	if err != nil {
		// Invalid UTF-8 survives as-is; the extractor must never fail on
		// malformed input.
		folded = text
	}
	folded = strings.ToLower(folded)
	folded = homoglyphReplacer.Replace(folded)
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(folded, " "))
}

// StripZeroWidth removes only the invisible characters, preserving case and
// homoglyphs. The prober uses it to compare perturbed variants.
func StripZeroWidth(text string) string {
	out, _, err := transform.String(runes.Remove(zeroWidthSet), text)
	if err != nil {
		return text
	}
	return out
}
