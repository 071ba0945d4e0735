package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// WarningKind classifies non-fatal conditions met during normalization.
type WarningKind int

const (
	// WarnUnbalancedSpan reports an annotation delimiter with no closing
	// partner. The delimiter is kept for the symbol pass to strip.
	WarnUnbalancedSpan WarningKind = iota
	// WarnNumberRange reports a spoken number phrase outside the
	// representable range. The phrase passes through unchanged.
	WarnNumberRange
)

func (k WarningKind) String() string {
	switch k {
	case WarnUnbalancedSpan:
		return "unbalanced annotation"
	case WarnNumberRange:
		return "number out of range"
	default:
		return "unknown"
	}
}

// Warning records a condition that did not stop normalization but may be
// worth surfacing to whoever prepared the transcript.
type Warning struct {
	Kind   WarningKind
	Detail string
}

func (w Warning) String() string {
	if w.Detail == "" {
		return w.Kind.String()
	}
	return w.Kind.String() + ": " + w.Detail
}

// Normalizer applies the full canonicalization pipeline. It is immutable
// and safe for concurrent use.
type Normalizer struct {
	rules *Ruleset
}

// New returns a Normalizer over the given ruleset, or over the embedded
// ruleset when rules is nil.
func New(rules *Ruleset) *Normalizer {
	if rules == nil {
		rules = Embedded()
	}
	return &Normalizer{rules: rules}
}

// RulesVersion reports the version of the active rule asset.
func (n *Normalizer) RulesVersion() int {
	return n.rules.Version
}

// Normalize canonicalizes one line of transcript text.
func (n *Normalizer) Normalize(line string) string {
	out, _ := n.NormalizeWithWarnings(line)
	return out
}

// NormalizeWithWarnings canonicalizes one line and reports any non-fatal
// conditions met along the way. The output is idempotent: feeding it back
// through returns it unchanged.
func (n *Normalizer) NormalizeWithWarnings(line string) (string, []Warning) {
	s := strings.ToLower(line)

	s, warns := stripSpans(s)
	if n.rules.fillerRe != nil {
		s = n.rules.fillerRe.ReplaceAllString(s, " ")
	}

	// Contractions run while apostrophes are still present.
	s = reSpacedApostrophe.ReplaceAllString(s, "'")
	for _, r := range n.rules.contractions {
		s = r.re.ReplaceAllString(s, r.to)
	}
	for _, r := range suffixContractions {
		s = r.re.ReplaceAllString(s, r.to)
	}

	s = reDigitComma.ReplaceAllString(s, "$1$2")
	s = reSentencePeriod.ReplaceAllString(s, " $1")
	s = stripSymbolsAndDiacritics(s)

	// Kept symbols are only meaningful next to digits; strand the rest
	// before the number pass so the words they touched still normalize.
	s = reStraySymbol.ReplaceAllString(s, " $1")
	s = reTrailingSymbol.ReplaceAllString(s, "")
	s = reStrayPercent.ReplaceAllString(s, "$1 ")
	s = strings.TrimLeft(s, "%")

	s, numWarns := standardizeNumbers(s)
	warns = append(warns, numWarns...)
	s = expandCurrency(s)
	s = expandPercent(s)
	s = applySpellings(s, n.rules.Spellings)

	return strings.Join(strings.Fields(s), " "), warns
}

var (
	reBracketSpan      = regexp.MustCompile(`\[[^\]]*\]`)
	reParenSpan        = regexp.MustCompile(`\([^)]*\)`)
	reAngleSpan        = regexp.MustCompile(`<[^>]*>`)
	reSpacedApostrophe = regexp.MustCompile(`\s+'`)
	reDigitComma       = regexp.MustCompile(`(\d),(\d)`)
	reSentencePeriod   = regexp.MustCompile(`\.([^0-9]|$)`)
	reStraySymbol      = regexp.MustCompile(`[.$¢€£]([^0-9])`)
	reTrailingSymbol   = regexp.MustCompile(`[.$¢€£]+$`)
	reStrayPercent     = regexp.MustCompile(`([^0-9])%+`)
)

// suffixContractions expand clitics left after the whole-word table. The
// perfect-tense forms must run before the generic 's and 'd rules.
var suffixContractions = []compiledReplacement{
	{re: regexp.MustCompile(`'d been\b`), to: " had been"},
	{re: regexp.MustCompile(`'s been\b`), to: " has been"},
	{re: regexp.MustCompile(`'d gone\b`), to: " had gone"},
	{re: regexp.MustCompile(`'s gone\b`), to: " has gone"},
	{re: regexp.MustCompile(`'d done\b`), to: " had done"},
	{re: regexp.MustCompile(`'s got\b`), to: " has got"},
	{re: regexp.MustCompile(`n't\b`), to: " not"},
	{re: regexp.MustCompile(`'re\b`), to: " are"},
	{re: regexp.MustCompile(`'s\b`), to: " is"},
	{re: regexp.MustCompile(`'d\b`), to: " would"},
	{re: regexp.MustCompile(`'ll\b`), to: " will"},
	{re: regexp.MustCompile(`'t\b`), to: " not"},
	{re: regexp.MustCompile(`'ve\b`), to: " have"},
	{re: regexp.MustCompile(`'m\b`), to: " am"},
}

// stripSpans removes bracketed, parenthesized, and angled annotation spans
// such as [noise] or (laughs). A delimiter with no closing partner is left
// in place and reported; the symbol pass removes the character itself.
func stripSpans(s string) (string, []Warning) {
	out := reBracketSpan.ReplaceAllString(s, "")
	out = reParenSpan.ReplaceAllString(out, "")
	out = reAngleSpan.ReplaceAllString(out, "")
	var warns []Warning
	if i := strings.IndexAny(out, "[]()<>"); i >= 0 {
		warns = append(warns, Warning{Kind: WarnUnbalancedSpan, Detail: string(out[i])})
	}
	return out, warns
}

var keptSymbols = map[rune]bool{
	'.': true, '%': true, '$': true, '¢': true, '€': true, '£': true,
}

func mapSymbolRune(r rune) rune {
	if keptSymbols[r] {
		return r
	}
	if unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsMark(r) {
		return ' '
	}
	return r
}

// stripSymbolsAndDiacritics decomposes to NFKD, drops combining marks, and
// replaces punctuation and symbols with spaces, keeping the runes the
// numeric pass reads. Transformer chains carry state, so one is built per
// call rather than shared.
func stripSymbolsAndDiacritics(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.Mn)),
		runes.Map(mapSymbolRune),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func applySpellings(s string, spellings map[string]string) string {
	if len(spellings) == 0 {
		return s
	}
	fields := strings.Fields(s)
	changed := false
	for i, f := range fields {
		if repl, ok := spellings[f]; ok {
			fields[i] = repl
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(fields, " ")
}
