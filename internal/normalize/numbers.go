package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Number-word tables. Composition follows spoken English: units and teens
// fill the ones slot, tens words the tens slot, "hundred" scales the open
// group, and thousand/million/billion/trillion close it out into the total.

var digitWords = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
}

var teenWords = map[string]int64{
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensWords = map[string]int64{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var magnitudeWords = map[string]int64{
	"thousand": 1_000,
	"million":  1_000_000,
	"billion":  1_000_000_000,
	"trillion": 1_000_000_000_000,
}

var ordinalWords = map[string]int64{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14,
	"fifteenth": 15, "sixteenth": 16, "seventeenth": 17, "eighteenth": 18,
	"nineteenth": 19, "twentieth": 20, "thirtieth": 30, "fortieth": 40,
	"fiftieth": 50, "sixtieth": 60, "seventieth": 70, "eightieth": 80,
	"ninetieth": 90, "hundredth": 100, "thousandth": 1_000, "millionth": 1_000_000,
}

var decadeWords = map[string]string{
	"twenties": "20s", "thirties": "30s", "forties": "40s", "fifties": "50s",
	"sixties": "60s", "seventies": "70s", "eighties": "80s", "nineties": "90s",
}

var (
	reCurrencyCents = regexp.MustCompile(`([$£€])(\d+)\.(\d{1,2})\b`)
	reCurrencyWhole = regexp.MustCompile(`([$£€])(\d+(?:\.\d+)?)`)
	reCoinCents     = regexp.MustCompile(`(\d+)¢`)
	rePercent       = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	reAllDigits     = regexp.MustCompile(`^\d+$`)
)

type currencyUnit struct {
	one, many, subOne, subMany string
}

var currencyUnits = map[string]currencyUnit{
	"$": {"dollar", "dollars", "cent", "cents"},
	"£": {"pound", "pounds", "penny", "pence"},
	"€": {"euro", "euros", "cent", "cents"},
}

// standardizeNumbers rewrites spoken number phrases to digits: cardinals
// ("one hundred and five" to "105"), ordinals ("twenty first" to "21st"),
// nominal digit runs ("four oh four" to "404"), decades ("sixties" to
// "60s"), and "point" decimals ("three point five" to "3.5"). Phrases the
// grammar cannot represent pass through unchanged with a warning.
func standardizeNumbers(s string) (string, []Warning) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return s, nil
	}
	out := make([]string, 0, len(tokens))
	var warns []Warning
	for i := 0; i < len(tokens); {
		repl, next, err := parseNumber(tokens, i)
		switch {
		case err != nil:
			warns = append(warns, Warning{
				Kind:   WarnNumberRange,
				Detail: strings.Join(tokens[i:next], " "),
			})
			out = append(out, tokens[i:next]...)
			i = next
		case next > i:
			out = append(out, repl)
			i = next
		default:
			out = append(out, tokens[i])
			i++
		}
	}
	return strings.Join(out, " "), warns
}

// parseNumber reads the longest numeric phrase starting at tokens[i] and
// returns its canonical form plus the index of the first token after it.
// next == i means the token is not numeric. A non-nil error reports a
// phrase outside the representable range; next then spans the bad phrase.
func parseNumber(tokens []string, i int) (repl string, next int, err error) {
	if d, ok := decadeWords[tokens[i]]; ok {
		return d, i + 1, nil
	}

	// Runs of two or more single-digit words are nominal: "one oh one"
	// is 101, not arithmetic. A run of bare "oh"s is interjection, not
	// number.
	if digits, end, ok := parseNominalRun(tokens, i); ok {
		if tail, after, ok := parseDecimalTail(tokens, end); ok {
			return digits + "." + tail, after, nil
		}
		return digits, end, nil
	}

	// "point five" with no integer part.
	if tokens[i] == "point" {
		if tail, after, ok := parseDecimalTail(tokens, i); ok {
			return "." + tail, after, nil
		}
		return "", i, nil
	}

	var (
		total, group int64
		j            = i
		sawAny       bool
		sawScale     bool // hundred or larger seen, allows "and"
		lastScale    bool // previous token was thousand/million/...
	)
loop:
	for j < len(tokens) {
		t := tokens[j]

		if t == "a" && !sawAny && j+1 < len(tokens) {
			if _, mag := magnitudeWords[tokens[j+1]]; mag || tokens[j+1] == "hundred" {
				group, sawAny = 1, true
				j++
				continue
			}
			break loop
		}
		if t == "and" && sawScale && j+1 < len(tokens) && continuesNumber(tokens[j+1]) {
			j++
			continue
		}
		if t == "hundred" {
			if group >= 100 || (sawAny && group == 0) {
				break loop
			}
			if group == 0 {
				group = 1
			}
			group *= 100
			sawAny, sawScale, lastScale = true, true, false
			j++
			continue
		}
		if m, ok := magnitudeWords[t]; ok {
			if lastScale {
				// "trillion trillion" composes past what the
				// grammar supports
				return "", j + 1, errNumberRange(tokens[i : j+1])
			}
			g := group
			if g == 0 {
				g = 1
			}
			if g > math.MaxInt64/m || total > math.MaxInt64-g*m {
				return "", j + 1, errNumberRange(tokens[i : j+1])
			}
			total += g * m
			group = 0
			sawAny, sawScale, lastScale = true, true, true
			j++
			continue
		}
		if v, ok := tensWords[t]; ok {
			if group%100 != 0 {
				break loop
			}
			group += v
			sawAny, lastScale = true, false
			j++
			continue
		}
		if v, ok := teenWords[t]; ok {
			if group%100 != 0 {
				break loop
			}
			group += v
			sawAny, lastScale = true, false
			j++
			continue
		}
		if v, ok := digitWords[t]; ok {
			if v == 0 && sawAny {
				break loop
			}
			if group%10 != 0 || group%100 >= 10 && group%100 < 20 {
				break loop
			}
			group += v
			sawAny, lastScale = true, false
			j++
			continue
		}
		if v, ok := ordinalWords[t]; ok {
			val, ok := foldOrdinal(total, group, v)
			if !ok {
				break loop
			}
			return ordinalString(val), j + 1, nil
		}
		if t == "point" && sawAny {
			if tail, after, ok := parseDecimalTail(tokens, j); ok {
				return strconv.FormatInt(total+group, 10) + "." + tail, after, nil
			}
			break loop
		}
		// A digit token can open a phrase: "3 thousand", "3 point five".
		if j == i && reAllDigits.MatchString(t) && j+1 < len(tokens) {
			_, mag := magnitudeWords[tokens[j+1]]
			if !mag && tokens[j+1] != "hundred" && tokens[j+1] != "point" {
				break loop
			}
			v, perr := strconv.ParseInt(t, 10, 64)
			if perr != nil {
				return "", j + 2, errNumberRange(tokens[i : j+2])
			}
			group = v
			sawAny, lastScale = true, false
			j++
			continue
		}
		break loop
	}
	if !sawAny {
		return "", i, nil
	}
	return strconv.FormatInt(total+group, 10), j, nil
}

func errNumberRange(span []string) error {
	return fmt.Errorf("number phrase %q exceeds supported range", strings.Join(span, " "))
}

// parseNominalRun reads consecutive single-digit words ("four oh four")
// and returns them as a digit string. At least two words, one of them a
// real digit, make a run.
func parseNominalRun(tokens []string, i int) (string, int, bool) {
	var b strings.Builder
	real := false
	j := i
	for j < len(tokens) {
		t := tokens[j]
		if t == "oh" {
			b.WriteByte('0')
			j++
			continue
		}
		v, ok := digitWords[t]
		if !ok {
			break
		}
		b.WriteByte(byte('0' + v))
		real = true
		j++
	}
	if j-i < 2 || !real {
		return "", i, false
	}
	return b.String(), j, true
}

// parseDecimalTail reads "point" followed by single-digit words starting
// at tokens[i] and returns the fraction digits.
func parseDecimalTail(tokens []string, i int) (string, int, bool) {
	if i >= len(tokens) || tokens[i] != "point" {
		return "", i, false
	}
	var b strings.Builder
	j := i + 1
	for j < len(tokens) {
		t := tokens[j]
		if t == "oh" {
			b.WriteByte('0')
			j++
			continue
		}
		v, ok := digitWords[t]
		if !ok {
			break
		}
		b.WriteByte(byte('0' + v))
		j++
	}
	if b.Len() == 0 {
		return "", i, false
	}
	return b.String(), j, true
}

// foldOrdinal merges an ordinal word into the accumulated cardinal, so
// "twenty first" becomes 21 and "two hundredth" becomes 200.
func foldOrdinal(total, group, v int64) (int64, bool) {
	if v >= 100 {
		g := group
		if g == 0 {
			g = 1
		}
		if g > math.MaxInt64/v {
			return 0, false
		}
		return total + g*v, true
	}
	if v >= 10 {
		if group%100 != 0 {
			return 0, false
		}
		return total + group + v, true
	}
	if group%10 != 0 || group%100 >= 10 && group%100 < 20 {
		return 0, false
	}
	return total + group + v, true
}

func ordinalString(v int64) string {
	suffix := "th"
	switch {
	case v%100 >= 11 && v%100 <= 13:
	case v%10 == 1:
		suffix = "st"
	case v%10 == 2:
		suffix = "nd"
	case v%10 == 3:
		suffix = "rd"
	}
	return strconv.FormatInt(v, 10) + suffix
}

func continuesNumber(t string) bool {
	if _, ok := digitWords[t]; ok {
		return true
	}
	if _, ok := teenWords[t]; ok {
		return true
	}
	if _, ok := tensWords[t]; ok {
		return true
	}
	if _, ok := ordinalWords[t]; ok {
		return true
	}
	return false
}

// expandCurrency rewrites symbol-prefixed amounts into spoken-order words:
// "$5" to "5 dollars", "$5.25" to "5 dollars 25 cents", "£3.50" to
// "3 pounds 50 pence". Amounts with more than two decimal places keep the
// decimal: "$5.125" to "5.125 dollars".
func expandCurrency(s string) string {
	s = reCurrencyCents.ReplaceAllStringFunc(s, func(m string) string {
		parts := reCurrencyCents.FindStringSubmatch(m)
		unit := currencyUnits[parts[1]]
		whole, cents := parts[2], strings.TrimLeft(parts[3], "0")
		if cents == "" {
			return amount(whole, unit.one, unit.many)
		}
		if whole == "0" {
			return amount(cents, unit.subOne, unit.subMany)
		}
		return amount(whole, unit.one, unit.many) + " " + amount(cents, unit.subOne, unit.subMany)
	})
	s = reCurrencyWhole.ReplaceAllStringFunc(s, func(m string) string {
		parts := reCurrencyWhole.FindStringSubmatch(m)
		unit := currencyUnits[parts[1]]
		return amount(parts[2], unit.one, unit.many)
	})
	s = reCoinCents.ReplaceAllStringFunc(s, func(m string) string {
		parts := reCoinCents.FindStringSubmatch(m)
		return amount(parts[1], "cent", "cents")
	})
	return s
}

// expandPercent rewrites "50%" to "50 percent".
func expandPercent(s string) string {
	return rePercent.ReplaceAllString(s, "$1 percent")
}

func amount(value, one, many string) string {
	if value == "1" {
		return value + " " + one
	}
	return value + " " + many
}
