// Package scoring turns line-aligned transcript pairs into corpus word
// error rates. Error counts are summed across all lines before the single
// division, so long utterances weigh in proportion to their length; a mean
// of per-line rates would not.
package scoring

import (
	"errors"
	"strings"
	"sync"

	"github.com/ins8ai/wer/internal/align"
	"github.com/ins8ai/wer/internal/corpus"
	"github.com/ins8ai/wer/internal/normalize"
)

// ErrUndefined reports a corpus whose references contain no tokens. The
// rate has no denominator; callers present it as undefined rather than
// zero or NaN.
var ErrUndefined = errors.New("word error rate undefined: reference has no tokens")

// Options control a scoring run.
type Options struct {
	// Normalizer canonicalizes both sides before alignment. Nil scores
	// the raw text.
	Normalizer *normalize.Normalizer
	// Workers sets the number of lines scored concurrently. Values
	// below 2 score sequentially. Output is identical either way.
	Workers int
	// KeepLines retains per-line alignments for reports and diffs.
	KeepLines bool
}

// Totals accumulates error counts across a whole corpus.
type Totals struct {
	align.Counts
	Lines int
}

// WER returns the corpus word error rate: errors over reference tokens.
// Insertions against a token-free reference make the rate exceed what a
// bounded metric would allow; it is reported as-is, never clamped.
func (t Totals) WER() (float64, error) {
	if t.ReferenceTokens == 0 {
		return 0, ErrUndefined
	}
	return float64(t.Errors()) / float64(t.ReferenceTokens), nil
}

// Accuracy returns (1 - WER) * 100. It goes negative when errors outnumber
// reference tokens.
func (t Totals) Accuracy() (float64, error) {
	wer, err := t.WER()
	if err != nil {
		return 0, err
	}
	return (1 - wer) * 100, nil
}

// Line is the scored alignment of one prediction line against its
// reference.
type Line struct {
	Index      int
	Prediction string
	Reference  string

	// Normalized forms; equal to the raw text when normalization is off.
	NormPrediction string
	NormReference  string

	Result   align.Result
	Warnings []normalize.Warning
}

// Totals returns the line's counts as single-line totals, for per-line
// rate display.
func (l Line) Totals() Totals {
	return Totals{Counts: l.Result.Counts, Lines: 1}
}

// LineWarning ties a normalization warning to the line that produced it.
type LineWarning struct {
	Line    int
	Warning normalize.Warning
}

// Summary is the outcome of scoring one prediction file against one
// reference file.
type Summary struct {
	Totals       Totals
	Lines        []Line // populated only with Options.KeepLines
	Warnings     []LineWarning
	Normalized   bool
	RulesVersion int // 0 when normalization is off
}

// Pair scores one raw hypothesis string against one reference string,
// whitespace-tokenized, without normalization. Library convenience.
func Pair(reference, hypothesis string) align.Counts {
	return align.Tokens(strings.Fields(reference), strings.Fields(hypothesis)).Counts
}

// ScoreLine scores a single prediction line against its reference.
func ScoreLine(n *normalize.Normalizer, index int, prediction, reference string) Line {
	ln := Line{
		Index:          index,
		Prediction:     prediction,
		Reference:      reference,
		NormPrediction: prediction,
		NormReference:  reference,
	}
	if n != nil {
		var warns []normalize.Warning
		ln.NormPrediction, warns = n.NormalizeWithWarnings(prediction)
		ln.Warnings = append(ln.Warnings, warns...)
		ln.NormReference, warns = n.NormalizeWithWarnings(reference)
		ln.Warnings = append(ln.Warnings, warns...)
	}
	ln.Result = align.Tokens(strings.Fields(ln.NormReference), strings.Fields(ln.NormPrediction))
	return ln
}

// Score scores every line pair and reduces the counts into corpus totals.
// With Workers > 1 lines are scored concurrently; each worker writes only
// its own slice elements and the reduction happens after all of them
// finish, so the result matches the sequential one exactly.
func Score(pair *corpus.Pair, opts Options) *Summary {
	lines := make([]Line, pair.Len())

	score := func(i int) {
		lines[i] = ScoreLine(opts.Normalizer, i, pair.Prediction[i], pair.Reference[i])
	}

	workers := min(opts.Workers, len(lines))
	if workers <= 1 {
		for i := range lines {
			score(i)
		}
	} else {
		indices := make(chan int)
		var wg sync.WaitGroup
		for n := 0; n < workers; n++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range indices {
					score(i)
				}
			}()
		}
		for i := range lines {
			indices <- i
		}
		close(indices)
		wg.Wait()
	}

	summary := &Summary{
		Totals:     Totals{Lines: len(lines)},
		Normalized: opts.Normalizer != nil,
	}
	if opts.Normalizer != nil {
		summary.RulesVersion = opts.Normalizer.RulesVersion()
	}
	for i := range lines {
		summary.Totals.Add(lines[i].Result.Counts)
		for _, w := range lines[i].Warnings {
			summary.Warnings = append(summary.Warnings, LineWarning{Line: i, Warning: w})
		}
	}
	if opts.KeepLines {
		summary.Lines = lines
	}
	return summary
}
