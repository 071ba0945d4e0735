package scoring

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/ins8ai/wer/internal/corpus"
	"github.com/ins8ai/wer/internal/normalize"
)

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScoreSingleLine(t *testing.T) {
	pair := &corpus.Pair{
		Prediction: []string{"the cat sit on mat"},
		Reference:  []string{"the cat sat on the mat"},
	}
	s := Score(pair, Options{})

	c := s.Totals.Counts
	if c.Substitutions != 1 || c.Deletions != 1 || c.Insertions != 0 || c.ReferenceTokens != 6 {
		t.Fatalf("counts = %+v", c)
	}
	wer, err := s.Totals.WER()
	if err != nil {
		t.Fatalf("WER: %v", err)
	}
	approx(t, wer, 2.0/6.0)
	acc, err := s.Totals.Accuracy()
	if err != nil {
		t.Fatalf("Accuracy: %v", err)
	}
	approx(t, acc, (1-2.0/6.0)*100)
}

func TestScoreAggregatesAcrossLines(t *testing.T) {
	// Line 1: one substitution over four tokens. Line 2: one deletion and
	// one insertion over three. Corpus rate is 3/7, not the mean of 1/4
	// and 2/3.
	pair := &corpus.Pair{
		Prediction: []string{"a b c x", "f g h"},
		Reference:  []string{"a b c d", "e f g"},
	}
	s := Score(pair, Options{})

	c := s.Totals.Counts
	if c.Substitutions != 1 || c.Deletions != 1 || c.Insertions != 1 || c.ReferenceTokens != 7 {
		t.Fatalf("counts = %+v", c)
	}
	wer, err := s.Totals.WER()
	if err != nil {
		t.Fatalf("WER: %v", err)
	}
	approx(t, wer, 3.0/7.0)
	if s.Totals.Lines != 2 {
		t.Errorf("Lines = %d, want 2", s.Totals.Lines)
	}
}

func TestScoreUndefined(t *testing.T) {
	pair := &corpus.Pair{
		Prediction: []string{"x y"},
		Reference:  []string{""},
	}
	s := Score(pair, Options{})

	if s.Totals.Insertions != 2 || s.Totals.ReferenceTokens != 0 {
		t.Fatalf("counts = %+v", s.Totals.Counts)
	}
	if _, err := s.Totals.WER(); !errors.Is(err, ErrUndefined) {
		t.Fatalf("WER error = %v, want ErrUndefined", err)
	}
	if _, err := s.Totals.Accuracy(); !errors.Is(err, ErrUndefined) {
		t.Fatalf("Accuracy error = %v, want ErrUndefined", err)
	}
}

func TestScoreExceedsOne(t *testing.T) {
	pair := &corpus.Pair{
		Prediction: []string{"x y z"},
		Reference:  []string{"a"},
	}
	s := Score(pair, Options{})

	wer, err := s.Totals.WER()
	if err != nil {
		t.Fatalf("WER: %v", err)
	}
	approx(t, wer, 3.0)
	acc, err := s.Totals.Accuracy()
	if err != nil {
		t.Fatalf("Accuracy: %v", err)
	}
	approx(t, acc, -200)
}

func TestScoreNormalized(t *testing.T) {
	pair := &corpus.Pair{
		Prediction: []string{"color 3rd place"},
		Reference:  []string{"Colour: 3rd place!!"},
	}
	s := Score(pair, Options{Normalizer: normalize.New(nil)})

	if s.Totals.Errors() != 0 {
		t.Fatalf("errors = %d, want 0 after normalization", s.Totals.Errors())
	}
	if !s.Normalized || s.RulesVersion != normalize.RulesVersion {
		t.Errorf("Normalized = %v, RulesVersion = %d", s.Normalized, s.RulesVersion)
	}
}

func TestScoreRawKeepsCase(t *testing.T) {
	pair := &corpus.Pair{
		Prediction: []string{"Hello world"},
		Reference:  []string{"hello world"},
	}
	s := Score(pair, Options{})

	if s.Totals.Substitutions != 1 {
		t.Fatalf("substitutions = %d, want 1 without normalization", s.Totals.Substitutions)
	}
	if s.Normalized || s.RulesVersion != 0 {
		t.Errorf("Normalized = %v, RulesVersion = %d", s.Normalized, s.RulesVersion)
	}
}

func TestScoreKeepLines(t *testing.T) {
	pair := &corpus.Pair{
		Prediction: []string{"the cat sit on mat"},
		Reference:  []string{"the cat sat on the mat"},
	}
	s := Score(pair, Options{Normalizer: normalize.New(nil), KeepLines: true})

	if len(s.Lines) != 1 {
		t.Fatalf("Lines kept = %d, want 1", len(s.Lines))
	}
	ln := s.Lines[0]
	if ln.NormReference != "the cat sat on the mat" || len(ln.Result.Ops) == 0 {
		t.Errorf("line detail missing: %+v", ln)
	}
	wer, err := ln.Totals().WER()
	if err != nil {
		t.Fatalf("line WER: %v", err)
	}
	approx(t, wer, 2.0/6.0)
}

func TestScoreCollectsWarnings(t *testing.T) {
	pair := &corpus.Pair{
		Prediction: []string{"fine", "a [cut"},
		Reference:  []string{"fine", "a cut"},
	}
	s := Score(pair, Options{Normalizer: normalize.New(nil)})

	if len(s.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", s.Warnings)
	}
	if s.Warnings[0].Line != 1 || s.Warnings[0].Warning.Kind != normalize.WarnUnbalancedSpan {
		t.Errorf("warning = %+v", s.Warnings[0])
	}
}

func TestScoreParallelMatchesSequential(t *testing.T) {
	var pred, ref []string
	for i := 0; i < 64; i++ {
		ref = append(ref, fmt.Sprintf("line %d has some words to say", i))
		switch i % 4 {
		case 0:
			pred = append(pred, fmt.Sprintf("line %d has some words to say", i))
		case 1:
			pred = append(pred, fmt.Sprintf("line %d has sum words to say", i))
		case 2:
			pred = append(pred, fmt.Sprintf("line %d has words to say", i))
		default:
			pred = append(pred, fmt.Sprintf("line %d has some more words to say indeed", i))
		}
	}
	pair := &corpus.Pair{Prediction: pred, Reference: ref}

	sequential := Score(pair, Options{Normalizer: normalize.New(nil), KeepLines: true, Workers: 1})
	parallel := Score(pair, Options{Normalizer: normalize.New(nil), KeepLines: true, Workers: 8})

	if !reflect.DeepEqual(sequential, parallel) {
		t.Fatalf("parallel result differs from sequential:\n%+v\n%+v", sequential.Totals, parallel.Totals)
	}
}

func TestScoreEmptyCorpus(t *testing.T) {
	s := Score(&corpus.Pair{}, Options{Workers: 4})
	if s.Totals.Lines != 0 {
		t.Fatalf("Lines = %d, want 0", s.Totals.Lines)
	}
	if _, err := s.Totals.WER(); !errors.Is(err, ErrUndefined) {
		t.Fatalf("WER error = %v, want ErrUndefined", err)
	}
}
