// Package corpus loads line-aligned transcript files: one utterance per
// line, with line k of a prediction scored against line k of its reference.
package corpus

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrLineCountMismatch reports a prediction and reference whose line counts
// differ. Scoring never guesses at an alignment between the two files.
var ErrLineCountMismatch = errors.New("line counts differ")

// Pair holds the contents of a prediction file and its reference.
type Pair struct {
	PredictionPath string
	ReferencePath  string
	Prediction     []string
	Reference      []string
}

// Len returns the number of line pairs.
func (p *Pair) Len() int {
	return len(p.Reference)
}

// ReadLines reads one transcript file into utterance lines.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits transcript text into utterance lines. CRLF endings are
// accepted, interior blank lines are kept as empty utterances, and a final
// newline does not open a phantom one.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ReadPair loads a prediction file and its reference and verifies they are
// line-aligned. The returned error names both counts when they differ.
func ReadPair(predictionPath, referencePath string) (*Pair, error) {
	prediction, err := ReadLines(predictionPath)
	if err != nil {
		return nil, err
	}
	reference, err := ReadLines(referencePath)
	if err != nil {
		return nil, err
	}
	if len(prediction) != len(reference) {
		return nil, fmt.Errorf("%s has %d lines, %s has %d: %w",
			predictionPath, len(prediction), referencePath, len(reference), ErrLineCountMismatch)
	}
	return &Pair{
		PredictionPath: predictionPath,
		ReferencePath:  referencePath,
		Prediction:     prediction,
		Reference:      reference,
	}, nil
}
