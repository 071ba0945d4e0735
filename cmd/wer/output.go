package main

import (
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ins8ai/wer/internal/scoring"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatCount renders token counts with digit grouping; corpora run to
// hundreds of thousands of words.
func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

// formatWER renders the rate as a bare ratio, or "undefined" when the
// reference had no tokens.
func formatWER(totals scoring.Totals) string {
	wer, err := totals.WER()
	if err != nil {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", wer)
}

func formatAccuracy(totals scoring.Totals) string {
	accuracy, err := totals.Accuracy()
	if err != nil {
		return "undefined"
	}
	return fmt.Sprintf("%.1f%%", accuracy)
}

// werPointer returns the rate for JSON output, nil when undefined. JSON
// null is easier on consumers than a sentinel number.
func werPointer(totals scoring.Totals) *float64 {
	wer, err := totals.WER()
	if err != nil {
		return nil
	}
	return &wer
}

func accuracyPointer(totals scoring.Totals) *float64 {
	accuracy, err := totals.Accuracy()
	if err != nil {
		return nil
	}
	return &accuracy
}
