package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ins8ai/wer/internal/corpus"
	"github.com/ins8ai/wer/internal/history"
	"github.com/ins8ai/wer/internal/logging"
	"github.com/ins8ai/wer/internal/report"
	"github.com/ins8ai/wer/internal/scoring"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var (
		normalizeFlag bool
		perLineFlag   bool
		jsonFlag      bool
		htmlPath      string
		saveFlag      bool
		modelFlag     string
		datasetFlag   string
		workersFlag   int
	)

	cmd := &cobra.Command{
		Use:   "score PREDICTION REFERENCE",
		Short: "Score one prediction transcript against its reference",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.componentLogger("score")

			pair, err := corpus.ReadPair(args[0], args[1])
			if err != nil {
				return err
			}

			model := strings.TrimSpace(modelFlag)
			if model == "" {
				model = modelName(pair.PredictionPath)
			}

			opts := scoring.Options{
				Workers:   effectiveWorkers(workersFlag, cfg),
				KeepLines: perLineFlag || htmlPath != "",
			}
			if normalizeEnabled(cmd, cfg, normalizeFlag) {
				opts.Normalizer, err = newNormalizer(cfg)
				if err != nil {
					return err
				}
			}

			summary := scoring.Score(pair, opts)
			logWarnings(logger, summary)

			if htmlPath != "" {
				data := report.Build(summary, report.Meta{
					Model:       model,
					Dataset:     strings.TrimSpace(datasetFlag),
					Prediction:  pair.PredictionPath,
					Reference:   pair.ReferencePath,
					GeneratedAt: time.Now(),
					Normalized:  summary.Normalized,
				})
				if err := report.WriteFile(htmlPath, data); err != nil {
					return err
				}
				logger.Info("wrote diagnosis report", logging.String("path", htmlPath))
			}

			if saveFlag {
				store, err := ctx.openHistory()
				if err != nil {
					return err
				}
				defer store.Close()
				run, err := recordRun(cmd.Context(), store, model, datasetFlag, pair, summary)
				if err != nil {
					return err
				}
				logger.Info("recorded run",
					logging.String("id", run.ID),
					logging.String("model", run.Model))
			}

			if jsonFlag {
				return writeJSON(cmd, buildScoreOutput(summary, perLineFlag))
			}
			renderScoreText(cmd, summary, perLineFlag)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&normalizeFlag, "normalize", "n", true, "Normalize text before scoring (default from config)")
	cmd.Flags().BoolVar(&perLineFlag, "per-line", false, "Show a per-line breakdown")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit results as JSON")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Write an HTML diagnosis report to FILE")
	cmd.Flags().BoolVar(&saveFlag, "save", false, "Record the run in history")
	cmd.Flags().StringVar(&modelFlag, "model", "", "Model name for reports and history (default: prediction file name)")
	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Dataset label for reports and history")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Lines scored concurrently (default from config, then CPU count)")

	return cmd
}

func logWarnings(logger *slog.Logger, summary *scoring.Summary) {
	for _, w := range summary.Warnings {
		logger.Warn("normalization warning",
			logging.Int("line", w.Line+1),
			logging.String("kind", w.Warning.Kind.String()),
			logging.String("detail", w.Warning.Detail))
	}
}

func recordRun(ctx context.Context, store *history.Store, model, dataset string, pair *corpus.Pair, summary *scoring.Summary) (*history.Run, error) {
	return store.Record(ctx, history.Run{
		Model:           model,
		Dataset:         strings.TrimSpace(dataset),
		PredictionPath:  pair.PredictionPath,
		ReferencePath:   pair.ReferencePath,
		Lines:           summary.Totals.Lines,
		Substitutions:   summary.Totals.Substitutions,
		Deletions:       summary.Totals.Deletions,
		Insertions:      summary.Totals.Insertions,
		ReferenceTokens: summary.Totals.ReferenceTokens,
		Normalized:      summary.Normalized,
		RulesVersion:    summary.RulesVersion,
	})
}

func renderScoreText(cmd *cobra.Command, summary *scoring.Summary, perLine bool) {
	out := cmd.OutOrStdout()
	totals := summary.Totals

	writeRow := func(label, value string) {
		fmt.Fprintf(out, "%-16s %s\n", label, value)
	}

	if wer, err := totals.WER(); err == nil {
		writeRow("Word Error Rate", fmt.Sprintf("%.4f (%.1f%%)", wer, wer*100))
		writeRow("Accuracy", formatAccuracy(totals))
	} else {
		writeRow("Word Error Rate", "undefined (reference has no tokens)")
		writeRow("Accuracy", "undefined")
	}
	writeRow("Errors", fmt.Sprintf("%s (sub %d, del %d, ins %d)",
		formatCount(totals.Errors()), totals.Substitutions, totals.Deletions, totals.Insertions))
	writeRow("Reference words", formatCount(totals.ReferenceTokens))
	writeRow("Lines", formatCount(totals.Lines))
	writeRow("Normalization", describeNormalization(summary))
	if len(summary.Warnings) > 0 {
		writeRow("Warnings", fmt.Sprintf("%d (see log)", len(summary.Warnings)))
	}

	if perLine && len(summary.Lines) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderPerLineTable(summary.Lines))
	}
}

func describeNormalization(summary *scoring.Summary) string {
	if !summary.Normalized {
		return "off"
	}
	return fmt.Sprintf("on (rules v%d)", summary.RulesVersion)
}

func renderPerLineTable(lines []scoring.Line) string {
	columns := []column{
		{header: "Line", right: true},
		{header: "WER", right: true},
		{header: "Sub", right: true},
		{header: "Del", right: true},
		{header: "Ins", right: true},
		{header: "Ref Words", right: true},
	}
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		counts := line.Result.Counts
		rows = append(rows, []string{
			strconv.Itoa(line.Index + 1),
			formatWER(line.Totals()),
			strconv.Itoa(counts.Substitutions),
			strconv.Itoa(counts.Deletions),
			strconv.Itoa(counts.Insertions),
			strconv.Itoa(counts.ReferenceTokens),
		})
	}
	return renderTable(columns, rows)
}

type warningOutput struct {
	Line   int    `json:"line"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

type lineOutput struct {
	Line            int      `json:"line"`
	WER             *float64 `json:"wer"`
	Substitutions   int      `json:"substitutions"`
	Deletions       int      `json:"deletions"`
	Insertions      int      `json:"insertions"`
	ReferenceTokens int      `json:"reference_tokens"`
}

type scoreOutput struct {
	WER             *float64        `json:"wer"`
	Accuracy        *float64        `json:"accuracy"`
	Substitutions   int             `json:"substitutions"`
	Deletions       int             `json:"deletions"`
	Insertions      int             `json:"insertions"`
	Errors          int             `json:"errors"`
	ReferenceTokens int             `json:"reference_tokens"`
	Lines           int             `json:"lines"`
	Normalized      bool            `json:"normalized"`
	RulesVersion    int             `json:"rules_version,omitempty"`
	Warnings        []warningOutput `json:"warnings,omitempty"`
	PerLine         []lineOutput    `json:"per_line,omitempty"`
}

func buildScoreOutput(summary *scoring.Summary, perLine bool) scoreOutput {
	totals := summary.Totals
	out := scoreOutput{
		WER:             werPointer(totals),
		Accuracy:        accuracyPointer(totals),
		Substitutions:   totals.Substitutions,
		Deletions:       totals.Deletions,
		Insertions:      totals.Insertions,
		Errors:          totals.Errors(),
		ReferenceTokens: totals.ReferenceTokens,
		Lines:           totals.Lines,
		Normalized:      summary.Normalized,
		RulesVersion:    summary.RulesVersion,
	}
	for _, w := range summary.Warnings {
		out.Warnings = append(out.Warnings, warningOutput{
			Line:   w.Line + 1,
			Kind:   w.Warning.Kind.String(),
			Detail: w.Warning.Detail,
		})
	}
	if perLine {
		for _, line := range summary.Lines {
			counts := line.Result.Counts
			out.PerLine = append(out.PerLine, lineOutput{
				Line:            line.Index + 1,
				WER:             werPointer(line.Totals()),
				Substitutions:   counts.Substitutions,
				Deletions:       counts.Deletions,
				Insertions:      counts.Insertions,
				ReferenceTokens: counts.ReferenceTokens,
			})
		}
	}
	return out
}
