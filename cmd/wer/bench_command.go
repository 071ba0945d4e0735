package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ins8ai/wer/internal/corpus"
	"github.com/ins8ai/wer/internal/logging"
	"github.com/ins8ai/wer/internal/scoring"
)

func newBenchCommand(ctx *commandContext) *cobra.Command {
	var (
		normalizeFlag bool
		jsonFlag      bool
		saveFlag      bool
		datasetFlag   string
		workersFlag   int
		modelFlags    []string
	)

	cmd := &cobra.Command{
		Use:   "bench REFERENCE [PREDICTION...]",
		Short: "Rank multiple model outputs against one reference",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.componentLogger("bench")

			referencePath := args[0]
			entries, err := benchEntries(args[1:], modelFlags)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return errors.New("nothing to benchmark: pass prediction files or --model name=path")
			}

			opts := scoring.Options{Workers: effectiveWorkers(workersFlag, cfg)}
			if normalizeEnabled(cmd, cfg, normalizeFlag) {
				opts.Normalizer, err = newNormalizer(cfg)
				if err != nil {
					return err
				}
			}

			results := make([]benchResult, 0, len(entries))
			for _, entry := range entries {
				pair, err := corpus.ReadPair(entry.path, referencePath)
				if err != nil {
					return fmt.Errorf("%s: %w", entry.name, err)
				}
				summary := scoring.Score(pair, opts)
				if n := len(summary.Warnings); n > 0 {
					logger.Warn("normalization warnings",
						logging.String("model", entry.name),
						logging.Int("count", n))
				}
				results = append(results, benchResult{name: entry.name, pair: pair, summary: summary})
			}
			rankResults(results)

			if saveFlag {
				store, err := ctx.openHistory()
				if err != nil {
					return err
				}
				defer store.Close()
				for _, result := range results {
					run, err := recordRun(cmd.Context(), store, result.name, datasetFlag, result.pair, result.summary)
					if err != nil {
						return err
					}
					logger.Info("recorded run",
						logging.String("id", run.ID),
						logging.String("model", run.Model))
				}
			}

			if jsonFlag {
				return writeJSON(cmd, buildBenchOutput(referencePath, datasetFlag, results))
			}
			renderBenchTable(cmd, referencePath, results)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&normalizeFlag, "normalize", "n", true, "Normalize text before scoring (default from config)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit results as JSON")
	cmd.Flags().BoolVar(&saveFlag, "save", false, "Record every run in history")
	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Dataset label for history")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Lines scored concurrently (default from config, then CPU count)")
	cmd.Flags().StringArrayVar(&modelFlags, "model", nil, "Add a named prediction as name=path (repeatable)")

	return cmd
}

type benchEntry struct {
	name string
	path string
}

type benchResult struct {
	name    string
	pair    *corpus.Pair
	summary *scoring.Summary
}

// benchEntries merges positional prediction paths with --model name=path
// pairs. Names must be unique or rows in the ranking would be ambiguous.
func benchEntries(paths, modelFlags []string) ([]benchEntry, error) {
	entries := make([]benchEntry, 0, len(paths)+len(modelFlags))
	seen := make(map[string]string, len(paths)+len(modelFlags))

	add := func(name, path string) error {
		if previous, ok := seen[name]; ok {
			return fmt.Errorf("model name %q used for both %s and %s", name, previous, path)
		}
		seen[name] = path
		entries = append(entries, benchEntry{name: name, path: path})
		return nil
	}

	for _, path := range paths {
		if err := add(modelName(path), path); err != nil {
			return nil, err
		}
	}
	for _, flag := range modelFlags {
		name, path, ok := strings.Cut(flag, "=")
		name = strings.TrimSpace(name)
		path = strings.TrimSpace(path)
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --model %q: expected name=path", flag)
		}
		if err := add(name, path); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// rankResults orders results best first: defined rates before undefined
// ones, lower rates first, ties broken by model name.
func rankResults(results []benchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ri, errI := results[i].summary.Totals.WER()
		rj, errJ := results[j].summary.Totals.WER()
		if (errI == nil) != (errJ == nil) {
			return errI == nil
		}
		if errI == nil && ri != rj {
			return ri < rj
		}
		return results[i].name < results[j].name
	})
}

func renderBenchTable(cmd *cobra.Command, referencePath string, results []benchResult) {
	out := cmd.OutOrStdout()
	totals := results[0].summary.Totals
	fmt.Fprintf(out, "Reference: %s (%s lines, %s words)\n",
		referencePath, formatCount(totals.Lines), formatCount(totals.ReferenceTokens))

	columns := []column{
		{header: "Rank", right: true},
		{header: "Model"},
		{header: "WER", right: true},
		{header: "Accuracy", right: true},
		{header: "Errors", right: true},
		{header: "Sub", right: true},
		{header: "Del", right: true},
		{header: "Ins", right: true},
	}
	rows := make([][]string, 0, len(results))
	for i, result := range results {
		totals := result.summary.Totals
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			result.name,
			formatWER(totals),
			formatAccuracy(totals),
			strconv.Itoa(totals.Errors()),
			strconv.Itoa(totals.Substitutions),
			strconv.Itoa(totals.Deletions),
			strconv.Itoa(totals.Insertions),
		})
	}
	fmt.Fprintln(out, renderTable(columns, rows))
}

type benchModelOutput struct {
	Rank            int      `json:"rank"`
	Model           string   `json:"model"`
	Prediction      string   `json:"prediction"`
	WER             *float64 `json:"wer"`
	Accuracy        *float64 `json:"accuracy"`
	Errors          int      `json:"errors"`
	Substitutions   int      `json:"substitutions"`
	Deletions       int      `json:"deletions"`
	Insertions      int      `json:"insertions"`
	ReferenceTokens int      `json:"reference_tokens"`
}

type benchOutput struct {
	Reference       string             `json:"reference"`
	Dataset         string             `json:"dataset,omitempty"`
	Lines           int                `json:"lines"`
	ReferenceTokens int                `json:"reference_tokens"`
	Normalized      bool               `json:"normalized"`
	Models          []benchModelOutput `json:"models"`
}

func buildBenchOutput(referencePath, dataset string, results []benchResult) benchOutput {
	first := results[0].summary
	out := benchOutput{
		Reference:       referencePath,
		Dataset:         strings.TrimSpace(dataset),
		Lines:           first.Totals.Lines,
		ReferenceTokens: first.Totals.ReferenceTokens,
		Normalized:      first.Normalized,
	}
	for i, result := range results {
		totals := result.summary.Totals
		out.Models = append(out.Models, benchModelOutput{
			Rank:            i + 1,
			Model:           result.name,
			Prediction:      result.pair.PredictionPath,
			WER:             werPointer(totals),
			Accuracy:        accuracyPointer(totals),
			Errors:          totals.Errors(),
			Substitutions:   totals.Substitutions,
			Deletions:       totals.Deletions,
			Insertions:      totals.Insertions,
			ReferenceTokens: totals.ReferenceTokens,
		})
	}
	return out
}
