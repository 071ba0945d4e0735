package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ins8ai/wer/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded scoring runs",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		modelFlag   string
		datasetFlag string
		limitFlag   int
		jsonFlag    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), history.ListOptions{
				Model:   modelFlag,
				Dataset: datasetFlag,
				Limit:   limitFlag,
			})
			if err != nil {
				return err
			}

			if jsonFlag {
				return writeJSON(cmd, buildHistoryOutput(runs))
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "History is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderHistoryTable(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&modelFlag, "model", "", "Only show runs for this model")
	cmd.Flags().StringVar(&datasetFlag, "dataset", "", "Only show runs for this dataset")
	cmd.Flags().IntVar(&limitFlag, "limit", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit runs as JSON")

	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d runs\n", removed)
			return nil
		},
	}
}

func renderHistoryTable(runs []history.Run) string {
	columns := []column{
		{header: "ID"},
		{header: "Created"},
		{header: "Model"},
		{header: "Dataset"},
		{header: "WER", right: true},
		{header: "Errors", right: true},
		{header: "Ref Words", right: true},
		{header: "Norm"},
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.CreatedAt.Local().Format("2006-01-02 15:04"),
			run.Model,
			run.Dataset,
			formatRunWER(run),
			strconv.Itoa(run.Errors()),
			formatCount(run.ReferenceTokens),
			yesNo(run.Normalized),
		})
	}
	return renderTable(columns, rows)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatRunWER(run history.Run) string {
	if run.WER == nil {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", *run.WER)
}

type historyRunOutput struct {
	ID              string   `json:"id"`
	CreatedAt       string   `json:"created_at"`
	Model           string   `json:"model"`
	Dataset         string   `json:"dataset,omitempty"`
	Prediction      string   `json:"prediction,omitempty"`
	Reference       string   `json:"reference,omitempty"`
	Lines           int      `json:"lines"`
	WER             *float64 `json:"wer"`
	Substitutions   int      `json:"substitutions"`
	Deletions       int      `json:"deletions"`
	Insertions      int      `json:"insertions"`
	Errors          int      `json:"errors"`
	ReferenceTokens int      `json:"reference_tokens"`
	Normalized      bool     `json:"normalized"`
	RulesVersion    int      `json:"rules_version,omitempty"`
}

func buildHistoryOutput(runs []history.Run) []historyRunOutput {
	out := make([]historyRunOutput, 0, len(runs))
	for _, run := range runs {
		out = append(out, historyRunOutput{
			ID:              run.ID,
			CreatedAt:       run.CreatedAt.Format(time.RFC3339),
			Model:           run.Model,
			Dataset:         run.Dataset,
			Prediction:      run.PredictionPath,
			Reference:       run.ReferencePath,
			Lines:           run.Lines,
			WER:             run.WER,
			Substitutions:   run.Substitutions,
			Deletions:       run.Deletions,
			Insertions:      run.Insertions,
			Errors:          run.Errors(),
			ReferenceTokens: run.ReferenceTokens,
			Normalized:      run.Normalized,
			RulesVersion:    run.RulesVersion,
		})
	}
	return out
}
