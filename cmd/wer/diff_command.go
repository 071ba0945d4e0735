package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ins8ai/wer/internal/corpus"
	"github.com/ins8ai/wer/internal/scoring"
)

func newDiffCommand(ctx *commandContext) *cobra.Command {
	var (
		normalizeFlag bool
		contextFlag   int
		workersFlag   int
	)

	cmd := &cobra.Command{
		Use:   "diff PREDICTION REFERENCE",
		Short: "Show word-level alignments for lines that differ",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			pair, err := corpus.ReadPair(args[0], args[1])
			if err != nil {
				return err
			}

			opts := scoring.Options{
				Workers:   effectiveWorkers(workersFlag, cfg),
				KeepLines: true,
			}
			if normalizeEnabled(cmd, cfg, normalizeFlag) {
				opts.Normalizer, err = newNormalizer(cfg)
				if err != nil {
					return err
				}
			}

			summary := scoring.Score(pair, opts)
			logWarnings(ctx.componentLogger("diff"), summary)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			differing := 0
			for _, line := range summary.Lines {
				if line.Result.Errors() > 0 {
					differing++
				}
			}
			if differing == 0 {
				fmt.Fprintln(out, "No differences.")
				return nil
			}

			previous := -2
			for _, idx := range visibleLines(summary.Lines, contextFlag) {
				if previous >= 0 && idx > previous+1 {
					fmt.Fprintln(out, "  ...")
				}
				line := summary.Lines[idx]
				counts := line.Result.Counts
				if counts.Errors() > 0 {
					fmt.Fprintf(out, "line %d  WER %s  (%d sub, %d del, %d ins)\n",
						idx+1, formatWER(line.Totals()),
						counts.Substitutions, counts.Deletions, counts.Insertions)
				} else {
					fmt.Fprintf(out, "line %d  ok\n", idx+1)
				}
				fmt.Fprintf(out, "  %s\n", renderDiffLine(line, colorize))
				previous = idx
			}

			fmt.Fprintf(out, "\n%d of %d lines differ; corpus WER %s\n",
				differing, len(summary.Lines), formatWER(summary.Totals))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&normalizeFlag, "normalize", "n", true, "Normalize text before aligning (default from config)")
	cmd.Flags().IntVar(&contextFlag, "context", 0, "Also show N matching lines around each differing one")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Lines scored concurrently (default from config, then CPU count)")

	return cmd
}

// visibleLines selects the indices to print: every line with errors plus
// context matching lines on each side, in order and without duplicates.
func visibleLines(lines []scoring.Line, context int) []int {
	if context < 0 {
		context = 0
	}
	show := make(map[int]bool)
	for i, line := range lines {
		if line.Result.Errors() == 0 {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			show[j] = true
		}
	}
	visible := make([]int, 0, len(show))
	for i := range lines {
		if show[i] {
			visible = append(visible, i)
		}
	}
	return visible
}
