package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ins8ai/wer/internal/corpus"
	"github.com/ins8ai/wer/internal/logging"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var rulesFlag string

	cmd := &cobra.Command{
		Use:   "normalize [FILE]",
		Short: "Print transcript lines after canonicalization",
		Long: "Normalize runs the scoring canonicalization over a transcript and " +
			"prints the result, one line per input line. Reads stdin when no file " +
			"is given. Useful for checking what the scorer actually compares.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.componentLogger("normalize")

			// Copy before applying the flag so the shared config stays
			// untouched for other commands in this process.
			effective := *cfg
			if rulesFlag != "" {
				effective.Normalize.RulesFile = rulesFlag
			}
			normalizer, err := newNormalizer(&effective)
			if err != nil {
				return err
			}

			var lines []string
			if len(args) == 1 {
				lines, err = corpus.ReadLines(args[0])
			} else {
				lines, err = readLines(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, line := range lines {
				normalized, warnings := normalizer.NormalizeWithWarnings(line)
				for _, w := range warnings {
					logger.Warn("normalization warning",
						logging.Int("line", i+1),
						logging.String("kind", w.Kind.String()),
						logging.String("detail", w.Detail))
				}
				fmt.Fprintln(out, normalized)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesFlag, "rules", "", "Rule asset to apply instead of the configured one")

	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return lines, nil
}
