package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/ins8ai/wer/internal/align"
	"github.com/ins8ai/wer/internal/scoring"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// renderDiffLine renders one scored line as a merged alignment: matches
// plain, substitutions as [hyp -> ref], deletions as [-ref], insertions
// as [+hyp]. Colors follow the report palette.
func renderDiffLine(line scoring.Line, colorize bool) string {
	var b strings.Builder
	for i, op := range line.Result.Ops {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(renderDiffOp(op, colorize))
	}
	return b.String()
}

func renderDiffOp(op align.Op, colorize bool) string {
	switch op.Kind {
	case align.Substitute:
		return colorText(fmt.Sprintf("[%s -> %s]", op.Hyp, op.Ref), ansiYellow, colorize)
	case align.Delete:
		return colorText("[-"+op.Ref+"]", ansiRed, colorize)
	case align.Insert:
		return colorText("[+"+op.Hyp+"]", ansiGreen, colorize)
	default:
		return op.Ref
	}
}

func colorText(text, color string, colorize bool) string {
	if !colorize || color == "" {
		return text
	}
	return color + text + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
