package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"time"

	"github.com/ins8ai/wer/internal/align"
	"github.com/ins8ai/wer/internal/scoring"
)

//go:embed report.tmpl
var reportTemplate string

var reportTmpl = template.Must(template.New("report").Parse(reportTemplate))

// Meta identifies the run a report describes. Zero-value fields are left
// out of the rendered header.
type Meta struct {
	Model       string
	Dataset     string
	Prediction  string
	Reference   string
	GeneratedAt time.Time
	Normalized  bool
}

// Word is one aligned token with its error class: "match", "sub", "del",
// or "ins". Ref is empty for insertions and Hyp is empty for deletions.
type Word struct {
	Kind string
	Ref  string
	Hyp  string
}

// Segment is the aligned view of one line pair.
type Segment struct {
	Index int // 1-based, matching the input file
	Words []Word
}

// SubExample groups identical substitutions with how often they occurred.
type SubExample struct {
	Hyp   string
	Ref   string
	Count int
}

// WordCount groups identical deleted or inserted words.
type WordCount struct {
	Word  string
	Count int
}

// Data is the assembled template input.
type Data struct {
	Meta            Meta
	WER             string // formatted percentage, or "undefined"
	Accuracy        string
	ReferenceTokens int
	Errors          int
	Substitutions   int
	Deletions       int
	Insertions      int
	Lines           int
	Segments        []Segment
	SubExamples     []SubExample
	DelExamples     []WordCount
	InsExamples     []WordCount
}

// Build assembles template data from a scored summary. Segments and error
// examples appear only when the summary kept per-line alignments.
func Build(summary *scoring.Summary, meta Meta) Data {
	data := Data{
		Meta:            meta,
		WER:             "undefined",
		Accuracy:        "undefined",
		ReferenceTokens: summary.Totals.ReferenceTokens,
		Errors:          summary.Totals.Errors(),
		Substitutions:   summary.Totals.Substitutions,
		Deletions:       summary.Totals.Deletions,
		Insertions:      summary.Totals.Insertions,
		Lines:           summary.Totals.Lines,
	}
	if wer, err := summary.Totals.WER(); err == nil {
		accuracy, _ := summary.Totals.Accuracy()
		data.WER = fmt.Sprintf("%.1f%%", wer*100)
		data.Accuracy = fmt.Sprintf("%.1f%%", accuracy)
	}

	subs := make(map[[2]string]int)
	dels := make(map[string]int)
	inses := make(map[string]int)
	for _, line := range summary.Lines {
		segment := Segment{Index: line.Index + 1, Words: make([]Word, 0, len(line.Result.Ops))}
		for _, op := range line.Result.Ops {
			segment.Words = append(segment.Words, Word{Kind: op.Kind.String(), Ref: op.Ref, Hyp: op.Hyp})
			switch op.Kind {
			case align.Substitute:
				subs[[2]string{op.Hyp, op.Ref}]++
			case align.Delete:
				dels[op.Ref]++
			case align.Insert:
				inses[op.Hyp]++
			}
		}
		data.Segments = append(data.Segments, segment)
	}

	data.SubExamples = groupSubs(subs)
	data.DelExamples = groupWords(dels)
	data.InsExamples = groupWords(inses)
	return data
}

// WriteHTML renders the report to w.
func WriteHTML(w io.Writer, data Data) error {
	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// WriteFile renders the report to path.
func WriteFile(path string, data Data) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if err := WriteHTML(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// groupSubs orders grouped substitutions most frequent first, then
// alphabetically so output is stable.
func groupSubs(counts map[[2]string]int) []SubExample {
	if len(counts) == 0 {
		return nil
	}
	examples := make([]SubExample, 0, len(counts))
	for pair, count := range counts {
		examples = append(examples, SubExample{Hyp: pair[0], Ref: pair[1], Count: count})
	}
	sort.Slice(examples, func(i, j int) bool {
		if examples[i].Count != examples[j].Count {
			return examples[i].Count > examples[j].Count
		}
		if examples[i].Hyp != examples[j].Hyp {
			return examples[i].Hyp < examples[j].Hyp
		}
		return examples[i].Ref < examples[j].Ref
	})
	return examples
}

func groupWords(counts map[string]int) []WordCount {
	if len(counts) == 0 {
		return nil
	}
	words := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		words = append(words, WordCount{Word: word, Count: count})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	return words
}
