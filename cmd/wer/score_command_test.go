package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ins8ai/wer/internal/corpus"
	"github.com/ins8ai/wer/internal/history"
	"github.com/ins8ai/wer/internal/testsupport"
)

func TestScoreCommandText(t *testing.T) {
	env := setupCLITestEnv(t)
	pred := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "pred.txt"),
		"the cat sit on mat",
		"a big dog",
	)
	ref := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "ref.txt"),
		"the cat sat on the mat",
		"a big dog",
	)

	stdout, _, err := runCLI(t, []string{"score", pred, ref}, env.configPath)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	requireContains(t, stdout, "Word Error Rate  0.2222 (22.2%)")
	requireContains(t, stdout, "77.8%")
	requireContains(t, stdout, "2 (sub 1, del 1, ins 0)")
	requireContains(t, stdout, "Reference words  9")
	requireContains(t, stdout, "on (rules v1)")
}

func TestScoreCommandPerLine(t *testing.T) {
	env := setupCLITestEnv(t)
	pred := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "pred.txt"),
		"the cat sit on mat",
		"a big dog",
	)
	ref := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "ref.txt"),
		"the cat sat on the mat",
		"a big dog",
	)

	stdout, _, err := runCLI(t, []string{"score", pred, ref, "--per-line"}, env.configPath)
	if err != nil {
		t.Fatalf("score --per-line: %v", err)
	}
	requireContains(t, stdout, "Line")
	requireContains(t, stdout, "0.3333")
	requireContains(t, stdout, "0.0000")
}

func TestScoreCommandNormalizeFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	pred := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "pred.txt"),
		"Colour: 3rd place!!",
	)
	ref := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "ref.txt"),
		"color 3rd place",
	)

	stdout, _, err := runCLI(t, []string{"score", pred, ref}, env.configPath)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	requireContains(t, stdout, "0.0000")

	stdout, _, err = runCLI(t, []string{"score", pred, ref, "--normalize=false"}, env.configPath)
	if err != nil {
		t.Fatalf("score --normalize=false: %v", err)
	}
	requireContains(t, stdout, "0.6667")
	requireContains(t, stdout, "Normalization    off")
}

func TestScoreCommandJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	pred := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "pred.txt"),
		"the cat sit on mat",
		"a big dog",
	)
	ref := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "ref.txt"),
		"the cat sat on the mat",
		"a big dog",
	)

	stdout, _, err := runCLI(t, []string{"score", pred, ref, "--json", "--per-line"}, env.configPath)
	if err != nil {
		t.Fatalf("score --json: %v", err)
	}

	var out struct {
		WER             *float64 `json:"wer"`
		Accuracy        *float64 `json:"accuracy"`
		Errors          int      `json:"errors"`
		ReferenceTokens int      `json:"reference_tokens"`
		Lines           int      `json:"lines"`
		Normalized      bool     `json:"normalized"`
		PerLine         []struct {
			Line int      `json:"line"`
			WER  *float64 `json:"wer"`
		} `json:"per_line"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if out.WER == nil || *out.WER < 0.22 || *out.WER > 0.23 {
		t.Fatalf("unexpected wer: %v", out.WER)
	}
	if out.Errors != 2 || out.ReferenceTokens != 9 || out.Lines != 2 {
		t.Fatalf("unexpected counts: %+v", out)
	}
	if !out.Normalized {
		t.Fatal("expected normalized output")
	}
	if len(out.PerLine) != 2 || out.PerLine[0].Line != 1 {
		t.Fatalf("unexpected per-line records: %+v", out.PerLine)
	}
}

func TestScoreCommandMismatchFailsBeforeOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	pred := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "pred.txt"),
		"one line",
		"two lines",
	)
	ref := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "ref.txt"),
		"one line",
	)

	stdout, _, err := runCLI(t, []string{"score", pred, ref}, env.configPath)
	if err == nil {
		t.Fatal("expected line count mismatch error")
	}
	if !errors.Is(err, corpus.ErrLineCountMismatch) {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "" {
		t.Fatalf("expected no output before failure, got %q", stdout)
	}
}

func TestScoreCommandSaveRecordsRun(t *testing.T) {
	env := setupCLITestEnv(t)
	pred := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "pred.txt"),
		"the cat sit on mat",
	)
	ref := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "ref.txt"),
		"the cat sat on the mat",
	)

	_, _, err := runCLI(t, []string{"score", pred, ref, "--save", "--model", "base", "--dataset", "dev-clean"}, env.configPath)
	if err != nil {
		t.Fatalf("score --save: %v", err)
	}

	store := testsupport.MustOpenStore(t, env.cfg)
	runs, err := store.List(context.Background(), history.ListOptions{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	run := runs[0]
	if run.Model != "base" || run.Dataset != "dev-clean" {
		t.Fatalf("unexpected run labels: %+v", run)
	}
	if run.ReferenceTokens != 6 || run.Errors() != 2 {
		t.Fatalf("unexpected run counts: %+v", run)
	}
	if !run.Normalized {
		t.Fatal("expected normalized run")
	}
}

func TestScoreCommandWritesHTMLReport(t *testing.T) {
	env := setupCLITestEnv(t)
	pred := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "pred.txt"),
		"the cat sit on mat",
		"a big dog",
	)
	ref := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "ref.txt"),
		"the cat sat on the mat",
		"a big dog",
	)
	htmlPath := filepath.Join(env.baseDir, "report.html")

	_, _, err := runCLI(t, []string{"score", pred, ref, "--html", htmlPath}, env.configPath)
	if err != nil {
		t.Fatalf("score --html: %v", err)
	}

	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	html := string(data)
	if !strings.HasPrefix(html, "<!DOCTYPE html>") {
		t.Fatalf("report does not start with doctype: %q", html[:min(len(html), 40)])
	}
	requireContains(t, html, "22.2%")
	requireContains(t, html, "Aligned Segments")
}

func TestScoreCommandUndefined(t *testing.T) {
	env := setupCLITestEnv(t)
	pred := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "pred.txt"),
		"hello hello",
	)
	ref := testsupport.WriteTranscript(t, filepath.Join(env.baseDir, "ref.txt"),
		"",
	)

	stdout, _, err := runCLI(t, []string{"score", pred, ref}, env.configPath)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	requireContains(t, stdout, "undefined (reference has no tokens)")

	stdout, _, err = runCLI(t, []string{"score", pred, ref, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("score --json: %v", err)
	}
	var out struct {
		WER      *float64 `json:"wer"`
		Accuracy *float64 `json:"accuracy"`
		Errors   int      `json:"errors"`
	}
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode output: %v\n%s", err, stdout)
	}
	if out.WER != nil || out.Accuracy != nil {
		t.Fatalf("expected null rates, got wer=%v accuracy=%v", out.WER, out.Accuracy)
	}
	if out.Errors != 2 {
		t.Fatalf("expected 2 insertions counted as errors, got %d", out.Errors)
	}
}
