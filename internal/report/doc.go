// Package report renders the HTML diagnosis view of a scored corpus: overall
// stat boxes, per-segment alignments with color-coded errors, and a grouped
// error summary. The output is a single self-contained file meant to be
// opened in a browser and shared.
package report
