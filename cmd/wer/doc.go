// Package main hosts the wer CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into scoring runs,
// benchmark comparisons, normalization previews, alignment diffs, and history
// or configuration maintenance. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
// Stdout carries results; everything else goes to the logger on stderr.
package main
