package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat-builder/internal/observability"
	"github.com/jonathan/resume-chat-builder/internal/pipeline"
	"github.com/jonathan/resume-chat-builder/internal/types"
)

var (
	applyDocFile      string
	applyResponseFile string
	applyOutputFile   string
	applyVerbose      bool
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a saved model response to a resume document",
	Long:  `Run the extraction and merge pipeline offline: read a model response from a file (or stdin), extract its edit block and apply it to a resume document JSON. Useful for debugging extraction without making model calls.`,
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringVarP(&applyDocFile, "doc", "d", "", "Path to resume document JSON (default: empty document)")
	applyCmd.Flags().StringVarP(&applyResponseFile, "in", "i", "", "Path to model response text (default: stdin)")
	applyCmd.Flags().StringVarP(&applyOutputFile, "out", "o", "", "Path to write the updated document JSON (default: stdout)")
	applyCmd.Flags().BoolVarP(&applyVerbose, "verbose", "v", false, "Print patch details")
	rootCmd.AddCommand(applyCmd)
}

func runApply(_ *cobra.Command, _ []string) error {
	doc := types.NewResumeDocument()
	if applyDocFile != "" {
		data, err := os.ReadFile(applyDocFile)
		if err != nil {
			return fmt.Errorf("failed to read document file: %w", err)
		}
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("failed to parse document JSON: %w", err)
		}
	}

	var raw []byte
	var err error
	if applyResponseFile != "" {
		raw, err = os.ReadFile(applyResponseFile)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read model response: %w", err)
	}

	outcome := pipeline.Process(string(raw), doc)

	if applyVerbose {
		printer := observability.NewPrinter(os.Stderr)
		printer.PrintOutcome(outcome)
		printer.PrintDocument(outcome.Document)
	}
	if !outcome.Applied() {
		fmt.Fprintf(os.Stderr, "no change applied (%s)\n", outcome.Code)
	}
	for _, w := range outcome.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	out, err := json.MarshalIndent(outcome.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	out = append(out, '\n')

	if applyOutputFile != "" {
		return os.WriteFile(applyOutputFile, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}
