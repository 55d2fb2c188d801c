package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat-builder/internal/ingest"
)

var (
	importConfigPath string
	importOutputFile string
	importVerbose    bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Convert a resume file into a structured document",
	Long:  `Extract text from a resume file (pdf, docx, txt, md), ask the model to convert it into a structured document and print the result as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().StringVar(&importConfigPath, "config", "", "Path to JSON config file")
	importCmd.Flags().StringVarP(&importOutputFile, "out", "o", "", "Path to write the document JSON (default: stdout)")
	importCmd.Flags().BoolVarP(&importVerbose, "verbose", "v", false, "Verbose logging")
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig(importConfigPath, importVerbose)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read resume file: %w", err)
	}
	text, err := ingest.ExtractText(args[0], data)
	if err != nil {
		return fmt.Errorf("failed to extract text: %w", err)
	}

	logger := newLogger(cfg)
	ctx := context.Background()
	manager, cleanup, err := buildManager(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	sess, err := manager.Create(ctx)
	if err != nil {
		return err
	}

	result, err := manager.ImportText(ctx, sess.ID, text)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if !result.Applied() {
		return fmt.Errorf("model did not return a usable resume (%s)", result.Code)
	}

	out, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	out = append(out, '\n')

	if importOutputFile != "" {
		return os.WriteFile(importOutputFile, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}
