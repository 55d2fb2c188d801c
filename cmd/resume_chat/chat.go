package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-chat-builder/internal/observability"
)

var (
	chatConfigPath string
	chatVerbose    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Build a resume interactively in the terminal",
	Long:  `Start an interactive session: each message goes to the model, and any edit block in the reply is merged into the resume. Type /resume to print the document, /reset to start over, /quit to exit.`,
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatConfigPath, "config", "", "Path to JSON config file")
	chatCmd.Flags().BoolVarP(&chatVerbose, "verbose", "v", false, "Show patch details after each turn")
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(chatConfigPath, chatVerbose)
	if err != nil {
		return err
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

	printer := observability.NewPrinter(os.Stdout)
	fmt.Println("Let's build your resume. Tell me about yourself (/quit to exit).")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return scanner.Err()
		case "/resume":
			printer.PrintDocument(sess.Document())
			continue
		case "/reset":
			if _, err := manager.Reset(ctx, sess.ID); err != nil {
				fmt.Fprintf(os.Stderr, "reset failed: %v\n", err)
			} else {
				fmt.Println("Starting over with an empty resume.")
			}
			continue
		}

		result, err := manager.HandleMessage(ctx, sess.ID, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "turn failed: %v\n", err)
			continue
		}

		if result.Reply != "" {
			fmt.Println(result.Reply)
		}
		if cfg.Verbose {
			printer.PrintOutcome(result.Outcome)
			printer.PrintDocument(sess.Document())
		}
	}
	return scanner.Err()
}
