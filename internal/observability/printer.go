package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-chat-builder/internal/pipeline"
	"github.com/jonathan/resume-chat-builder/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDocument outputs a human-readable summary of the current resume.
func (p *Printer) PrintDocument(doc *types.ResumeDocument) {
	if doc == nil {
		return
	}

	var sb strings.Builder

	name := doc.Contact.FullName
	if name == "" {
		name = "(no name yet)"
	}
	sb.WriteString(fmt.Sprintf("Name:     %s\n", name))
	if doc.Contact.Email != "" {
		sb.WriteString(fmt.Sprintf("Email:    %s\n", doc.Contact.Email))
	}
	if doc.Summary != "" {
		summary := doc.Summary
		if len(summary) > 50 {
			summary = summary[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("Summary:  %s\n", summary))
	}
	sb.WriteString("\n")

	if len(doc.Experiences) > 0 {
		sb.WriteString("Experience:\n")
		count := min(len(doc.Experiences), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := doc.Experiences[i]
			sb.WriteString(fmt.Sprintf("  • %s", exp.Company))
			if exp.Title != "" {
				sb.WriteString(fmt.Sprintf(" — %s", exp.Title))
			}
			if exp.Duration != "" {
				sb.WriteString(fmt.Sprintf(" (%s)", exp.Duration))
			}
			sb.WriteString("\n")
		}
		if len(doc.Experiences) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(doc.Experiences)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(doc.Skills) > 0 {
		skills := strings.Join(doc.Skills, ", ")
		if len(skills) > 45 {
			skills = skills[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Skills:   %s\n", skills))
	}

	p.printBox("CURRENT RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOutcome outputs the result of applying one model turn.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOutcome(outcome pipeline.Outcome) {
	if outcome.Applied() {
		var sb strings.Builder
		sb.WriteString("Patch applied")
		if outcome.Patch != nil {
			sb.WriteString(fmt.Sprintf(" (operation: %s)", outcome.Patch.Operation))
		}
		sb.WriteString("\n")
		for _, w := range outcome.Warnings {
			sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
		}
		p.printBox("TURN RESULT", strings.TrimSuffix(sb.String(), "\n"))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("No change (%s)\n", outcome.Code))
	for _, w := range outcome.Warnings {
		sb.WriteString(fmt.Sprintf("⚠ %s\n", w))
	}
	p.printBox("TURN RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
