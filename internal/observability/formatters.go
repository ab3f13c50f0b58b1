// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/page-digest/internal/ingestion"
	"github.com/jonathan/page-digest/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// previewLines is the number of content lines shown for a page
	previewLines = 8
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

	for _, line := range strings.Split(content, "\n") {
		line = ingestion.Truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintPage outputs the title, URL and the first lines of extracted content.
func (p *Printer) PrintPage(page types.PageContent) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title:    %s\n", page.Title))
	sb.WriteString(fmt.Sprintf("URL:      %s\n", page.URL))
	sb.WriteString(fmt.Sprintf("Length:   %d chars\n", ingestion.RuneLen(page.Content)))

	lines := nonBlankLines(page.Content)
	if len(lines) > 0 {
		sb.WriteString("\n")
		count := min(len(lines), previewLines)
		for i := 0; i < count; i++ {
			sb.WriteString(lines[i] + "\n")
		}
		if len(lines) > previewLines {
			sb.WriteString(fmt.Sprintf("... and %d more lines\n", len(lines)-previewLines))
		}
	}

	p.printBox("EXTRACTED PAGE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the parsed summary and the headline candidates.
func (p *Printer) PrintSummary(summary types.NormalizedSummary, titles types.AtmosphereTitles) {
	var sb strings.Builder

	if len(titles) > 0 {
		sb.WriteString("Headlines:\n")
		for _, t := range titles {
			sb.WriteString(fmt.Sprintf("  • %s\n", t))
		}
		sb.WriteString("\n")
	}

	if summary.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:    %s\n", summary.Title))
	}
	sb.WriteString(fmt.Sprintf("Overview: %s\n", summary.Overview))

	if len(summary.KeyPoints) > 0 {
		sb.WriteString("\nKey Points:\n")
		for _, point := range summary.KeyPoints {
			sb.WriteString(fmt.Sprintf("  • %s\n", point))
		}
	}

	p.printBox("GENERATED SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMessage outputs the webhook payload as indented JSON.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintMessage(msg types.OutboundMessage) {
	data, err := json.MarshalIndent(msg, "", "  ")
	if err != nil {
		fmt.Fprintf(p.out, "failed to encode message: %v\n", err)
		return
	}
	p.printBox(fmt.Sprintf("OUTBOUND MESSAGE (%s)", msg.MsgType), string(data))
}

func nonBlankLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
