package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/moolen/troubleshooter/internal/diagnosis"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	outputTable  = "table"
	outputPlain  = "plain"
	outputReport = "report"
	outputJSON   = "json"
	outputYAML   = "yaml"
)

var (
	colorPrimary = lipgloss.Color("#00D4FF")
	colorMuted   = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

func validOutput(format string) error {
	switch format {
	case outputTable, outputPlain, outputReport, outputJSON, outputYAML:
		return nil
	}
	return fmt.Errorf("unknown output format %q (want table, plain, report, json or yaml)", format)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderReport writes report in the given format. Table output degrades to
// plain when tty is false.
func renderReport(w io.Writer, report *diagnosis.Report, format string, tty bool) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case outputReport:
		return renderMarkdown(w, report)
	case outputTable:
		if tty {
			return renderTable(w, report)
		}
		return renderPlain(w, report)
	case outputPlain:
		return renderPlain(w, report)
	}
	return validOutput(format)
}

func renderPlain(w io.Writer, report *diagnosis.Report) error {
	if len(report.Chains) == 0 {
		_, err := fmt.Fprintf(w, "no root cause confirmed for %q on %s\n", report.Failure, report.PartitionID)
		return err
	}
	for _, c := range report.Chains {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", c.RootCause, c.Trigger, c.DataChannel); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, report *diagnosis.Report) error {
	if len(report.Chains) == 0 {
		return renderPlain(w, report)
	}
	rows := make([][]string, 0, len(report.Chains))
	for _, c := range report.Chains {
		rows = append(rows, []string{c.RootCause, c.Trigger, c.DataChannel})
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("ROOT CAUSE", "TRIGGER", "DATA CHANNEL").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// markdownReport builds the report document fed to the terminal renderer
func markdownReport(report *diagnosis.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Diagnosis: %s\n\n", report.Failure)
	fmt.Fprintf(&b, "- **Partition:** `%s`\n", report.PartitionID)
	fmt.Fprintf(&b, "- **Run:** `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- **Checks executed:** %d\n", report.Executed)
	fmt.Fprintf(&b, "- **Graph depths:** %d\n\n", len(report.Depths.Depths()))

	b.WriteString("## Root causes\n\n")
	if len(report.Chains) == 0 {
		b.WriteString("No root cause was confirmed.\n\n")
	} else {
		b.WriteString("| Root cause | Trigger | Data channel |\n|---|---|---|\n")
		for _, c := range report.Chains {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.RootCause, c.Trigger, c.DataChannel)
		}
		b.WriteString("\n")
	}

	if len(report.Correlation.Checked) > 0 {
		b.WriteString("## Checks\n\n| Trigger | Channel | Check | Result |\n|---|---|---|---|\n")
		for _, r := range report.Correlation.Checked {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.Subject, r.Object, r.Check, statusWord(r.Status))
		}
		b.WriteString("\n")
	}

	if len(report.Unmapped) > 0 {
		b.WriteString("## Unmapped triggers\n\n")
		for _, u := range report.Unmapped {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}
	return b.String()
}

func renderMarkdown(w io.Writer, report *diagnosis.Report) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := renderer.Render(markdownReport(report))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func statusWord(status *bool) string {
	switch {
	case status == nil:
		return "not run"
	case *status:
		return "confirmed"
	default:
		return "cleared"
	}
}
