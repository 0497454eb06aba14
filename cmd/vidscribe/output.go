package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct {
	label string
	color text.Color
}{
	statusInfo:  {"INFO", text.FgBlue},
	statusOK:    {"OK", text.FgGreen},
	statusWarn:  {"WARN", text.FgYellow},
	statusError: {"ERROR", text.FgRed},
}

// statusLabelWidth aligns the bracketed status of consecutive lines.
const statusLabelWidth = 24

// renderStatusLine formats "  Label:   [KIND] message", colored on terminals.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", style.label)
	if message != "" {
		line += " " + message
	}
	if colorize {
		return style.color.Sprint(line)
	}
	return line
}

// shouldColorize reports whether w is a terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable draws rows under headers. Short rows are padded with blanks.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, r := range rows {
		tw.AppendRow(toRow(r, len(headers)))
	}
	configs := make([]table.ColumnConfig, 0, len(aligns))
	for i, a := range aligns {
		if a == alignRight {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight, AlignHeader: text.AlignLeft})
		}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}

func displayName(path string) string {
	if path == "" {
		return "(unknown)"
	}
	return filepath.Base(path)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// truncate shortens s to limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if limit < 2 || len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
