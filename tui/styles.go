package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/grouptabs/result"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	urlStyle      = lipgloss.NewStyle()
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// groupColors maps tab group colours to terminal colours.
var groupColors = map[string]lipgloss.Color{
	"grey":   lipgloss.Color("8"),
	"blue":   lipgloss.Color("12"),
	"red":    lipgloss.Color("9"),
	"yellow": lipgloss.Color("11"),
	"green":  lipgloss.Color("10"),
	"pink":   lipgloss.Color("213"),
	"purple": lipgloss.Color("135"),
	"cyan":   lipgloss.Color("14"),
	"orange": lipgloss.Color("208"),
}

// categoryOrder is the display order for failure categories.
var categoryOrder = []result.ErrorCategory{
	result.CategoryTabNotFound,
	result.CategoryWindowNotFound,
	result.CategoryGroupNotFound,
	result.CategoryCanceled,
	result.CategoryUnknown,
}

func tabTable(rows [][]string, headers ...string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return urlStyle
		}).
		Rows(rows...).
		Render()
}

// RenderSummary produces a Lip Gloss styled summary of a command report.
func RenderSummary(rep *result.Report) string {
	if rep == nil {
		return errorStyle.Render("No results available.")
	}

	var b strings.Builder

	for _, g := range rep.Groups {
		style := categoryStyle
		if c, ok := groupColors[g.Color]; ok {
			style = style.Foreground(c)
		}
		state := "expanded"
		if g.Collapsed {
			state = "collapsed"
		}
		b.WriteString(style.Render(fmt.Sprintf("## %s [%s, %s] (%d)", g.Title, g.Color, state, len(g.Tabs))))
		b.WriteString("\n")

		rows := make([][]string, 0, len(g.Tabs))
		for _, t := range g.Tabs {
			rows = append(rows, []string{strconv.Itoa(t.ID), t.URL})
		}
		b.WriteString(tabTable(rows, "Tab", "URL"))
		b.WriteString("\n\n")
	}

	if len(rep.Closed) > 0 {
		b.WriteString(categoryStyle.Render(fmt.Sprintf("## Closed (%d)", len(rep.Closed))))
		b.WriteString("\n")
		rows := make([][]string, 0, len(rep.Closed))
		for _, t := range rep.Closed {
			rows = append(rows, []string{strconv.Itoa(t.ID), t.URL, t.Reason})
		}
		b.WriteString(tabTable(rows, "Tab", "URL", "Reason"))
		b.WriteString("\n\n")
	}

	if len(rep.Opened) > 0 {
		b.WriteString(categoryStyle.Render(fmt.Sprintf("## Restored (%d)", len(rep.Opened))))
		b.WriteString("\n")
		rows := make([][]string, 0, len(rep.Opened))
		for _, t := range rep.Opened {
			rows = append(rows, []string{strconv.Itoa(t.ID), t.URL})
		}
		b.WriteString(tabTable(rows, "Tab", "URL"))
		b.WriteString("\n\n")
	}

	renderFailures(&b, rep.Failures)

	if rep.Message != "" {
		style := successStyle
		if len(rep.Failures) > 0 {
			style = titleStyle
		}
		b.WriteString(style.Render(rep.Message))
		b.WriteString("\n")
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf(
		"%s: moved %s, %s in %s",
		rep.Command,
		result.Plural(rep.Moved, "tab"),
		result.Plural(rep.Stats.HostCalls, "host call"),
		rep.Stats.Duration.Round(time.Millisecond),
	)))
	b.WriteString("\n")

	return b.String()
}

func renderFailures(b *strings.Builder, failures []result.Failure) {
	grouped := make(map[result.ErrorCategory][]result.Failure)
	for _, f := range failures {
		cat := f.Category
		if cat == "" {
			cat = result.CategoryUnknown
		}
		grouped[cat] = append(grouped[cat], f)
	}

	for _, cat := range categoryOrder {
		list := grouped[cat]
		if len(list) == 0 {
			continue
		}

		b.WriteString(categoryStyle.Render(fmt.Sprintf("## %s (%d)", result.FormatCategory(cat), len(list))))
		b.WriteString("\n")

		rows := make([][]string, 0, len(list))
		for _, f := range list {
			target := ""
			switch {
			case f.TabID != 0:
				target = "tab " + strconv.Itoa(f.TabID)
			case f.WindowID != 0:
				target = "window " + strconv.Itoa(f.WindowID)
			}
			rows = append(rows, []string{f.Op, target, f.Error})
		}

		t := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("Operation", "Target", "Error").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 2 {
					return failureStyle
				}
				return urlStyle
			}).
			Rows(rows...)

		b.WriteString(t.Render())
		b.WriteString("\n\n")
	}
}
