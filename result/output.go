package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// WriteJSON writes the reports as a formatted JSON array to the writer.
func WriteJSON(w io.Writer, reports []*Report) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// CSV actions, one per kind of affected tab.
const (
	ActionGroup = "group"
	ActionClose = "close"
	ActionOpen  = "open"
	ActionMove  = "move"
)

// WriteCSV writes one row per affected tab across all reports.
// Always includes a header row, even if nothing changed.
// Column order: action, group, tab_id, url
func WriteCSV(w io.Writer, reports []*Report) error {
	cw := csv.NewWriter(w)

	header := []string{"action", "group", "tab_id", "url"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rep := range reports {
		for _, record := range rows(rep) {
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write csv record for %s: %w", record[3], err)
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

func rows(rep *Report) [][]string {
	var out [][]string
	for _, g := range rep.Groups {
		for _, tab := range g.Tabs {
			out = append(out, []string{ActionGroup, g.Title, strconv.Itoa(tab.ID), tab.URL})
		}
	}
	for _, tab := range rep.Tabs {
		out = append(out, []string{ActionMove, "", strconv.Itoa(tab.ID), tab.URL})
	}
	for _, tab := range rep.Closed {
		out = append(out, []string{ActionClose, "", strconv.Itoa(tab.ID), tab.URL})
	}
	for _, tab := range rep.Opened {
		out = append(out, []string{ActionOpen, "", strconv.Itoa(tab.ID), tab.URL})
	}
	return out
}
