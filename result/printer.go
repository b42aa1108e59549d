package result

import (
	"fmt"
	"io"
)

// PrintReport writes a plain-text summary of rep to w.
func PrintReport(w io.Writer, rep *Report) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	if rep.Session != "" {
		writef("%s (%s):\n", rep.Command, rep.Session)
	} else {
		writef("%s:\n", rep.Command)
	}

	for _, g := range rep.Groups {
		writef("  Group %q [%s] %s\n", g.Title, g.Color, Plural(len(g.Tabs), "tab"))
		for _, tab := range g.Tabs {
			writef("    %s\n", tab.URL)
		}
	}
	for _, tab := range rep.Closed {
		writef("  Closed: %s\n", tab.URL)
	}
	for _, tab := range rep.Opened {
		writef("  Opened: %s\n", tab.URL)
	}
	for _, f := range rep.Failures {
		writef("  Failed %s: %s\n", f.Op, f.Error)
	}

	if rep.Message != "" {
		writef("%s\n", rep.Message)
	}
	writef("Moved %s, %d host calls\n", Plural(rep.Moved, "tab"), rep.Stats.HostCalls)
}

// Plural formats n with word, adding an "s" unless n is 1.
func Plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// DuplicateMessage is the notice shown after duplicate removal.
func DuplicateMessage(closed int, ignoreParams bool) string {
	suffix := ""
	if ignoreParams {
		suffix = " (ignoring URL parameters)"
	}
	if closed > 0 {
		return fmt.Sprintf("Closed %s%s", Plural(closed, "duplicate tab"), suffix)
	}
	return "No duplicate tabs found" + suffix
}

// RestoreMessage is the notice shown after restoring closed tabs.
func RestoreMessage(restored int) string {
	if restored > 0 {
		return "Restored " + Plural(restored, "tab")
	}
	return "No closed tabs to restore"
}
