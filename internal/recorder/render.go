// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"fmt"
	"strings"
)

// noEOLMarker is the conventional annotation for a final line that lacks a
// trailing newline.
const noEOLMarker = "\\ No newline at end of file"

// Render produces the textual patch artifact for a sequence of records: an
// optional free-text metadata block, then one unified diff per record. The
// output is byte-identical across runs for identical inputs; nothing
// time- or environment-dependent is written.
func Render(records []Record, message string) string {
	var b strings.Builder

	if message != "" {
		for _, line := range strings.Split(strings.TrimRight(message, "\n"), "\n") {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, r := range records {
		renderRecord(&b, r)
	}
	return b.String()
}

func renderRecord(b *strings.Builder, r Record) {
	oldHeader := "/dev/null"
	if r.OldPath != "" {
		oldHeader = "a/" + r.OldPath
	}
	newHeader := "/dev/null"
	if r.NewPath != "" {
		newHeader = "b/" + r.NewPath
	}
	fmt.Fprintf(b, "--- %s\n", oldHeader)
	fmt.Fprintf(b, "+++ %s\n", newHeader)

	for _, h := range r.Hunks {
		fmt.Fprintf(b, "@@ -%s +%s @@\n", rangeSpec(h.OldStart, h.OldCount), rangeSpec(h.NewStart, h.NewCount))
		for _, line := range h.Lines {
			switch line.Kind {
			case LineContext:
				b.WriteString(" ")
			case LineRemoved:
				b.WriteString("-")
			case LineAdded:
				b.WriteString("+")
			}
			b.WriteString(line.Text)
			b.WriteString("\n")
			if line.NoOldEOL || line.NoNewEOL {
				b.WriteString(noEOLMarker)
				b.WriteString("\n")
			}
		}
	}
}

// rangeSpec formats one side of a hunk header. The single-line shorthand
// ("-3" for "-3,1") is accepted by every consumer but never emitted, keeping
// the artifact format uniform.
func rangeSpec(start, count int) string {
	return fmt.Sprintf("%d,%d", start, count)
}
