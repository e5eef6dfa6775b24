// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package patchfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/patchctl/patchctl/internal/recorder"
)

// Patch is a parsed patch artifact: the optional leading metadata block plus
// the per-file records it carries.
type Patch struct {
	Message string
	Records []recorder.Record
}

// ParseError reports a malformed artifact with enough position context to
// fix it by hand.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed patch at line %d: %s", e.Line, e.Message)
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse reads a unified-diff artifact as produced by the recorder. Free text
// before the first "--- "/"+++ " header pair is the metadata block. git-style
// "diff " framing lines between files are tolerated and skipped.
func Parse(text string) (*Patch, error) {
	lines := strings.Split(text, "\n")
	// A trailing newline yields one phantom empty element.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	p := &Patch{}
	var meta []string
	var current *recorder.Record
	var hunk *recorder.Hunk
	var oldSeen, newSeen int

	flushHunk := func(at int) error {
		if hunk == nil {
			return nil
		}
		if oldSeen != hunk.OldCount || newSeen != hunk.NewCount {
			return &ParseError{Line: at, Message: fmt.Sprintf(
				"hunk body disagrees with header: have -%d/+%d, header says -%d/+%d",
				oldSeen, newSeen, hunk.OldCount, hunk.NewCount)}
		}
		current.Hunks = append(current.Hunks, *hunk)
		hunk = nil
		return nil
	}
	flushRecord := func(at int) error {
		if current == nil {
			return nil
		}
		if err := flushHunk(at); err != nil {
			return err
		}
		if current.OldPath == "" && current.NewPath == "" {
			return &ParseError{Line: at, Message: "file section with both sides /dev/null"}
		}
		p.Records = append(p.Records, *current)
		current = nil
		return nil
	}

	// hunkOpen reports whether the current hunk still owes body lines per its
	// header counts. While it does, a line starting with "--- " is a removed
	// body line (text beginning "-- "), never a file header.
	hunkOpen := func() bool {
		return hunk != nil && (oldSeen < hunk.OldCount || newSeen < hunk.NewCount)
	}

	i := 0
	for i < len(lines) {
		line := lines[i]
		n := i + 1

		headerish := strings.HasPrefix(line, "--- ") && !hunkOpen()

		switch {
		case headerish && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ "):
			if err := flushRecord(n); err != nil {
				return nil, err
			}
			current = &recorder.Record{
				OldPath: parseHeaderPath(line[4:], "a/"),
				NewPath: parseHeaderPath(lines[i+1][4:], "b/"),
			}
			i += 2
			continue

		case headerish && current != nil:
			return nil, &ParseError{Line: n, Message: "old-file header without new-file header"}

		case current == nil:
			// Anything before the first file section is metadata.
			meta = append(meta, line)

		case hunkHeaderRe.MatchString(line):
			if err := flushHunk(n); err != nil {
				return nil, err
			}
			m := hunkHeaderRe.FindStringSubmatch(line)
			hunk = &recorder.Hunk{
				OldStart: atoi(m[1]),
				OldCount: atoiDefault(m[2], 1),
				NewStart: atoi(m[3]),
				NewCount: atoiDefault(m[4], 1),
			}
			oldSeen, newSeen = 0, 0

		case strings.HasPrefix(line, "diff ") || strings.HasPrefix(line, "index "):
			// git framing between files; carries nothing we need.

		case line == noEOLMarkerLine:
			if hunk == nil || len(hunk.Lines) == 0 {
				return nil, &ParseError{Line: n, Message: "newline marker outside a hunk"}
			}
			last := &hunk.Lines[len(hunk.Lines)-1]
			switch last.Kind {
			case recorder.LineRemoved:
				last.NoOldEOL = true
			case recorder.LineAdded:
				last.NoNewEOL = true
			default:
				last.NoOldEOL = true
				last.NoNewEOL = true
			}

		case hunk != nil:
			var l recorder.Line
			switch {
			case strings.HasPrefix(line, " "):
				l = recorder.Line{Kind: recorder.LineContext, Text: line[1:]}
				oldSeen++
				newSeen++
			case strings.HasPrefix(line, "-"):
				l = recorder.Line{Kind: recorder.LineRemoved, Text: line[1:]}
				oldSeen++
			case strings.HasPrefix(line, "+"):
				l = recorder.Line{Kind: recorder.LineAdded, Text: line[1:]}
				newSeen++
			case line == "":
				// Some tools strip the single space off blank context lines.
				l = recorder.Line{Kind: recorder.LineContext, Text: ""}
				oldSeen++
				newSeen++
			default:
				return nil, &ParseError{Line: n, Message: fmt.Sprintf("unsupported hunk line %q", line)}
			}
			hunk.Lines = append(hunk.Lines, l)

		default:
			return nil, &ParseError{Line: n, Message: fmt.Sprintf("content outside a hunk: %q", line)}
		}
		i++
	}

	if err := flushRecord(len(lines)); err != nil {
		return nil, err
	}
	if len(p.Records) == 0 {
		return nil, &ParseError{Line: 1, Message: "no file sections found"}
	}

	// Trim the customary blank separator off the metadata block.
	for len(meta) > 0 && meta[len(meta)-1] == "" {
		meta = meta[:len(meta)-1]
	}
	p.Message = strings.Join(meta, "\n")

	return p, nil
}

const noEOLMarkerLine = "\\ No newline at end of file"

// parseHeaderPath strips the conventional a// b/ prefix and any trailing
// timestamp. "/dev/null" maps to the empty path.
func parseHeaderPath(s, prefix string) string {
	if tab := strings.IndexByte(s, '\t'); tab >= 0 {
		s = s[:tab]
	}
	s = strings.TrimSpace(s)
	if s == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(s, prefix)
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	return atoi(s)
}
