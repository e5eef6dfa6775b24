// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package patchfile

import (
	"fmt"
	"strings"

	"github.com/patchctl/patchctl/internal/log"
	"github.com/patchctl/patchctl/internal/recorder"
	"github.com/patchctl/patchctl/internal/snapshot"
)

// ConflictError reports a hunk whose expected context does not match the
// target file. It is surfaced verbatim to the operator; nothing here retries
// or resolves it.
type ConflictError struct {
	Patch  string
	Path   string
	Hunk   int // 1-based
	Detail string
}

func (e *ConflictError) Error() string {
	name := e.Patch
	if name == "" {
		name = "patch"
	}
	return fmt.Sprintf("%s: conflict in %s at hunk #%d: %s", name, e.Path, e.Hunk, e.Detail)
}

// fline is one file line plus whether it ends with a newline. Only the final
// line of a file may have eol=false.
type fline struct {
	text string
	eol  bool
}

// Apply transforms base by the patch's records and returns the resulting
// snapshot. base is not modified. Application is strict: every hunk's old
// side must be found in the target, at its stated position first and then
// anywhere in the file, or a ConflictError is returned.
//
// An artifact produced by the recorder from (baseline, modified) applied to
// that same baseline reproduces modified byte for byte.
func Apply(base snapshot.Snapshot, p *Patch, name string) (snapshot.Snapshot, error) {
	if err := snapshot.Validate(base); err != nil {
		return nil, err
	}

	out := base.Clone()
	for _, r := range p.Records {
		if err := applyRecord(out, r, name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func applyRecord(snap snapshot.Snapshot, r recorder.Record, name string) error {
	target := r.OldPath
	if target == "" {
		target = r.NewPath
	}

	var content []byte
	if r.OldPath != "" {
		existing, ok := snap[r.OldPath]
		if !ok {
			return &ConflictError{Patch: name, Path: r.OldPath, Hunk: 1, Detail: "file does not exist"}
		}
		content = existing
	} else if _, ok := snap[r.NewPath]; ok {
		return &ConflictError{Patch: name, Path: r.NewPath, Hunk: 1, Detail: "file to be created already exists"}
	}

	lines := toFlines(string(content))
	offset := 0
	for i, h := range r.Hunks {
		var err error
		lines, offset, err = applyHunk(lines, h, offset)
		if err != nil {
			return &ConflictError{Patch: name, Path: target, Hunk: i + 1, Detail: err.Error()}
		}
	}

	result := fromFlines(lines)

	if r.NewPath == "" {
		if len(result) != 0 {
			return &ConflictError{Patch: name, Path: r.OldPath, Hunk: len(r.Hunks),
				Detail: "file not empty after deletion hunks"}
		}
		delete(snap, r.OldPath)
		return nil
	}
	if r.OldPath != "" && r.OldPath != r.NewPath {
		log.Debugf("rename applied: from=%s to=%s", r.OldPath, r.NewPath)
		delete(snap, r.OldPath)
	}
	snap[r.NewPath] = result
	return nil
}

// applyHunk splices one hunk into lines. The stated position (adjusted by
// the running offset from earlier hunks) is tried first; on mismatch the
// whole file is searched for the old side once. Returns the new lines and
// updated offset.
func applyHunk(lines []fline, h recorder.Hunk, offset int) ([]fline, int, error) {
	var oldSide, newSide []fline
	for _, l := range h.Lines {
		switch l.Kind {
		case recorder.LineContext:
			oldSide = append(oldSide, fline{text: l.Text, eol: !l.NoOldEOL})
			newSide = append(newSide, fline{text: l.Text, eol: !l.NoNewEOL})
		case recorder.LineRemoved:
			oldSide = append(oldSide, fline{text: l.Text, eol: !l.NoOldEOL})
		case recorder.LineAdded:
			newSide = append(newSide, fline{text: l.Text, eol: !l.NoNewEOL})
		}
	}

	// Pure insertion with no context: splice at the stated anchor.
	if len(oldSide) == 0 {
		at := h.OldStart + offset
		if at < 0 || at > len(lines) {
			return nil, 0, fmt.Errorf("insertion point %d outside file of %d lines", at, len(lines))
		}
		return splice(lines, at, 0, newSide), offset + len(newSide), nil
	}

	want := h.OldStart - 1 + offset
	at := -1
	if matchesAt(lines, oldSide, want) {
		at = want
	} else if found := search(lines, oldSide); found >= 0 {
		log.Debugf("hunk drifted: want=%d found=%d", want, found)
		at = found
	}
	if at < 0 {
		return nil, 0, fmt.Errorf("expected lines not found near line %d", h.OldStart)
	}

	return splice(lines, at, len(oldSide), newSide), offset + len(newSide) - len(oldSide), nil
}

func matchesAt(lines, want []fline, at int) bool {
	if at < 0 || at+len(want) > len(lines) {
		return false
	}
	for i, w := range want {
		if lines[at+i].text != w.text {
			return false
		}
	}
	return true
}

func search(lines, want []fline) int {
	for i := 0; i+len(want) <= len(lines); i++ {
		if matchesAt(lines, want, i) {
			return i
		}
	}
	return -1
}

func splice(lines []fline, at, drop int, repl []fline) []fline {
	out := make([]fline, 0, len(lines)-drop+len(repl))
	out = append(out, lines[:at]...)
	out = append(out, repl...)
	out = append(out, lines[at+drop:]...)
	return out
}

func toFlines(content string) []fline {
	if content == "" {
		return nil
	}
	eol := strings.HasSuffix(content, "\n")
	parts := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	lines := make([]fline, len(parts))
	for i, p := range parts {
		lines[i] = fline{text: p, eol: true}
	}
	if !eol {
		lines[len(lines)-1].eol = false
	}
	return lines
}

func fromFlines(lines []fline) []byte {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.text)
		if l.eol {
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}
