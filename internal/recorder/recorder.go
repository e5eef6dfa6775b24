// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"bytes"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/patchctl/patchctl/internal/log"
	"github.com/patchctl/patchctl/internal/snapshot"
)

// DefaultContext is the number of unchanged lines kept around each change,
// matching conventional unified-diff presentation.
const DefaultContext = 3

// LineKind classifies a hunk line.
type LineKind int

const (
	LineContext LineKind = iota
	LineRemoved
	LineAdded
)

// Line is a single hunk line without its trailing newline. NoOldEOL/NoNewEOL
// mark the final line of a file that lacks a trailing newline, so rendering
// can emit the conventional marker.
type Line struct {
	Kind     LineKind
	Text     string
	NoOldEOL bool
	NoNewEOL bool
}

// Hunk is a contiguous block of changes with surrounding context. Start
// values are 1-based; a zero start with zero count denotes an insertion
// before the first line, per unified-diff convention.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// Record is the per-file output of the recorder. OldPath is empty for an
// added file and NewPath is empty for a deleted one; both are set (and may
// differ, for a detected rename) otherwise.
type Record struct {
	OldPath string
	NewPath string
	Hunks   []Hunk
}

// Path returns the record's identifying path: the new path when present,
// else the old one.
func (r Record) Path() string {
	if r.NewPath != "" {
		return r.NewPath
	}
	return r.OldPath
}

// Options tune the recorder. The zero value gives DefaultContext lines of
// context and rename detection off. Context distinguishes unset (nil,
// DefaultContext) from an explicit zero, which emits bare change lines.
type Options struct {
	Context       *int
	DetectRenames bool
}

func (o Options) context() int {
	if o.Context == nil || *o.Context < 0 {
		return DefaultContext
	}
	return *o.Context
}

// Diff computes per-file records between a baseline and a modified snapshot.
// The output is deterministic for identical inputs: files are visited in
// lexicographic path order and the diff algorithm runs without timeouts.
// Identical snapshots produce an empty (nil) result.
//
// It is a pure function: no filesystem access, no side effects.
func Diff(baseline, modified snapshot.Snapshot, opts Options) ([]Record, error) {
	if err := snapshot.Validate(baseline); err != nil {
		return nil, err
	}
	if err := snapshot.Validate(modified); err != nil {
		return nil, err
	}

	// Refuse binary content wholesale rather than emitting a corrupt diff.
	for _, path := range baseline.Paths() {
		if err := snapshot.CheckText(path, baseline[path]); err != nil {
			return nil, err
		}
	}
	for _, path := range modified.Paths() {
		if err := snapshot.CheckText(path, modified[path]); err != nil {
			return nil, err
		}
	}

	var changed, deleted, added []string
	for _, path := range baseline.Paths() {
		if after, ok := modified[path]; ok {
			if !bytes.Equal(baseline[path], after) {
				changed = append(changed, path)
			}
		} else {
			deleted = append(deleted, path)
		}
	}
	for _, path := range modified.Paths() {
		if _, ok := baseline[path]; !ok {
			added = append(added, path)
		}
	}

	var records []Record
	for _, path := range changed {
		records = append(records, Record{
			OldPath: path,
			NewPath: path,
			Hunks:   diffHunks(string(baseline[path]), string(modified[path]), opts.context()),
		})
	}

	renames := map[string]string{}
	if opts.DetectRenames {
		renames = pairRenames(baseline, modified, deleted, added)
	}

	for _, path := range deleted {
		if to, ok := renames[path]; ok {
			log.Debugf("rename paired: from=%s to=%s", path, to)
			records = append(records, Record{
				OldPath: path,
				NewPath: to,
				Hunks:   diffHunks(string(baseline[path]), string(modified[to]), opts.context()),
			})
			continue
		}
		records = append(records, Record{
			OldPath: path,
			Hunks:   diffHunks(string(baseline[path]), "", opts.context()),
		})
	}
	for _, path := range added {
		if renamedTo(renames, path) {
			continue
		}
		records = append(records, Record{
			NewPath: path,
			Hunks:   diffHunks("", string(modified[path]), opts.context()),
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Path() < records[j].Path()
	})

	log.Debugf("records built: changed=%d deleted=%d added=%d", len(changed), len(deleted), len(added))
	return records, nil
}

func renamedTo(renames map[string]string, path string) bool {
	for _, to := range renames {
		if to == path {
			return true
		}
	}
	return false
}

// lineOp is an intermediate per-line operation with 0-based positions.
// oldAt/newAt carry the running counter even for lines absent from that
// side, so hunk headers for pure insertions and deletions come out right.
type lineOp struct {
	kind  LineKind
	text  string
	noEOL bool
	oldAt int
	newAt int
}

// diffHunks computes the unified hunks between two text contents using a
// line-level diff. The diff runs with no timeout so the result depends only
// on the inputs.
func diffHunks(oldText, newText string, context int) []Hunk {
	if oldText == newText {
		return nil
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	ops := diffsToOps(diffs)
	return groupHunks(ops, context)
}

// splitLines breaks text into lines without their trailing newline. The
// second return is true when the final line lacks one.
func splitLines(text string) ([]string, bool) {
	if text == "" {
		return nil, false
	}
	noEOL := !strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	return lines, noEOL
}

func diffsToOps(diffs []diffmatchpatch.Diff) []lineOp {
	var ops []lineOp
	oldAt, newAt := 0, 0

	for _, d := range diffs {
		lines, noEOL := splitLines(d.Text)
		for i, text := range lines {
			last := noEOL && i == len(lines)-1
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, lineOp{kind: LineContext, text: text, noEOL: last, oldAt: oldAt, newAt: newAt})
				oldAt++
				newAt++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, lineOp{kind: LineRemoved, text: text, noEOL: last, oldAt: oldAt, newAt: newAt})
				oldAt++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, lineOp{kind: LineAdded, text: text, noEOL: last, oldAt: oldAt, newAt: newAt})
				newAt++
			}
		}
	}

	return ops
}

// groupHunks marks a context window around every changed line and collects
// the contiguous marked ranges into hunks. Changes closer than twice the
// context naturally merge into one hunk.
func groupHunks(ops []lineOp, context int) []Hunk {
	marked := make([]bool, len(ops))
	any := false
	for i, op := range ops {
		if op.kind == LineContext {
			continue
		}
		any = true
		lo := i - context
		if lo < 0 {
			lo = 0
		}
		hi := i + context
		if hi > len(ops)-1 {
			hi = len(ops) - 1
		}
		for j := lo; j <= hi; j++ {
			marked[j] = true
		}
	}
	if !any {
		return nil
	}

	var hunks []Hunk
	i := 0
	for i < len(ops) {
		if !marked[i] {
			i++
			continue
		}
		j := i
		for j < len(ops) && marked[j] {
			j++
		}
		hunks = append(hunks, buildHunk(ops[i:j]))
		i = j
	}
	return hunks
}

func buildHunk(ops []lineOp) Hunk {
	h := Hunk{}
	for _, op := range ops {
		line := Line{Kind: op.kind, Text: op.text}
		switch op.kind {
		case LineContext:
			line.NoOldEOL = op.noEOL
			line.NoNewEOL = op.noEOL
			h.OldCount++
			h.NewCount++
		case LineRemoved:
			line.NoOldEOL = op.noEOL
			h.OldCount++
		case LineAdded:
			line.NoNewEOL = op.noEOL
			h.NewCount++
		}
		h.Lines = append(h.Lines, line)
	}

	// 1-based starts; a zero count leaves the 0-based anchor per convention.
	h.OldStart = ops[0].oldAt
	if h.OldCount > 0 {
		h.OldStart++
	}
	h.NewStart = ops[0].newAt
	if h.NewCount > 0 {
		h.NewStart++
	}
	return h
}
