// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package recorder

import (
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/patchctl/patchctl/internal/snapshot"
)

// renameThreshold is the minimum content similarity for a deleted/added pair
// to be treated as a rename.
const renameThreshold = 0.5

// pairRenames greedily matches deleted paths to added paths by line-level
// content similarity. Candidates are scored for every pair, then consumed
// best-first; ties break on path order so the pairing is deterministic.
func pairRenames(baseline, modified snapshot.Snapshot, deleted, added []string) map[string]string {
	if len(deleted) == 0 || len(added) == 0 {
		return nil
	}

	type candidate struct {
		from, to string
		score    float64
	}
	var candidates []candidate
	for _, from := range deleted {
		for _, to := range added {
			score := similarity(string(baseline[from]), string(modified[to]))
			if score >= renameThreshold {
				candidates = append(candidates, candidate{from: from, to: to, score: score})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		if candidates[i].from != candidates[j].from {
			return candidates[i].from < candidates[j].from
		}
		return candidates[i].to < candidates[j].to
	})

	renames := map[string]string{}
	usedTo := map[string]bool{}
	for _, c := range candidates {
		if _, ok := renames[c.from]; ok || usedTo[c.to] {
			continue
		}
		renames[c.from] = c.to
		usedTo[c.to] = true
	}
	return renames
}

// similarity scores two contents in [0,1] as the fraction of lines shared,
// using the same line-level diff the recorder itself runs.
func similarity(oldText, newText string) float64 {
	if oldText == "" && newText == "" {
		return 1
	}
	if oldText == "" || newText == "" {
		return 0
	}
	if oldText == newText {
		return 1
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	a, b, lineArray := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var common, total int
	for _, d := range diffs {
		lines, _ := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			common += 2 * len(lines)
			total += 2 * len(lines)
		default:
			total += len(lines)
		}
	}
	if total == 0 {
		return 0
	}
	return float64(common) / float64(total)
}
