// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segmentRe matches one path segment: a key, optionally followed by an array
// selector ("[]", "[n]" or "[*]").
var segmentRe = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(\[(\d|\*)?\])?$`)

// Driller resolves a dot path like "hunks[1].old" against a JSON document.
// A bare key over an array selects the sole element when there is exactly
// one; an explicit [n] picks that element. Anything unresolvable returns the
// zero Result, which callers read as nil.
func Driller(jsonData string, path string) gjson.Result {
	current := gjson.Parse(jsonData)

	for _, segment := range strings.Split(path, ".") {
		m := segmentRe.FindStringSubmatch(segment)
		if m == nil {
			return gjson.Result{}
		}

		val := current.Get(m[1])
		if val.IsArray() {
			var err error
			val, err = pick(val, m[3])
			if err != nil {
				return gjson.Result{}
			}
		}
		current = val
	}

	return current
}

// pick applies an array selector. An empty selector collapses single-element
// arrays and passes larger ones through whole.
func pick(val gjson.Result, selector string) (gjson.Result, error) {
	arr := val.Array()
	if selector == "" {
		if len(arr) == 1 {
			return arr[0], nil
		}
		return val, nil
	}
	i, err := strconv.Atoi(selector)
	if err != nil || i < 0 || i >= len(arr) {
		return gjson.Result{}, strconv.ErrRange
	}
	return arr[i], nil
}
