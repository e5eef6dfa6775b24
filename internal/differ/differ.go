// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Diff compares the frozen manifest against the current one and prints a
// JSON-level delta. docs[0] is the frozen document, docs[1] the current.
func Diff(cmd *cli.Command, docs [][]byte) error {
	log.Debugf(">> differ()")

	if len(docs[0]) == 0 || len(docs[1]) == 0 {
		return nil
	}

	log.Debugf("len(docs): %d %d", len(docs[0]), len(docs[1]))

	differ := gojsondiff.New()

	delta, err := differ.Compare(docs[0], docs[1])
	if err != nil {
		return fmt.Errorf("failed to compare manifests: %w", err)
	}

	if delta.Modified() {
		var jdoc map[string]interface{}
		if err := json.Unmarshal(docs[0], &jdoc); err != nil {
			return fmt.Errorf("failed to unmarshal manifest: %w", err)
		}

		filter := cmd.String("diff_filter")

		for key := range strings.SplitSeq(filter, ",") {
			if key != "" {
				delete(jdoc, key)
			}
		}

		config := formatter.AsciiFormatterConfig{
			ShowArrayIndex: true,
			Coloring:       cmd.Bool("color"),
		}

		formatter := formatter.NewAsciiFormatter(jdoc, config)
		diffString, err := formatter.Format(delta)
		if err != nil {
			return err
		}

		fmt.Fprintln(os.Stdout, diffString)
		return nil
	}

	fmt.Fprintln(os.Stdout, "The patch series matches its manifest.")
	return nil
}
