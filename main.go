// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/patchctl/patchctl/internal/cacheutil"
	"github.com/patchctl/patchctl/internal/command"
	"github.com/patchctl/patchctl/internal/config"
	"github.com/patchctl/patchctl/internal/log"
	"github.com/patchctl/patchctl/internal/util"
	"github.com/patchctl/patchctl/internal/version"
)

var ctx = context.Background()

// treeCommands take a working tree rootDir as their first positional.
var treeCommands = map[string]bool{
	"apply":  true,
	"series": true,
	"status": true,
}

// seriesVerbs are the series subcommand names.
var seriesVerbs = map[string]bool{
	"list":   true,
	"check":  true,
	"freeze": true,
}

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	if len(args) > 1 && args[1] == "completion" {
		// Short-circuit completion: pass args directly.
		return args
	}

	args = processSetOnly(args)
	log.Debugf("args after set processing: args=%v", args)

	if len(args) > 1 && treeCommands[args[1]] {
		args = processTreeArgs(args)
	}

	return deduplicateFlags(args)
}

// processTreeArgs normalizes the rootDir positional for the working tree
// commands, inserting the CWD when the operator didn't name one. For series
// the positional follows the verb (list/check/freeze) when one is present.
func processTreeArgs(args []string) []string {
	pos := 2
	if args[1] == "series" && len(args) > 2 && seriesVerbs[args[2]] {
		pos = 3
	}

	rootDir, _ := os.Getwd()
	if len(args) > pos {
		if _, _, err := util.ParseRootDir(args[pos]); err == nil {
			rootDir = args[pos]
		}
	}
	if len(args) == pos {
		args = append(args, rootDir)
	} else if args[pos] != rootDir {
		args = append(args[:pos], append([]string{rootDir}, args[pos:]...)...)
	}
	return args
}

// deduplicateFlags drops all but the last occurrence of a repeated flag so
// that config-injected defaults lose to flags given on the command line.
// Positional arguments are never touched.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	type entry struct {
		name   string // empty for positionals
		tokens []string
	}

	var entries []entry
	for i := 2; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") {
			entries = append(entries, entry{tokens: []string{a}})
			continue
		}

		name := a
		tokens := []string{a}
		if eq := strings.Index(a, "="); eq != -1 {
			name = a[:eq]
		} else if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			// Treat the next token as this flag's value.
			tokens = append(tokens, args[i+1])
			i++
		}
		entries = append(entries, entry{name: name, tokens: tokens})
	}

	// Count occurrences so that only the final one of each name survives.
	remaining := make(map[string]int)
	for _, e := range entries {
		if e.name != "" {
			remaining[e.name]++
		}
	}

	result := append([]string{}, args[:2]...)
	for _, e := range entries {
		if e.name != "" {
			remaining[e.name]--
			if remaining[e.name] > 0 {
				continue
			}
		}
		result = append(result, e.tokens...)
	}
	return result
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	// Pre-create cache directory when caching is enabled.
	if _, ok, err := cacheutil.EnsureBaseDir(); err != nil && ok {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("cache ensure err: err=%v", err)
	}

	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// processSetOnly handles the @set logic for all commands, expanding set arguments at the @set position.
func processSetOnly(args []string) []string {
	// Look for an explicit @set argument starting from index 2.
	idx := 2
	set := "defaults"
	removeIdx := -1
	for i, a := range args[idx:] {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			removeIdx = idx + i
			break
		}
	}
	if removeIdx != -1 {
		// Remove the @set argument.
		args = append(args[:removeIdx], args[removeIdx+1:]...)
		// Expand the set arguments at the removeIdx position.
		setArgs, _ := config.GetStringSlice(args[1] + "." + set)
		for _, arg := range setArgs {
			parts := strings.Fields(arg)
			args = append(args[:removeIdx], append(parts, args[removeIdx:]...)...)
			removeIdx += len(parts)
		}
	}
	return args
}
