// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/patchctl/patchctl/internal/meta"
)

const bashCompletionScript = `# bash completion for patchctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_patchctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "record apply series show status fetch completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--color -c --filter -f --output -o --sort -s --titles -t --tldr"

    # Determine if an optional RootDir (first non-flag after subcommand) has
		# already been provided
    local have_rootdir=0
    local idx=2
    while [[ $idx -lt ${#COMP_WORDS[@]} ]]; do
        local w=${COMP_WORDS[$idx]}
        if [[ $w != -* ]]; then
            have_rootdir=1
            break
        fi
        ((idx++))
    done

    case "$cmd" in
    record)
      local opts="--context -C --dir -d --file -f --force --message -m --renames --tldr"
            ;;
        apply)
      local opts="$common --dry-run --patch-dir -p"
            ;;
        series)
      local opts="$common --patch-dir -p list check freeze"
            ;;
        show)
      local opts="$common --patch-dir -p --tui"
            ;;
        status)
      local opts="$common --patch-dir -p"
            ;;
        fetch)
      local opts="--directory -C --force --index --release --sha256 --strip --tldr"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  # If current token starts with '-', or we've already consumed RootDir, offer flags
  if [[ "$cur" == -* || $have_rootdir -eq 1 ]]; then
    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
  fi

  # Otherwise, we're on the (optional) RootDir positional: complete directories
  COMPREPLY=( $(compgen -o dirnames -- "$cur") )
  return 0
}

complete -F _patchctl patchctl
`

const zshCompletionScript = `#compdef patchctl

_patchctl() {
  local -a cmds
  cmds=(
    'record:record differences between two snapshot directories'
    'apply:apply the patch series to a working tree'
    'series:inspect and pin the patch application order'
    'show:render a patch artifact'
    'status:show drift between the patch series and its frozen manifest'
    'fetch:fetch and unpack a baseline archive'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'patchctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    record)
      _arguments -C \
        '(-C --context)'{-C,--context}'[context lines]:lines' \
        '(-d --dir)'{-d,--dir}'[patch directory to write]:directory:_directories' \
        '(-f --file)'{-f,--file}'[combined patch file]:file:_files' \
        '--force[overwrite without asking]' \
        '(-m --message)'{-m,--message}'[patch description]:message' \
        '--renames[pair renamed files]' \
        '1:baseline:_directories' \
        '2:modified:_directories'
      ;;
    apply)
      _arguments -C \
        $common \
        '--dry-run[check without writing]' \
        '(-p --patch-dir)'{-p,--patch-dir}'[patch directory]:directory:_directories' \
        '::RootDir:_directories'
      ;;
    series)
      _arguments -C \
        $common \
        '(-p --patch-dir)'{-p,--patch-dir}'[patch directory]:directory:_directories' \
        '::RootDir:_directories' \
        '::action:((list check freeze))'
      ;;
    show)
      _arguments -C \
        $common \
        '(-p --patch-dir)'{-p,--patch-dir}'[patch directory]:directory:_directories' \
        '--tui[pick the patch interactively]' \
        '::patch file:_files'
      ;;
    status)
      _arguments -C \
        $common \
        '(-p --patch-dir)'{-p,--patch-dir}'[patch directory]:directory:_directories' \
        '::RootDir:_directories'
      ;;
    fetch)
      _arguments -C \
        '(-C --directory)'{-C,--directory}'[directory to unpack into]:directory:_directories' \
        '--force[overwrite without asking]' \
        '--index[release index document]:index' \
        '--release[release version]:version' \
        '--sha256[expected archive digest]:digest' \
        '--strip[leading path components to strip]:components' \
        '1:source:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:directory:_directories'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _patchctl patchctl patchctl
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: patchctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "patchctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
