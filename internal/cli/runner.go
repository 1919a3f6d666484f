// Package cli implements the tasklist subcommands on top of store.Store.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Makepad-fr/tasklist/internal/model"
	"github.com/Makepad-fr/tasklist/internal/store"
	"github.com/Makepad-fr/tasklist/internal/tui"
	"github.com/Makepad-fr/tasklist/internal/ui"
)

// Options tune output behavior from root flags.
type Options struct {
	Group    bool // list grouped by pending/done
	HideDone bool // hide completed tasks
}

// Env is everything a subcommand needs.
type Env struct {
	Store *store.Store
	Opt   Options
	Out   io.Writer
	Err   io.Writer

	// Interactive runs the full-screen editor; tui.Run when nil.
	Interactive func(ctx context.Context, st *store.Store, opt tui.Options) error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// The store must already be loaded.
func Run(ctx context.Context, args []string, env Env) int {
	if len(args) == 0 {
		PrintHelp(env.Err)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(env.Out)
		return 0

	case "ls", "list":
		return doList(env)

	case "add":
		return doAdd(ctx, env, a)

	case "done", "toggle":
		if len(a) != 1 {
			ui.Fail(env.Err, "usage: tasklist done <ref>")
			return 2
		}
		return doToggle(ctx, env, a[0])

	case "edit":
		if len(a) < 2 {
			ui.Fail(env.Err, "usage: tasklist edit <ref> <name...>")
			return 2
		}
		return doEdit(ctx, env, a[0], strings.Join(a[1:], " "))

	case "rm", "delete":
		if len(a) != 1 {
			ui.Fail(env.Err, "usage: tasklist rm <ref>")
			return 2
		}
		return doRemove(ctx, env, a[0])

	case "ui":
		return doInteractive(ctx, env)
	}

	ui.Fail(env.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(env.Err)
	PrintHelp(env.Err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `tasklist - keep a task list in local storage

Usage:
  tasklist [flags] <subcommand> [args]

Subcommands:
  add [-d text] [-p level] <name...>   Add a task (priority low, medium or high)
  ls                                   List tasks
  done <ref>                           Toggle completion
  edit <ref> <name...>                 Rename a task
  rm <ref>                             Delete a task
  ui                                   Interactive editor

A <ref> is a 1-based position from ls, a task id, or a unique id prefix.

Flags:
  -backend file|memory|sqlite|postgres|mysql   -dsn DSN   -dir DIR   -key KEY
  -profile rich|minimal   -min-length N   -theme classic|neon|mono
  -color auto|always|never   -group   -hide-done   -env FILE   -debug

Examples:
  tasklist add -p high -d "2 litres" Buy milk
  tasklist ls
  tasklist done 2
  tasklist edit 2 Buy oat milk
  tasklist rm 3
`)
}

// -------------- subcommand impls ----------------

func doList(env Env) int {
	tasks := env.Store.Tasks()
	shown := model.Visible(tasks, !env.Opt.HideDone)

	d, p := model.Stats(tasks)
	var lines []string
	lines = append(lines, ui.Header(tasks))
	lines = append(lines, ui.C(ui.Current().Muted, ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if env.Opt.Group {
		lines = append(lines, ui.GroupLines(tasks, shown)...)
	} else {
		lines = append(lines, ui.TaskLines(tasks, shown)...)
	}
	if hidden := len(tasks) - len(shown); hidden > 0 {
		lines = append(lines, "", ui.C(ui.Current().Muted, fmt.Sprintf("%d completed hidden", hidden)))
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(ui.Current().Muted, "Tip: add with `tasklist add \"Buy milk\"`"))
	ui.Panel(env.Out, lines)
	return 0
}

func doAdd(ctx context.Context, env Env, args []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	desc := fs.String("d", "", "description")
	prio := fs.String("p", "low", "priority")
	if err := fs.Parse(args); err != nil {
		ui.Fail(env.Err, "add: "+err.Error())
		return 2
	}
	if fs.NArg() == 0 {
		ui.Fail(env.Err, "usage: tasklist add [-d text] [-p level] <name...>")
		return 2
	}
	tasks, err := env.Store.Add(ctx, model.Draft{
		Name:        strings.Join(fs.Args(), " "),
		Description: *desc,
		Priority:    model.Priority(*prio),
	})
	if err != nil {
		return failure(env, "add", err)
	}
	ui.OK(env.Out, fmt.Sprintf("added #%d", len(tasks)))
	return 0
}

func doToggle(ctx context.Context, env Env, ref string) int {
	t, err := env.Store.Resolve(ref)
	if err != nil {
		return failure(env, "done", err)
	}
	if _, err := env.Store.ToggleCompleted(ctx, t.ID); err != nil {
		return failure(env, "done", err)
	}
	if t.Completed {
		ui.OK(env.Out, "reopened "+t.Name)
	} else {
		ui.OK(env.Out, "completed "+t.Name)
	}
	return 0
}

func doEdit(ctx context.Context, env Env, ref, name string) int {
	t, err := env.Store.Resolve(ref)
	if err != nil {
		return failure(env, "edit", err)
	}
	if _, err := env.Store.Edit(ctx, t.ID, name); err != nil {
		return failure(env, "edit", err)
	}
	ui.OK(env.Out, "renamed")
	return 0
}

func doRemove(ctx context.Context, env Env, ref string) int {
	t, err := env.Store.Resolve(ref)
	if err != nil {
		return failure(env, "rm", err)
	}
	if _, err := env.Store.Delete(ctx, t.ID); err != nil {
		return failure(env, "rm", err)
	}
	ui.OK(env.Out, "removed "+t.Name)
	return 0
}

func doInteractive(ctx context.Context, env Env) int {
	run := env.Interactive
	if run == nil {
		run = tui.Run
	}
	if err := run(ctx, env.Store, tui.Options{ShowCompleted: !env.Opt.HideDone}); err != nil {
		ui.Fail(env.Err, "tui: "+err.Error())
		return 1
	}
	return 0
}

// failure reports err and maps it to an exit code: 2 for input the store
// refused or could not resolve, 1 for storage failures.
func failure(env Env, op string, err error) int {
	ui.Fail(env.Err, op+": "+err.Error())
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrAmbiguous):
		ui.Hint(env.Err, "run `tasklist ls` to see valid references")
		return 2
	case errors.Is(err, store.ErrRejected):
		return 2
	}
	return 1
}
