// Command xact is a thin entry point: not a
// flag-parsing command tree, just enough dispatch to re-exec the
// binary as a host-level child process and to exercise the library
// end to end from a shell. Building a config from on-disk sources is
// out of scope; every subcommand here operates on a
// config snapshot already produced by the orchestrator package.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xplain-systems/xact/host"
	"github.com/xplain-systems/xact/node"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 || args[0] != "host" {
		fmt.Fprintln(os.Stderr, "usage: xact host <run-process|start-host|stop-host|pause-host|step-host> <args...>")
		return 1
	}
	args = args[1:]
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: xact host <verb> <args...>")
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	verb, rest := args[0], args[1:]
	switch verb {
	case "run-process":
		fs := flag.NewFlagSet("run-process", flag.ContinueOnError)
		if err := fs.Parse(rest); err != nil || fs.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "usage: xact host run-process <id_process> <snapshot>")
			return 1
		}
		registry := node.NewRegistry()
		node.RegisterBuiltins(registry)
		code, err := host.RunProcess(ctx, fs.Arg(0), fs.Arg(1), registry)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		return code

	case "start-host":
		return runSnapshotCmd(rest, "start-host", func(snapshot string) error {
			return host.StartHost(snapshot)
		})

	case "stop-host":
		return runSnapshotCmd(rest, "stop-host", func(snapshot string) error {
			return host.StopHost(snapshot)
		})

	case "pause-host":
		return runSnapshotCmd(rest, "pause-host", func(snapshot string) error {
			return host.PauseHost(ctx, snapshot)
		})

	case "step-host":
		return runSnapshotCmd(rest, "step-host", func(snapshot string) error {
			return host.StepHost(ctx, snapshot)
		})

	default:
		fmt.Fprintf(os.Stderr, "unrecognised host verb %q\n", verb)
		return 1
	}
}

func runSnapshotCmd(args []string, verb string, fn func(snapshot string) error) int {
	fs := flag.NewFlagSet(verb, flag.ContinueOnError)
	if err := fs.Parse(args); err != nil || fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: xact host %s <snapshot>\n", verb)
		return 1
	}
	if err := fn(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
