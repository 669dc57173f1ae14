// Package main provides the reparam CLI: draw Pareto and Rayleigh samples and
// fit distribution parameters with reparameterized gradients.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

const version = "v0.1.0-dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "reparam: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stdout)
		return nil
	}

	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "reparam %s\n", version)
		return nil
	case "sample":
		return runSample(args[1:], stdout, stderr)
	case "fit":
		return runFit(args[1:], stdout, stderr)
	case "inspect":
		return runInspect(args[1:], stdout)
	case "help", "-h", "--help":
		usage(stdout)
		return nil
	default:
		usage(stderr)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "reparam %s - reparameterized Pareto and Rayleigh sampling\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version    Show version")
	fmt.Fprintln(w, "  sample     Draw samples (reparam sample -dist pareto -param 2 -size 2,3)")
	fmt.Fprintln(w, "  fit        Fit a parameter to a target sample mean")
	fmt.Fprintln(w, "  inspect    Print the tensors of a .safetensors export")
}

// newLogger returns a text logger on w; verbose enables debug records.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
