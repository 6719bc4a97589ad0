package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
	ExitInputError   = 3
	ExitStorageError = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "pdb":
		return runPDB(cmdArgs)
	case "sabdab":
		return runSabdab(cmdArgs)
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		return ExitInvalidArgs
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: pdbfetch <command> [options]

Commands:
  pdb     Bulk-download RCSB PDB structure files (mmCIF) released before a cutoff date
  sabdab  Bulk-download SAbDab antibody structure files listed in a summary TSV

Run 'pdbfetch <command> -h' for command-specific help.`)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
// In-flight downloads finish; no further batches or retry rounds start.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[pdbfetch] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}
