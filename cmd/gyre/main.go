package main

import (
	"fmt"
	"os"

	"github.com/slyt3/Gyre/cmd/gyre/commands"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "serve":
		err = commands.ServeCommand(args)
	case "run":
		err = commands.RunCommand(args)
	case "verify":
		err = commands.VerifyCommand(args)
	case "status":
		err = commands.StatusCommand(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Gyre - fixed-capacity ring buffer with a hash-chained journal")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gyre serve [-config gyre.yaml]              Serve the buffer over HTTP")
	fmt.Println("  gyre run <scenario.yaml> [-db path]         Replay a scenario against a journaled buffer")
	fmt.Println("  gyre verify [-db path] [-run id]            Validate a run's hash chain (default: latest run)")
	fmt.Println("  gyre status [-db path]                      Show the latest run and its statistics")
}
