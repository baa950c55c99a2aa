package main

import (
	"fmt"
	"os"

	"oscmix/internal/midi"
	"oscmix/internal/param"
)

// RunCLI handles one-off maintenance subcommands before the flag set is
// even parsed. Returns true if a subcommand was handled.
func RunCLI(args []string, enumerator midi.Enumerator) bool {
	if len(args) == 0 {
		return false
	}

	switch args[0] {
	case "version":
		fmt.Printf("oscmix %s\n", Version)
		return true
	case "devices":
		return cliDevices(enumerator)
	case "models":
		return cliModels()
	default:
		return false
	}
}

func cliDevices(enumerator midi.Enumerator) bool {
	if enumerator == nil {
		fmt.Fprintln(os.Stderr, "no MIDI backend compiled into this build")
		os.Exit(1)
	}
	ports := enumerator.Ports()
	if len(ports) == 0 {
		fmt.Println("No MIDI ports found.")
		return true
	}
	for i, name := range ports {
		fmt.Printf("  [%d] %s\n", i, name)
	}
	return true
}

func cliModels() bool {
	reg := param.NewRegistry()
	for _, m := range reg.Models() {
		fmt.Println(m)
	}
	return true
}
