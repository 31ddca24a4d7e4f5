// Package main provides the entry point for the simulator: a cycle-accurate
// renaming five-stage pipeline for a small RISC instruction set.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rrsim/asm"
	"github.com/sarchlab/rrsim/timing/config"
	"github.com/sarchlab/rrsim/timing/pipeline"
)

var (
	speed      = flag.Uint64("speed", 0, "Wall-clock throttle factor (0 = run as fast as possible)")
	speedShort = flag.Uint64("s", 0, "Shorthand for -speed")
	configPath = flag.String("config", "", "Path to a timing configuration JSON file")
	verbose    = flag.Bool("v", false, "Trace every cycle to stderr and print register file and run statistics after completion")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: simulator <input_file> [options]\n\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	// Options may also follow the input file ("simulator prog.asm -s 4").
	_ = flag.CommandLine.Parse(flag.Args()[1:])

	memory, err := asm.AssembleFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error assembling program: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timing configuration: %v\n", err)
		os.Exit(1)
	}

	if throttle := effectiveSpeed(); throttle != 0 {
		cfg.Speed = throttle
	}

	proc := pipeline.NewProcessor(memory, cfg, 0)
	if *verbose {
		proc.SetTrace(os.Stderr)
	}

	stats, err := proc.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error during execution: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		proc.RegisterFile().Print(os.Stdout, nil)
		fmt.Printf("\nProgram: %s\n", programPath)
		fmt.Printf("Cycles: %d\n", stats.Cycles)
		fmt.Printf("Retired: %d\n", stats.Retired)
		fmt.Printf("CPI: %.2f\n", stats.CPI())
		fmt.Printf("Branches: %d\n", stats.Branches)
		fmt.Printf("Mispredicts: %d (%.1f%%)\n", stats.Mispredicts, 100.0*stats.MispredictRate())
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath == "" {
		return config.Default(), nil
	}
	return config.Load(*configPath)
}

func effectiveSpeed() uint64 {
	if *speed != 0 {
		return *speed
	}
	return *speedShort
}
