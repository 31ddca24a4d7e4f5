// Package config provides the simulator's JSON-configurable feature flags
// and instruction latencies, generalizing the teacher's per-instruction
// TimingConfig into the knobs §6 and §4.4/§4.5 of the specification name.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the §6 feature flags and the cycle counts of §4.4/§4.5.
type Config struct {
	// Pipeline, if false, runs the processor in unpipelined mode: a full
	// tick happens after every stage instead of overlapping stages.
	Pipeline bool `json:"pipeline"`

	// RenameRegisters, if false, disables destination renaming: Decode
	// does not allocate a fresh Phys for the destination, and the
	// destination also participates in the hazard wait-check.
	RenameRegisters bool `json:"rename_registers"`

	// ForwardResults, if false, a queued-but-unretired WriteBack entry (or
	// a Memory forwarding slot) does not satisfy a waiting read: the
	// consumer must stall until the physical write actually commits.
	ForwardResults bool `json:"forward_results"`

	// Speed is the Clock's wall-time throttle factor; 0 disables it.
	Speed uint64 `json:"speed"`

	// ALULatency is the cycle count for single-cycle ALU ops.
	ALULatency uint64 `json:"alu_latency"`

	// MulDivLatency is the cycle count for MUL/DIV.
	MulDivLatency uint64 `json:"mul_div_latency"`

	// MemoryLatency is the cycle count for loads and stores.
	MemoryLatency uint64 `json:"memory_latency"`
}

// Default returns the configuration matching the specification exactly:
// pipelined, renaming and forwarding all enabled, no throttle, and the
// §4.4/§4.5 cycle counts (1/10/100).
func Default() *Config {
	return &Config{
		Pipeline:        true,
		RenameRegisters: true,
		ForwardResults:  true,
		Speed:           0,
		ALULatency:      1,
		MulDivLatency:   10,
		MemoryLatency:   100,
	}
}

// Load reads a Config from a JSON file, starting from Default() so any
// field the file omits keeps its default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read timing config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse timing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize timing config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write timing config: %w", err)
	}
	return nil
}

// Validate checks that every latency is positive.
func (c *Config) Validate() error {
	if c.ALULatency == 0 {
		return fmt.Errorf("alu_latency must be > 0")
	}
	if c.MulDivLatency == 0 {
		return fmt.Errorf("mul_div_latency must be > 0")
	}
	if c.MemoryLatency == 0 {
		return fmt.Errorf("memory_latency must be > 0")
	}
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
