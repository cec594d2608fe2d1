package config

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Errors
var (
	ErrNoCreator      = errors.New("creator address is required")
	ErrInvalidCreator = errors.New("creator is not a valid 20-byte hex address")
	ErrInvalidPattern = errors.New("pattern fragment is not valid hex")
)

// Config holds the options for one search run. Built once from flags,
// validated, then never mutated.
type Config struct {
	Creator     string
	StartsWith  string
	EndsWith    string
	Silent      bool
	MaxAttempts uint64
	Parallel    bool
	Workers     int
}

// NewConfig creates a configuration with default values.
func NewConfig() *Config {
	return &Config{
		MaxAttempts: math.MaxUint64, // effectively unbounded
		Workers:     runtime.NumCPU(),
	}
}

// Validate checks the configuration. Malformed inputs are fatal here so the
// derivation loop never runs against them.
func (c *Config) Validate() error {
	if c.Creator == "" {
		return ErrNoCreator
	}
	if !common.IsHexAddress(c.Creator) {
		return fmt.Errorf("%w: %q", ErrInvalidCreator, c.Creator)
	}
	if !isHexFragment(c.StartsWith) {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, c.StartsWith)
	}
	if !isHexFragment(c.EndsWith) {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, c.EndsWith)
	}
	return nil
}

// CreatorAddress returns the normalized creator address.
func (c *Config) CreatorAddress() common.Address {
	return common.HexToAddress(c.Creator)
}

// Prefix returns the starts-with fragment normalized for matching: lowercase
// and anchored with the 0x marker. Empty when unset.
func (c *Config) Prefix() string {
	if c.StartsWith == "" {
		return ""
	}
	return "0x" + strings.ToLower(stripMarker(c.StartsWith))
}

// Suffix returns the ends-with fragment normalized for matching (lowercase,
// no marker). Empty when unset.
func (c *Config) Suffix() string {
	return strings.ToLower(stripMarker(c.EndsWith))
}

// WorkerCount returns the parallel worker count, defaulting to one worker per
// logical CPU.
func (c *Config) WorkerCount() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// TargetDescription returns a human-readable description of the pattern.
func (c *Config) TargetDescription() string {
	switch {
	case c.StartsWith != "" && c.EndsWith != "":
		return fmt.Sprintf("prefix %s and suffix %s", c.Prefix(), c.Suffix())
	case c.StartsWith != "":
		return "prefix " + c.Prefix()
	case c.EndsWith != "":
		return "suffix " + c.Suffix()
	}
	return "any address"
}

func stripMarker(s string) string {
	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return s[2:]
	}
	return s
}

func isHexFragment(s string) bool {
	for _, r := range stripMarker(s) {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
