package heap

import (
	"fmt"
	"os"
)

// DefaultThreshold is the size at or above which a request (payload plus
// header) is served by a fresh OS mapping instead of the break region.
const DefaultThreshold = 128 * 1024

// Config holds allocator configuration.
type Config struct {
	// Threshold is the mapping threshold for Malloc and Realloc. Calloc
	// uses the backend page size instead.
	Threshold uintptr

	// PropagateOOM makes backend failures surface as nil payloads rather
	// than invoking FatalHandler. Meant for embedding environments and
	// fault-injection tests.
	PropagateOOM bool

	// FatalHandler runs when the backend fails and PropagateOOM is off.
	// It must not return.
	FatalHandler func(error)
}

// DefaultConfig returns the reference configuration: 128 KiB threshold and
// a fatal handler that writes a diagnostic and exits, the way the platform
// allocator's DIE path behaves.
func DefaultConfig() *Config {
	return &Config{
		Threshold:    DefaultThreshold,
		FatalHandler: fatalExit,
	}
}

func fatalExit(err error) {
	fmt.Fprintf(os.Stderr, "osmem: %v\n", err)
	os.Exit(1)
}

// Option configures an Allocator at construction time.
type Option func(*Config)

// WithThreshold overrides the mapping threshold.
func WithThreshold(threshold uintptr) Option {
	return func(c *Config) { c.Threshold = threshold }
}

// WithPropagateOOM selects nil-return OOM handling over the fatal handler.
func WithPropagateOOM(propagate bool) Option {
	return func(c *Config) { c.PropagateOOM = propagate }
}

// WithFatalHandler overrides the fatal OOM handler.
func WithFatalHandler(handler func(error)) Option {
	return func(c *Config) { c.FatalHandler = handler }
}
