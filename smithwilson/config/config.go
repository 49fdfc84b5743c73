package config

import (
	"runtime"
	"sync/atomic"
)

// Config holds the numerical and concurrency parameters of curve construction.
type Config struct {
	// MaxConditionNumber is the largest acceptable condition number of the
	// factorised kernel matrix. Above it the weights are not trusted and the
	// fit fails with a numerical error.
	MaxConditionNumber float64

	// Workers bounds the number of goroutines used by the parallel builder.
	// Zero means runtime.GOMAXPROCS(0).
	Workers int

	// ChunkSize is the number of consecutive grid points evaluated by one
	// task of the parallel builder. Zero spreads the grid evenly over Workers.
	ChunkSize int
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	MaxConditionNumber: 1e15,
	Workers:            0,
	ChunkSize:          0,
}

// active holds the configuration in use. Defaults to DefaultConfig.
var active atomic.Pointer[Config]

func init() {
	c := DefaultConfig
	active.Store(&c)
}

// SetConfig replaces the active configuration. Safe for concurrent use;
// calls already in flight keep the snapshot they started with.
func SetConfig(c Config) {
	active.Store(&c)
}

// GetConfig returns a snapshot of the active configuration.
func GetConfig() Config {
	return *active.Load()
}

// EffectiveWorkers resolves Workers, falling back to GOMAXPROCS.
func (c Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// EffectiveChunkSize resolves ChunkSize for a grid of n points.
func (c Config) EffectiveChunkSize(n int) int {
	if c.ChunkSize > 0 {
		return c.ChunkSize
	}
	workers := c.EffectiveWorkers()
	size := (n + workers - 1) / workers
	if size < 1 {
		return 1
	}
	return size
}
