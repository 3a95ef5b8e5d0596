package wfc

import (
	"errors"
	"fmt"
)

// GenerateConfig contains parameters for map generation.
type GenerateConfig struct {
	Width, Height int
	NumPatterns   int
	Table         *PropagationTable
	Weights       []float64
	// InitialWave optionally pins cells before solving; nil means
	// every cell starts unconstrained.
	InitialWave []uint8
	// Seed is the base seed; each retry derives its own solver seed
	// from it so the whole generation stays reproducible.
	Seed int64
	// MaxRetries bounds the number of seeds tried before giving up.
	MaxRetries int
}

// DefaultGenerateConfig returns reasonable defaults for a map of the
// given size.
func DefaultGenerateConfig(width, height int, seed int64) GenerateConfig {
	return GenerateConfig{
		Width:      width,
		Height:     height,
		Seed:       seed,
		MaxRetries: 50,
	}
}

// GeneratedMap is the output of a successful generation.
type GeneratedMap struct {
	Width, Height int
	Cells         []uint8 // pattern index per cell, row-major
	Seed          int64   // the solver seed that succeeded
	Attempts      int
}

// Generator retries the solver with derived seeds until a solve
// succeeds. The solver itself never backtracks; retrying with a fresh
// seed is the caller-side recovery for contradictions, and anything
// other than a contradiction aborts the retry loop.
type Generator struct {
	config GenerateConfig
}

// NewGenerator creates a generator for the given configuration.
func NewGenerator(config GenerateConfig) *Generator {
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	return &Generator{config: config}
}

// Generate runs solve attempts until one collapses fully. Attempt n
// uses seed base+n*1000, the same derivation for every call, so a
// generation is reproducible from its base seed alone.
func (g *Generator) Generate() (*GeneratedMap, error) {
	cfg := g.config

	initial := cfg.InitialWave
	if initial == nil {
		wave, err := NewWave(cfg.Width, cfg.Height, cfg.NumPatterns)
		if err != nil {
			return nil, err
		}
		initial = wave.cells
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		seed := cfg.Seed + int64(attempt)*1000

		cells, err := Solve(cfg.Width, cfg.Height, cfg.NumPatterns, cfg.Table, cfg.Weights, initial, seed)
		if err != nil {
			if !errors.Is(err, ErrContradiction) {
				return nil, err
			}
			lastErr = err
			continue
		}

		return &GeneratedMap{
			Width:    cfg.Width,
			Height:   cfg.Height,
			Cells:    cells,
			Seed:     seed,
			Attempts: attempt + 1,
		}, nil
	}

	return nil, fmt.Errorf("wfc: no solution in %d attempts: %w", cfg.MaxRetries, lastErr)
}
