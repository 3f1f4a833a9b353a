// Package config defines the YAML-driven engine configuration, grounded on
// the teacher's WorldConfig/DefaultWorldConfig pattern: a flat, doc-commented
// struct of tunables with a concrete-literal default constructor, here
// carrying JSON and YAML tags for gopkg.in/yaml.v3 round-tripping.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LayerMatrix is a symmetric boolean table indexed by layer id pairs,
// consulted by the narrow-phase detector before any shape test (spec.md
// §3's "collision matrix").
type LayerMatrix [][]bool

// Allows reports whether layers a and b are permitted to collide. Out of
// range layer ids are treated as non-colliding rather than panicking,
// since layer ids in practice come from gameplay data that may not match
// the configured matrix size exactly.
func (m LayerMatrix) Allows(a, b int) bool {
	if a < 0 || b < 0 || a >= len(m) || b >= len(m[a]) {
		return false
	}
	return m[a][b]
}

// NewLayerMatrix builds an n x n matrix where every layer collides with
// every other layer by default.
func NewLayerMatrix(n int) LayerMatrix {
	m := make(LayerMatrix, n)
	for i := range m {
		m[i] = make([]bool, n)
		for j := range m[i] {
			m[i][j] = true
		}
	}
	return m
}

// Settings holds every physics and engine tunable the driver and solver
// read each tick.
type Settings struct {
	// Gravity is added to every non-static rigidbody's acceleration during
	// the driver's prepare phase.
	Gravity Vector2 `json:"gravity" yaml:"gravity"`

	// FixedTimestep is the dt (seconds) passed to each physics step;
	// the driver is expected to be invoked once per fixed step, not once
	// per render frame.
	FixedTimestep float64 `json:"fixed_timestep" yaml:"fixed_timestep"`

	// CorrectionPercent and Slop parameterize the solver's positional
	// correction pass (spec.md §4.7): correction_perc and slop respectively.
	CorrectionPercent float64 `json:"correction_percent" yaml:"correction_percent"`
	Slop              float64 `json:"slop" yaml:"slop"`

	// AcceleratorCellSize is the world-space cell width/height physics.Grid
	// buckets colliders into.
	AcceleratorCellSize float64 `json:"accelerator_cell_size" yaml:"accelerator_cell_size"`

	// Layers is the symmetric collision matrix consulted before narrow
	// phase. A nil matrix is treated by the driver as "every layer collides
	// with every layer".
	Layers LayerMatrix `json:"layers" yaml:"layers"`

	// DebugLogging enables one structured slog line per physics step
	// (contact count, solved count, broad-phase candidates) and NaN
	// sanity-checks on every velocity/position the solver touches.
	DebugLogging bool `json:"debug_logging" yaml:"debug_logging"`
}

// Vector2 mirrors components.Vector2's shape for YAML unmarshaling without
// config depending on the components package (config sits below physics
// in the dependency graph: physics depends on config, and config imports
// neither components nor physics).
type Vector2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// DefaultSettings returns concrete literal defaults matching the constants
// named throughout spec.md §4.7: correction_perc=0.2, slop=0.01.
func DefaultSettings() Settings {
	return Settings{
		Gravity:             Vector2{X: 0, Y: -9.8},
		FixedTimestep:       1.0 / 60.0,
		CorrectionPercent:   0.2,
		Slop:                0.01,
		AcceleratorCellSize: 64.0,
		Layers:              NewLayerMatrix(8),
		DebugLogging:        false,
	}
}

// Load reads Settings from a YAML file at path, falling back to
// DefaultSettings for any field the file omits by unmarshaling on top of
// the defaults.
func Load(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path as YAML.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
