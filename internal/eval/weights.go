package eval

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrUnknownPreset = errors.New("unknown evaluator preset")

// Weights scales each feature of a position. Zero disables a feature.
type Weights struct {
	PathDiff     float64 `json:"path_diff" yaml:"path_diff"`
	Pieces       float64 `json:"pieces" yaml:"pieces"`
	Triangles    float64 `json:"triangles" yaml:"triangles"`
	EdgePressure float64 `json:"edge_pressure" yaml:"edge_pressure"`
	Centre       float64 `json:"centre" yaml:"centre"`
}

func (w Weights) IsZero() bool {
	return w == Weights{}
}

const (
	PresetBalanced  = "balanced"
	PresetPath      = "path"
	PresetMaterial  = "material"
	PresetStructure = "structure"
	PresetCentral   = "central"
)

var presets = map[string]Weights{
	PresetBalanced:  {PathDiff: 10, Pieces: 2, Triangles: 1, EdgePressure: 1},
	PresetPath:      {PathDiff: 1},
	PresetMaterial:  {PathDiff: 1, Pieces: 10},
	PresetStructure: {PathDiff: 6, Pieces: 1, Triangles: 4, EdgePressure: 3},
	PresetCentral:   {PathDiff: 6, Pieces: 1, Centre: 3},
}

func DefaultWeights() Weights {
	return presets[PresetBalanced]
}

// ParsePreset resolves a preset name. The empty name is the default.
func ParsePreset(name string) (Weights, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return DefaultWeights(), nil
	}
	w, ok := presets[key]
	if !ok {
		return Weights{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return w, nil
}

func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
