// Package facet holds the faceting options that control stroke density,
// matching tolerances and optional mesh outputs, and the stroke-count policy
// derived from them.
package facet

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"github.com/golang/geo/s1"
	"gopkg.in/yaml.v3"
)

// ErrInvalidOptions is returned by Validate.
var ErrInvalidOptions = errors.New("invalid facet options")

// ParamMode selects how surface parameters are scaled.
type ParamMode int

// Parameter modes.
const (
	// ParamDistance keeps raw distances along each surface direction.
	ParamDistance ParamMode = iota
	// ParamZeroOneBothAxes normalizes each direction to [0,1].
	ParamZeroOneBothAxes
	// ParamZeroOneLargerAxis maps the larger direction to [0,1] and scales
	// the smaller one by the same factor.
	ParamZeroOneLargerAxis
)

var paramModeNames = [...]string{
	ParamDistance:          "distance",
	ParamZeroOneBothAxes:   "01both",
	ParamZeroOneLargerAxis: "01larger",
}

// String returns the YAML name of the mode.
func (m ParamMode) String() string {
	if m >= 0 && int(m) < len(paramModeNames) {
		return paramModeNames[m]
	}
	return fmt.Sprintf("parammode(%d)", int(m))
}

// ParseParamMode converts a name such as "01both" to a ParamMode.
func ParseParamMode(s string) (ParamMode, error) {
	for i, name := range paramModeNames {
		if strings.EqualFold(s, name) {
			return ParamMode(i), nil
		}
	}
	return ParamDistance, fmt.Errorf("%w: unknown param mode %q", ErrInvalidOptions, s)
}

// MarshalYAML writes the mode by name.
func (m ParamMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML reads the mode by name.
func (m *ParamMode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	mode, err := ParseParamMode(s)
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// Tolerances holds the fixed numeric thresholds used while building.
type Tolerances struct {
	PointMatch          float64 `yaml:"point_match"`           // registry weld distance for points
	NormalMatch         float64 `yaml:"normal_match"`          // registry weld distance for normals
	ParamMatch          float64 `yaml:"param_match"`           // registry weld distance for params
	DegeneratePoint     float64 `yaml:"degenerate_point"`      // consecutive stroke points closer than this coalesce
	Pole                float64 `yaml:"pole"`                  // |cos(latitude)| below this collapses to a pole
	SmallRadialFraction float64 `yaml:"small_radial_fraction"` // near-axis radius, as a fraction of the largest radius
	Parallel            float64 `yaml:"parallel"`              // sine of the angle below which tangents are parallel
	FrameReset          float64 `yaml:"frame_reset"`           // relative length below which a transported tube frame restarts
}

// Options controls one construction call sequence.
type Options struct {
	MaxEdgeLength      float64    `yaml:"max_edge_length"` // 0 disables the length criterion
	AngleTolerance     s1.Angle   `yaml:"angle_tolerance"` // radians; 0 disables the angle criterion
	MinPerEllipse      int        `yaml:"min_per_ellipse"`
	MaxPerEllipse      int        `yaml:"max_per_ellipse"` // 0 means unlimited
	ParamMode          ParamMode  `yaml:"param_mode"`
	NormalsRequired    bool       `yaml:"normals"`
	ParamsRequired     bool       `yaml:"params"`
	EdgeChainsRequired bool       `yaml:"edge_chains"`
	Tolerances         Tolerances `yaml:"tolerances"`
}

// DefaultTolerances returns the standard thresholds.
func DefaultTolerances() Tolerances {
	return Tolerances{
		PointMatch:          1e-9,
		NormalMatch:         1e-10,
		ParamMatch:          1e-10,
		DegeneratePoint:     1e-12,
		Pole:                1e-10,
		SmallRadialFraction: 0.01,
		Parallel:            1e-10,
		FrameReset:          1e-6,
	}
}

// Default returns Options with sensible default values.
func Default() Options {
	return Options{
		MaxEdgeLength:      0,
		AngleTolerance:     s1.Angle(gomath.Pi / 8),
		MinPerEllipse:      4,
		MaxPerEllipse:      0,
		ParamMode:          ParamDistance,
		NormalsRequired:    true,
		ParamsRequired:     true,
		EdgeChainsRequired: false,
		Tolerances:         DefaultTolerances(),
	}
}

// Validate reports the first inconsistent setting.
func (o Options) Validate() error {
	if !nonNegative(o.MaxEdgeLength) {
		return fmt.Errorf("%w: max_edge_length %v", ErrInvalidOptions, o.MaxEdgeLength)
	}
	if !nonNegative(o.AngleTolerance.Radians()) {
		return fmt.Errorf("%w: angle_tolerance %v", ErrInvalidOptions, o.AngleTolerance)
	}
	if o.MinPerEllipse < 0 || o.MaxPerEllipse < 0 {
		return fmt.Errorf("%w: per-ellipse limits must not be negative", ErrInvalidOptions)
	}
	if o.MaxPerEllipse > 0 && o.MaxPerEllipse < o.MinPerEllipse {
		return fmt.Errorf("%w: max_per_ellipse %d below min_per_ellipse %d", ErrInvalidOptions, o.MaxPerEllipse, o.MinPerEllipse)
	}
	if o.ParamMode < ParamDistance || o.ParamMode > ParamZeroOneLargerAxis {
		return fmt.Errorf("%w: param mode %d", ErrInvalidOptions, int(o.ParamMode))
	}
	tol := o.Tolerances
	for _, t := range []struct {
		name string
		v    float64
	}{
		{"point_match", tol.PointMatch},
		{"normal_match", tol.NormalMatch},
		{"param_match", tol.ParamMatch},
		{"degenerate_point", tol.DegeneratePoint},
		{"pole", tol.Pole},
		{"small_radial_fraction", tol.SmallRadialFraction},
		{"parallel", tol.Parallel},
		{"frame_reset", tol.FrameReset},
	} {
		if !nonNegative(t.v) {
			return fmt.Errorf("%w: tolerance %s %v", ErrInvalidOptions, t.name, t.v)
		}
	}
	return nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !gomath.IsInf(v, 0)
}
