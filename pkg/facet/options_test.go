package facet

import (
	"errors"
	gomath "math"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	o := Default()
	if err := o.Validate(); err != nil {
		t.Fatalf("default options invalid: %v", err)
	}
	if o.AngleTolerance.Radians() != gomath.Pi/8 {
		t.Errorf("expected angle tolerance pi/8, got %v", o.AngleTolerance.Radians())
	}
	if !o.NormalsRequired || !o.ParamsRequired {
		t.Error("expected normals and params by default")
	}
	if o.EdgeChainsRequired {
		t.Error("expected edge chains off by default")
	}
	if o.Tolerances.SmallRadialFraction != 0.01 {
		t.Errorf("expected small radial fraction 0.01, got %v", o.Tolerances.SmallRadialFraction)
	}
	if o.Tolerances.FrameReset != 1e-6 {
		t.Errorf("expected frame reset 1e-6, got %v", o.Tolerances.FrameReset)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"negative edge", func(o *Options) { o.MaxEdgeLength = -1 }},
		{"infinite edge", func(o *Options) { o.MaxEdgeLength = gomath.Inf(1) }},
		{"negative angle", func(o *Options) { o.AngleTolerance = -0.1 }},
		{"max below min", func(o *Options) { o.MinPerEllipse = 8; o.MaxPerEllipse = 4 }},
		{"bad mode", func(o *Options) { o.ParamMode = 7 }},
		{"NaN tolerance", func(o *Options) { o.Tolerances.PointMatch = gomath.NaN() }},
		{"negative frame reset", func(o *Options) { o.Tolerances.FrameReset = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Default()
			tt.modify(&o)
			if err := o.Validate(); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestValidateReportsFirstTolerance(t *testing.T) {
	o := Default()
	o.Tolerances.FrameReset = -1
	o.Tolerances.Parallel = -1
	o.Tolerances.NormalMatch = gomath.Inf(1)
	for i := 0; i < 20; i++ {
		err := o.Validate()
		if !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("expected ErrInvalidOptions, got %v", err)
		}
		if want := "invalid facet options: tolerance normal_match +Inf"; err.Error() != want {
			t.Fatalf("got %q, want %q", err, want)
		}
	}
}

func TestOptionsYAML(t *testing.T) {
	src := `
max_edge_length: 0.25
angle_tolerance: 0.1
param_mode: 01larger
edge_chains: true
tolerances:
  point_match: 0.001
`
	o := Default()
	if err := yaml.Unmarshal([]byte(src), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.MaxEdgeLength != 0.25 {
		t.Errorf("expected max edge 0.25, got %v", o.MaxEdgeLength)
	}
	if o.AngleTolerance.Radians() != 0.1 {
		t.Errorf("expected angle tolerance 0.1, got %v", o.AngleTolerance)
	}
	if o.ParamMode != ParamZeroOneLargerAxis {
		t.Errorf("expected 01larger, got %v", o.ParamMode)
	}
	if !o.EdgeChainsRequired {
		t.Error("expected edge chains")
	}
	if o.Tolerances.PointMatch != 0.001 {
		t.Errorf("expected point match 0.001, got %v", o.Tolerances.PointMatch)
	}
	// Unset nested fields keep their defaults.
	if o.Tolerances.SmallRadialFraction != 0.01 {
		t.Errorf("expected default small radial fraction, got %v", o.Tolerances.SmallRadialFraction)
	}

	out, err := yaml.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Options
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal round trip: %v", err)
	}
	if back != o {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, o)
	}
}

func TestParamModeYAMLInvalid(t *testing.T) {
	var o Options
	if err := yaml.Unmarshal([]byte("param_mode: sideways\n"), &o); err == nil {
		t.Error("expected error for unknown param mode")
	}
}
