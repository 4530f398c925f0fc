package polyface

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Faultbox/polyface/pkg/math"
)

func TestMeshValidate(t *testing.T) {
	points := []math.Vec3{{}, {X: 1}, {Y: 1}}
	tests := []struct {
		name    string
		mesh    Mesh
		wantErr bool
	}{
		{
			name: "valid",
			mesh: Mesh{
				Points:      points,
				PointIndex:  []int{0, 1, 2, Terminator},
				EdgeVisible: []bool{true, true, true, false},
				Normals:     []math.Vec3{{Z: 1}},
				NormalIndex: []int{0, 0, 0, Terminator},
			},
		},
		{
			name: "index out of range",
			mesh: Mesh{
				Points:      points,
				PointIndex:  []int{0, 1, 3, Terminator},
				EdgeVisible: make([]bool, 4),
			},
			wantErr: true,
		},
		{
			name: "open facet",
			mesh: Mesh{
				Points:      points,
				PointIndex:  []int{0, 1, 2},
				EdgeVisible: make([]bool, 3),
			},
			wantErr: true,
		},
		{
			name: "two corners",
			mesh: Mesh{
				Points:      points,
				PointIndex:  []int{0, 1, Terminator},
				EdgeVisible: make([]bool, 3),
			},
			wantErr: true,
		},
		{
			name: "visibility length",
			mesh: Mesh{
				Points:      points,
				PointIndex:  []int{0, 1, 2, Terminator},
				EdgeVisible: make([]bool, 3),
			},
			wantErr: true,
		},
		{
			name: "normal stream misaligned",
			mesh: Mesh{
				Points:      points,
				PointIndex:  []int{0, 1, 2, Terminator},
				EdgeVisible: make([]bool, 4),
				Normals:     []math.Vec3{{Z: 1}},
				NormalIndex: []int{0, 0, Terminator},
			},
			wantErr: true,
		},
		{
			name: "edge chain out of range",
			mesh: Mesh{
				Points:     points,
				EdgeChains: []EdgeChain{{Role: Lateral, Indices: []int{0, 7}}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMeshRange(t *testing.T) {
	var empty Mesh
	if _, ok := empty.Range(); ok {
		t.Error("empty mesh reported a range")
	}
	m := Mesh{Points: []math.Vec3{{X: 1, Y: -2, Z: 3}, {X: -1, Y: 4, Z: 0}, {Z: 5}}}
	got, ok := m.Range()
	if !ok {
		t.Fatal("no range")
	}
	want := Bounds{Min: math.Vec3{X: -1, Y: -2}, Max: math.Vec3{X: 1, Y: 4, Z: 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Range() mismatch (-want +got):\n%s", diff)
	}
}

func TestFacetsDecode(t *testing.T) {
	m := Mesh{
		Points:      []math.Vec3{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}},
		PointIndex:  []int{0, 1, 2, Terminator, 1, 3, 2, Terminator},
		EdgeVisible: []bool{true, false, true, false, true, true, false, false},
	}
	facets := m.Facets()
	want := []Facet{
		{Points: []int{0, 1, 2}, Visible: []bool{true, false, true}},
		{Points: []int{1, 3, 2}, Visible: []bool{true, true, false}},
	}
	if diff := cmp.Diff(want, facets); diff != "" {
		t.Errorf("Facets() mismatch (-want +got):\n%s", diff)
	}
	if m.FacetCount() != 2 {
		t.Errorf("FacetCount() = %d", m.FacetCount())
	}
	if ProfileEnd.String() != "profile-end" || EdgeChainRole(9).String() != "role(9)" {
		t.Error("EdgeChainRole names")
	}
}
