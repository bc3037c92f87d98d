package channel

import (
	"testing"

	"fieldbus-engine/pkg/config"
	"fieldbus-engine/pkg/pdu"
)

func point(id uint32, addr uint16, typ config.PointType, space config.RegisterSpace, access config.AccessMode) config.Point {
	return config.Point{ID: id, Address: addr, Type: typ, Space: space, Scale: 1, Access: access}
}

// TestBuildGroupsMergesContiguous tests that adjacent points of one
// function code collapse into a single request.
func TestBuildGroupsMergesContiguous(t *testing.T) {
	points := []config.Point{
		point(1, 100, config.TypeUint16, config.SpaceHolding, config.AccessRead),
		point(2, 101, config.TypeUint16, config.SpaceHolding, config.AccessRead),
		point(3, 102, config.TypeUint32, config.SpaceHolding, config.AccessRead),
	}

	groups := buildGroups(points)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	g := groups[0]
	if g.function != pdu.FuncReadHoldingRegisters || g.start != 100 || g.count != 4 {
		t.Errorf("group %+v", g)
	}
	if len(g.points) != 3 {
		t.Errorf("group carries %d points", len(g.points))
	}
}

// TestBuildGroupsSplitsOnGap tests that an address gap forces a new group
func TestBuildGroupsSplitsOnGap(t *testing.T) {
	points := []config.Point{
		point(1, 100, config.TypeUint16, config.SpaceHolding, config.AccessRead),
		point(2, 110, config.TypeUint16, config.SpaceHolding, config.AccessRead),
	}

	groups := buildGroups(points)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].start != 100 || groups[0].count != 1 {
		t.Errorf("first group %+v", groups[0])
	}
	if groups[1].start != 110 || groups[1].count != 1 {
		t.Errorf("second group %+v", groups[1])
	}
}

// TestBuildGroupsSeparatesFunctions tests that coils, discrete inputs
// and both register spaces never share a request.
func TestBuildGroupsSeparatesFunctions(t *testing.T) {
	points := []config.Point{
		point(1, 1, config.TypeCoil, "", config.AccessRead),
		point(2, 2, config.TypeDiscrete, "", config.AccessRead),
		point(3, 5, config.TypeUint16, config.SpaceHolding, config.AccessRead),
		point(4, 5, config.TypeUint16, config.SpaceInput, config.AccessRead),
	}

	groups := buildGroups(points)
	if len(groups) != 4 {
		t.Fatalf("expected 4 groups, got %d", len(groups))
	}

	seen := make(map[pdu.FunctionCode]bool)
	for _, g := range groups {
		seen[g.function] = true
	}
	for _, fc := range []pdu.FunctionCode{
		pdu.FuncReadCoils, pdu.FuncReadDiscreteInputs,
		pdu.FuncReadHoldingRegisters, pdu.FuncReadInputRegisters,
	} {
		if !seen[fc] {
			t.Errorf("no group for %s", fc)
		}
	}
}

// TestBuildGroupsHonorsRequestLimit tests that a group never exceeds
// the per-request register maximum.
func TestBuildGroupsHonorsRequestLimit(t *testing.T) {
	contiguous := func(n int) []config.Point {
		points := make([]config.Point, n)
		for i := range points {
			points[i] = point(uint32(i+1), uint16(i), config.TypeUint16, config.SpaceHolding, config.AccessRead)
		}
		return points
	}

	if groups := buildGroups(contiguous(125)); len(groups) != 1 {
		t.Errorf("125 contiguous registers should fit one group, got %d", len(groups))
	}

	groups := buildGroups(contiguous(126))
	if len(groups) != 2 {
		t.Fatalf("126 contiguous registers must split, got %d groups", len(groups))
	}
	if groups[0].count != 125 || groups[1].count != 1 {
		t.Errorf("split counts %d and %d", groups[0].count, groups[1].count)
	}
}

// TestBuildGroupsSkipsWriteOnly tests that write-only points never poll
func TestBuildGroupsSkipsWriteOnly(t *testing.T) {
	points := []config.Point{
		point(1, 100, config.TypeUint16, config.SpaceHolding, config.AccessWrite),
	}
	if groups := buildGroups(points); len(groups) != 0 {
		t.Errorf("write-only point produced %d groups", len(groups))
	}
}
