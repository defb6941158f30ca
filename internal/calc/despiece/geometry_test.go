package despiece

import (
	"math"
	"strings"
	"testing"
)

func approxEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func threeSpanConfig() BeamConfiguration {
	return BeamConfiguration{
		Spans: []SpanGeometry{
			{ClearSpanM: 3.2, SectionBaseCm: 30, SectionHeightCm: 40},
			{ClearSpanM: 4.0, SectionBaseCm: 30, SectionHeightCm: 40},
			{ClearSpanM: 3.2, SectionBaseCm: 30, SectionHeightCm: 40},
		},
		Supports: []AxisSupport{
			{Label: "A", WidthCm: 35},
			{Label: "B", WidthCm: 35},
			{Label: "C", WidthCm: 35},
			{Label: "D", WidthCm: 35},
		},
		CoverCm: 4,
	}
}

func TestMapBeamAxis_ThreeSpansFourSupports(t *testing.T) {
	cfg := threeSpanConfig()
	axis := MapBeamAxis(cfg.Spans, cfg.Supports)

	if !approxEq(axis.TotalLengthM, 11.80) {
		t.Fatalf("total length: got %.4f, want 11.80", axis.TotalLengthM)
	}
	want := []SpanRange{
		{SpanIndex: 0, StartM: 0.35, EndM: 3.55},
		{SpanIndex: 1, StartM: 3.90, EndM: 7.90},
		{SpanIndex: 2, StartM: 8.25, EndM: 11.45},
	}
	if len(axis.SpanRanges) != len(want) {
		t.Fatalf("span ranges: got %d, want %d", len(axis.SpanRanges), len(want))
	}
	for i, w := range want {
		got := axis.SpanRanges[i]
		if got.SpanIndex != w.SpanIndex || !approxEq(got.StartM, w.StartM) || !approxEq(got.EndM, w.EndM) {
			t.Errorf("span %d: got [%.2f, %.2f], want [%.2f, %.2f]",
				i, got.StartM, got.EndM, w.StartM, w.EndM)
		}
	}
	if len(axis.Supports) != 4 {
		t.Fatalf("supports: got %d, want 4", len(axis.Supports))
	}
	last := axis.Supports[3]
	if !approxEq(last.StartM, 11.45) || !approxEq(last.EndM, 11.80) {
		t.Errorf("last support: got [%.2f, %.2f], want [11.45, 11.80]", last.StartM, last.EndM)
	}
}

func TestMapBeamAxis_AlternationIsContiguous(t *testing.T) {
	cfg := threeSpanConfig()
	axis := MapBeamAxis(cfg.Spans, cfg.Supports)

	for i, r := range axis.SpanRanges {
		sup := axis.Supports[i]
		if !approxEq(sup.EndM, r.StartM) {
			t.Errorf("support %d end %.4f does not meet span %d start %.4f", i, sup.EndM, i, r.StartM)
		}
		next := axis.Supports[i+1]
		if !approxEq(r.EndM, next.StartM) {
			t.Errorf("span %d end %.4f does not meet support %d start %.4f", i, r.EndM, i+1, next.StartM)
		}
	}
}

func TestMapBeamAxis_MissingTrailingSupports(t *testing.T) {
	spans := []SpanGeometry{
		{ClearSpanM: 4.0, SectionBaseCm: 30, SectionHeightCm: 40},
		{ClearSpanM: 5.0, SectionBaseCm: 30, SectionHeightCm: 40},
	}
	supports := []AxisSupport{{Label: "A", WidthCm: 40}}
	axis := MapBeamAxis(spans, supports)

	if len(axis.SpanRanges) != 2 {
		t.Fatalf("expected both spans mapped, got %d", len(axis.SpanRanges))
	}
	if !approxEq(axis.TotalLengthM, 9.40) {
		t.Errorf("total length: got %.4f, want 9.40", axis.TotalLengthM)
	}
	if !approxEq(axis.SpanRanges[1].StartM, 4.40) || !approxEq(axis.SpanRanges[1].EndM, 9.40) {
		t.Errorf("second span: got [%.2f, %.2f], want [4.40, 9.40]",
			axis.SpanRanges[1].StartM, axis.SpanRanges[1].EndM)
	}
}

func TestMapBeamAxis_NegativeSpanCollapses(t *testing.T) {
	spans := []SpanGeometry{{ClearSpanM: -2.0, SectionBaseCm: 30, SectionHeightCm: 40}}
	supports := []AxisSupport{{WidthCm: 30}, {WidthCm: 30}}
	axis := MapBeamAxis(spans, supports)

	r := axis.SpanRanges[0]
	if !approxEq(r.StartM, r.EndM) {
		t.Errorf("negative span should collapse, got [%.2f, %.2f]", r.StartM, r.EndM)
	}
	if !approxEq(axis.TotalLengthM, 0.60) {
		t.Errorf("total length: got %.4f, want 0.60", axis.TotalLengthM)
	}
}

func TestMapBeamAxis_Empty(t *testing.T) {
	axis := MapBeamAxis(nil, nil)
	if len(axis.SpanRanges) != 0 || len(axis.Supports) != 0 || axis.TotalLengthM != 0 {
		t.Errorf("empty input should map to an empty axis, got %+v", axis)
	}
}

func TestProhibitedSpliceZones_InternalSupportsOnly(t *testing.T) {
	cfg := threeSpanConfig()
	axis := MapBeamAxis(cfg.Spans, cfg.Supports)
	zones := prohibitedSpliceZones(cfg, axis)

	if len(zones) != 2 {
		t.Fatalf("expected zones at B and C only, got %d", len(zones))
	}
	// d = (40 - 4) / 100 = 0.36 m, zone length 2d = 0.72 m
	for i, z := range zones {
		if !approxEq(z.EndM-z.StartM, 0.72) {
			t.Errorf("zone %d length: got %.4f, want 0.72", i, z.EndM-z.StartM)
		}
	}
	if !approxEq(zones[0].StartM, 3.365) || !approxEq(zones[0].EndM, 4.085) {
		t.Errorf("zone B: got [%.3f, %.3f], want [3.365, 4.085]", zones[0].StartM, zones[0].EndM)
	}
	if !strings.Contains(zones[0].Description, "apoyo B") {
		t.Errorf("zone B description: %q", zones[0].Description)
	}
	if !strings.Contains(zones[1].Description, "apoyo C") {
		t.Errorf("zone C description: %q", zones[1].Description)
	}
}

func TestProhibitedSpliceZones_SingleSpanHasNone(t *testing.T) {
	cfg := BeamConfiguration{
		Spans:    []SpanGeometry{{ClearSpanM: 5.0, SectionBaseCm: 30, SectionHeightCm: 40}},
		Supports: []AxisSupport{{WidthCm: 30}, {WidthCm: 30}},
		CoverCm:  4,
	}
	axis := MapBeamAxis(cfg.Spans, cfg.Supports)
	if zones := prohibitedSpliceZones(cfg, axis); len(zones) != 0 {
		t.Errorf("no internal supports, expected no zones, got %d", len(zones))
	}
}

func TestProhibitedSpliceZones_ClampedToBeam(t *testing.T) {
	cfg := BeamConfiguration{
		Spans: []SpanGeometry{
			{ClearSpanM: 0.5, SectionBaseCm: 40, SectionHeightCm: 200},
			{ClearSpanM: 0.5, SectionBaseCm: 40, SectionHeightCm: 200},
		},
		Supports: []AxisSupport{{WidthCm: 35}, {WidthCm: 35}, {WidthCm: 35}},
		CoverCm:  4,
	}
	axis := MapBeamAxis(cfg.Spans, cfg.Supports)
	zones := prohibitedSpliceZones(cfg, axis)
	if len(zones) != 1 {
		t.Fatalf("expected one zone, got %d", len(zones))
	}
	if zones[0].StartM < 0 || zones[0].EndM > axis.TotalLengthM {
		t.Errorf("zone [%.3f, %.3f] exceeds beam [0, %.3f]",
			zones[0].StartM, zones[0].EndM, axis.TotalLengthM)
	}
}

func TestOverlapM(t *testing.T) {
	cases := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd, want float64
	}{
		{"disjoint", 0, 1, 2, 3, 0},
		{"touching", 0, 1, 1, 2, 0},
		{"partial", 0, 2, 1, 3, 1},
		{"nested", 0, 10, 4, 6, 2},
		{"identical", 1, 2, 1, 2, 1},
	}
	for _, c := range cases {
		if got := overlapM(c.aStart, c.aEnd, c.bStart, c.bEnd); !approxEq(got, c.want) {
			t.Errorf("%s: got %.4f, want %.4f", c.name, got, c.want)
		}
	}
}
