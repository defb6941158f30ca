package despiece

import (
	"math"
	"testing"
)

func longitudinalGroup(mark string, qty int, lengthM float64) GroupedBar {
	return GroupedBar{
		RebarSegment: RebarSegment{Diameter: mark, Type: BarContinuous, Quantity: qty, LengthM: lengthM},
	}
}

func TestBuildMaterialList_WeightRoundsToOneDecimal(t *testing.T) {
	items := buildMaterialList(materialInputs{
		Bottom:       []GroupedBar{longitudinalGroup("#5", 3, 6.0)},
		StockLengthM: 6,
		Estimator:    StandardStirrupLength,
		Densities:    map[string]float64{"#5": 1.55},
	})
	if len(items) != 1 {
		t.Fatalf("expected one row, got %d", len(items))
	}
	row := items[0]
	if !approxEq(row.Pieces, 3) || !approxEq(row.TotalLengthM, 18.0) {
		t.Errorf("pieces/length: got %.1f / %.1f, want 3.0 / 18.0", row.Pieces, row.TotalLengthM)
	}
	if !approxEq(row.WeightKg, 27.9) {
		t.Errorf("weight: got %.4f, want 27.9", row.WeightKg)
	}
	if !approxEq(row.WastePercentage, 0) {
		t.Errorf("18.0 m fits 3 stock bars exactly, waste: got %.2f", row.WastePercentage)
	}
}

func TestBuildMaterialList_WastePercentage(t *testing.T) {
	items := buildMaterialList(materialInputs{
		Top:          []GroupedBar{longitudinalGroup("#4", 2, 8.0)},
		StockLengthM: 6,
		Estimator:    StandardStirrupLength,
		Densities:    LinearDensityKgM,
	})
	if len(items) != 1 {
		t.Fatalf("expected one row, got %d", len(items))
	}
	// 16.0 m needs 3 bars of 6 m, waste (18 - 16) / 18
	if want := round1(2.0 / 18.0 * 100.0); !approxEq(items[0].WastePercentage, want) {
		t.Errorf("waste: got %.2f, want %.2f", items[0].WastePercentage, want)
	}
}

func TestBuildMaterialList_OrdersByMark(t *testing.T) {
	items := buildMaterialList(materialInputs{
		Top:       []GroupedBar{longitudinalGroup("#6", 2, 5.0)},
		Bottom:    []GroupedBar{longitudinalGroup("#4", 2, 5.0)},
		Estimator: StandardStirrupLength,
		Densities: LinearDensityKgM,
	})
	if len(items) != 2 {
		t.Fatalf("expected two rows, got %d", len(items))
	}
	if items[0].Diameter != "#4" || items[1].Diameter != "#6" {
		t.Errorf("rows out of order: %s, %s", items[0].Diameter, items[1].Diameter)
	}
}

func TestBuildMaterialList_SuppressesDegenerateRows(t *testing.T) {
	items := buildMaterialList(materialInputs{
		Top: []GroupedBar{
			longitudinalGroup("#5", 2, 5.0),
			longitudinalGroup("#4", 2, 0),
			longitudinalGroup("#3", 1, math.NaN()),
		},
		Estimator: StandardStirrupLength,
		Densities: LinearDensityKgM,
	})
	if len(items) != 1 || items[0].Diameter != "#5" {
		t.Fatalf("expected only the #5 row, got %+v", items)
	}
}

func TestBuildMaterialList_StirrupRow(t *testing.T) {
	items := buildMaterialList(materialInputs{
		PerSpan: map[int]float64{0: 10},
		SpanSpecs: []StirrupSpanSpec{
			{SpanIndex: 0, StirrupWidthCm: 22, StirrupHeightCm: 37},
		},
		StirrupMark: "#3",
		StirrupHook: "135",
		Estimator:   StandardStirrupLength,
		Densities:   map[string]float64{"#3": 0.56},
	})
	if len(items) != 1 {
		t.Fatalf("expected the stirrup row, got %d rows", len(items))
	}
	row := items[0]
	if !row.IsStirrups || row.Incomplete {
		t.Errorf("flags: IsStirrups=%v Incomplete=%v", row.IsStirrups, row.Incomplete)
	}
	// 10 pieces of 1.34 m
	if !approxEq(row.TotalLengthM, 13.4) {
		t.Errorf("length: got %.2f, want 13.4", row.TotalLengthM)
	}
	if !approxEq(row.WeightKg, 7.5) {
		t.Errorf("weight: got %.2f, want 7.5", row.WeightKg)
	}
}

func TestBuildMaterialList_MissingSpanSpecFlagsIncomplete(t *testing.T) {
	items := buildMaterialList(materialInputs{
		PerSpan: map[int]float64{0: 10, 1: 8},
		SpanSpecs: []StirrupSpanSpec{
			{SpanIndex: 0, StirrupWidthCm: 22, StirrupHeightCm: 37},
		},
		StirrupMark: "#3",
		StirrupHook: "135",
		Estimator:   StandardStirrupLength,
		Densities:   LinearDensityKgM,
	})
	if len(items) != 1 {
		t.Fatalf("expected the partial stirrup row, got %d rows", len(items))
	}
	row := items[0]
	if !row.Incomplete {
		t.Error("row built without span 1 must be flagged incomplete")
	}
	if !approxEq(row.Pieces, 10) {
		t.Errorf("only span 0 counts: got %.1f pieces, want 10", row.Pieces)
	}
}

func TestBuildMaterialList_EstimatorErrorSkipsSpan(t *testing.T) {
	items := buildMaterialList(materialInputs{
		PerSpan: map[int]float64{0: 10, 1: 8},
		SpanSpecs: []StirrupSpanSpec{
			{SpanIndex: 0, StirrupWidthCm: 22, StirrupHeightCm: 37},
			{SpanIndex: 1, StirrupWidthCm: 0, StirrupHeightCm: 37},
		},
		StirrupMark: "#3",
		StirrupHook: "135",
		Estimator:   StandardStirrupLength,
		Densities:   LinearDensityKgM,
	})
	if len(items) != 1 || !items[0].Incomplete {
		t.Fatalf("span with zero bent width must be skipped and flagged, got %+v", items)
	}
	if !approxEq(items[0].Pieces, 10) {
		t.Errorf("pieces: got %.1f, want 10", items[0].Pieces)
	}
}

func TestBuildMaterialList_NoStirrupRowWithoutCounts(t *testing.T) {
	items := buildMaterialList(materialInputs{
		Top:     []GroupedBar{longitudinalGroup("#5", 2, 5.0)},
		PerSpan: map[int]float64{0: 0},
		SpanSpecs: []StirrupSpanSpec{
			{SpanIndex: 0, StirrupWidthCm: 22, StirrupHeightCm: 37},
		},
		StirrupMark: "#3",
		StirrupHook: "135",
		Estimator:   StandardStirrupLength,
		Densities:   LinearDensityKgM,
	})
	for _, item := range items {
		if item.IsStirrups {
			t.Errorf("no stirrups expected, got row %+v", item)
		}
	}
}
