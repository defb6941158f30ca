package despiece

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// materialInputs feeds the steel bill: grouped bars from both faces, the
// distributed stirrup counts with their span sections, and the lookup
// tables. estimator and densities come from the Engine so both can be
// replaced by the caller.
type materialInputs struct {
	Top          []GroupedBar
	Bottom       []GroupedBar
	PerSpan      map[int]float64
	SpanSpecs    []StirrupSpanSpec
	StirrupMark  string
	StirrupHook  string
	StockLengthM float64
	Estimator    StirrupLengthFunc
	Densities    map[string]float64
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// markOrder sorts bar marks numerically, unknown formats go last.
func markOrder(mark string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(mark, "#"))
	if err != nil {
		return 1 << 20
	}
	return n
}

// buildMaterialList rolls grouped bars and stirrup counts into billable
// rows. Longitudinal steel groups by diameter across both faces; stirrups
// are one flagged row. Spans whose section spec is missing are skipped and
// flagged incomplete instead of failing, partial bills are acceptable.
// Totals are rounded to one decimal for display and rows with non-finite or
// non-positive length or pieces are suppressed.
func buildMaterialList(in materialInputs) []MaterialListItem {
	type tally struct {
		pieces float64
		length float64
	}
	byMark := make(map[string]*tally)
	order := make([]string, 0, 4)
	for _, g := range append(append([]GroupedBar{}, in.Top...), in.Bottom...) {
		t, ok := byMark[g.Diameter]
		if !ok {
			t = &tally{}
			byMark[g.Diameter] = t
			order = append(order, g.Diameter)
		}
		t.pieces += float64(g.Quantity)
		t.length += float64(g.Quantity) * g.LengthM
	}
	sort.Slice(order, func(i, j int) bool {
		oi, oj := markOrder(order[i]), markOrder(order[j])
		if oi != oj {
			return oi < oj
		}
		return order[i] < order[j]
	})

	items := make([]MaterialListItem, 0, len(order)+1)
	for _, mark := range order {
		t := byMark[mark]
		if !isFinite(t.length) || !isFinite(t.pieces) || t.length <= 0 || t.pieces <= 0 {
			continue
		}
		item := MaterialListItem{
			Diameter:     mark,
			Pieces:       round1(t.pieces),
			TotalLengthM: round1(t.length),
			WeightKg:     round1(t.length * in.Densities[mark]),
		}
		if in.StockLengthM > 0 {
			stock := math.Ceil(t.length/in.StockLengthM) * in.StockLengthM
			item.WastePercentage = round1((stock - t.length) / stock * 100.0)
		}
		items = append(items, item)
	}

	if st, ok := stirrupItem(in); ok {
		items = append(items, st)
	}
	return items
}

// stirrupItem accumulates the stirrup row span by span. The per-piece cut
// length comes from the estimator on each span's bent dimensions.
func stirrupItem(in materialInputs) (MaterialListItem, bool) {
	specs := make(map[int]StirrupSpanSpec, len(in.SpanSpecs))
	for _, s := range in.SpanSpecs {
		specs[s.SpanIndex] = s
	}
	indices := make([]int, 0, len(in.PerSpan))
	for idx := range in.PerSpan {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var pieces, lengthM float64
	incomplete := false
	for _, idx := range indices {
		count := in.PerSpan[idx]
		if count <= 0 || !isFinite(count) {
			continue
		}
		spec, ok := specs[idx]
		if !ok {
			incomplete = true
			continue
		}
		lenCm, err := in.Estimator(spec.StirrupWidthCm, spec.StirrupHeightCm, in.StirrupMark, in.StirrupHook)
		if err != nil {
			incomplete = true
			continue
		}
		lengthM += lenCm / 100.0 * count
		pieces += count
	}
	if !isFinite(lengthM) || !isFinite(pieces) || lengthM <= 0 || pieces <= 0 {
		return MaterialListItem{}, false
	}
	return MaterialListItem{
		Diameter:     in.StirrupMark,
		Pieces:       round1(pieces),
		TotalLengthM: round1(lengthM),
		WeightKg:     round1(lengthM * in.Densities[in.StirrupMark]),
		IsStirrups:   true,
		Incomplete:   incomplete,
	}, true
}
