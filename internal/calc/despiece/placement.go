package despiece

import (
	"fmt"
	"math"
	"strings"
)

// barRun is one group of identical bars placed as a unit over its full
// extent, before splitting into commercial pieces.
type barRun struct {
	ID       string
	Mark     string
	Position string
	Type     string
	StartM   float64
	EndM     float64
	Quantity int
	Hook     string
}

type markCount struct {
	Mark  string
	Count int
}

// barGroups tallies a diameter list plus a total count into ordered groups.
// A single mark expands to the whole count ("#5" x4); a per-bar list is
// tallied by mark in first-seen order, padding with the last mark when the
// count exceeds the list.
func barGroups(marks []string, qty int) []markCount {
	if len(marks) == 0 {
		return nil
	}
	if qty < len(marks) {
		qty = len(marks)
	}
	expanded := make([]string, qty)
	for i := 0; i < qty; i++ {
		if i < len(marks) {
			expanded[i] = marks[i]
		} else if len(marks) == 1 {
			expanded[i] = marks[0]
		} else {
			expanded[i] = marks[len(marks)-1]
		}
	}
	groups := make([]markCount, 0, 2)
	at := make(map[string]int)
	for _, mark := range expanded {
		if i, ok := at[mark]; ok {
			groups[i].Count++
			continue
		}
		at[mark] = len(groups)
		groups = append(groups, markCount{Mark: mark, Count: 1})
	}
	return groups
}

func markDigits(mark string) string {
	return strings.TrimPrefix(mark, "#")
}

// placeContinuousRuns lays the continuous reinforcement of both faces over
// the full beam length minus cover at each end. Ids follow the T5-C01 /
// B5-C01 convention (face, mark, correlativo).
func placeContinuousRuns(cfg BeamConfiguration, axis BeamAxis) (top, bottom []barRun) {
	coverM := cfg.CoverCm / 100.0
	start := coverM
	end := axis.TotalLengthM - coverM
	if end < start {
		end = start
	}
	hook := normalizeHook(cfg.HookType)

	place := func(prefix, position string, groups []markCount) []barRun {
		runs := make([]barRun, 0, len(groups))
		for i, g := range groups {
			runs = append(runs, barRun{
				ID:       fmt.Sprintf("%s%s-C%02d", prefix, markDigits(g.Mark), i+1),
				Mark:     g.Mark,
				Position: position,
				Type:     BarContinuous,
				StartM:   start,
				EndM:     end,
				Quantity: g.Count,
				Hook:     hook,
			})
		}
		return runs
	}

	top = place("T", PositionTop, barGroups(cfg.TopBarDiameters, cfg.TopBarsQty))
	bottom = place("B", PositionBottom, barGroups(cfg.BottomBarDiameters, cfg.BottomBarsQty))
	return top, bottom
}

// extraRunsFromSegments folds upstream-placed raw pieces into runs so the
// compliance rules see them alongside the engine's own placement.
func extraRunsFromSegments(segments []RebarSegment) []barRun {
	runs := make([]barRun, 0, len(segments))
	for _, seg := range segments {
		qty := seg.Quantity
		if qty <= 0 {
			qty = 1
		}
		runs = append(runs, barRun{
			ID:       seg.ID,
			Mark:     seg.Diameter,
			Position: seg.Position,
			Type:     seg.Type,
			StartM:   seg.StartM,
			EndM:     seg.EndM,
			Quantity: qty,
			Hook:     seg.HookType,
		})
	}
	return runs
}

func zoneTypeFromLabel(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "no conf"), strings.Contains(l, "non"), strings.Contains(l, "centr"):
		return "non_confined"
	case strings.Contains(l, "conf"):
		return "confined"
	}
	return "non_confined"
}

// smallestLongitudinalDb picks the governing longitudinal diameter for
// confinement spacing (the smallest bar confines worst).
func smallestLongitudinalDb(cfg BeamConfiguration) float64 {
	min := 0.0
	for _, mark := range append(append([]string{}, cfg.TopBarDiameters...), cfg.BottomBarDiameters...) {
		db, ok := barDiameterM(mark)
		if !ok {
			continue
		}
		if min == 0 || db < min {
			min = db
		}
	}
	if min == 0 {
		min, _ = barDiameterM("#5")
	}
	return min
}

// confinementSpacings resolves the stirrup spacings for one span section
// under the configured dissipation class.
func confinementSpacings(cfg BeamConfiguration, span SpanGeometry) (confined, central float64) {
	h := span.SectionHeightCm / 100.0
	rule, ok := confinementByClass[cfg.EnergyClass]
	if !ok {
		rule = confinementByClass[ClassDMI]
	}
	dbLong := smallestLongitudinalDb(cfg)
	dbStirrup, ok := barDiameterM(stirrupMark(cfg))
	if !ok {
		dbStirrup, _ = barDiameterM("#3")
	}

	confined = h / 4.0
	if v := 8.0 * dbLong; v < confined {
		confined = v
	}
	if rule.SpacingCapM < confined {
		confined = rule.SpacingCapM
	}

	central = h / 2.0
	if v := 24.0 * dbStirrup; v < central {
		central = v
	}
	if central > 0.30 {
		central = 0.30
	}
	return confined, central
}

func stirrupMark(cfg BeamConfiguration) string {
	if cfg.StirrupDiameter != "" {
		return cfg.StirrupDiameter
	}
	return "#3"
}

// buildZoneSegments places the stirrup layout on the absolute axis. Authored
// zone specs are walked span by span in order, clipping the last run against
// the span end (clipping scales the count, the authored density holds).
// Without specs the layout is auto-designed per NSR-10: confined zones next
// to each support and a central zone, sized by dissipation class.
func buildZoneSegments(cfg BeamConfiguration, axis BeamAxis) []StirrupZoneSegment {
	segments := make([]StirrupZoneSegment, 0, 3*len(axis.SpanRanges))
	if len(cfg.StirrupZones) > 0 {
		for _, r := range axis.SpanRanges {
			cursor := r.StartM
			for _, spec := range cfg.StirrupZones {
				if spec.SpacingM <= 0 || spec.Quantity <= 0 {
					continue
				}
				if cursor >= r.EndM {
					break
				}
				end := cursor + spec.SpacingM*float64(spec.Quantity)
				if end > r.EndM {
					end = r.EndM
				}
				segments = append(segments, StirrupZoneSegment{
					StartM:         cursor,
					EndM:           end,
					ZoneType:       zoneTypeFromLabel(spec.ZoneLabel),
					SpacingM:       spec.SpacingM,
					EstimatedCount: (end - cursor) / spec.SpacingM,
				})
				cursor = end
			}
		}
		return segments
	}

	rule, ok := confinementByClass[cfg.EnergyClass]
	if !ok {
		rule = confinementByClass[ClassDMI]
	}
	for _, r := range axis.SpanRanges {
		if r.SpanIndex >= len(cfg.Spans) {
			continue
		}
		span := cfg.Spans[r.SpanIndex]
		h := span.SectionHeightCm / 100.0
		lc := rule.LengthFactor * h
		if lc < rule.LengthMinM {
			lc = rule.LengthMinM
		}
		sConf, sCentral := confinementSpacings(cfg, span)
		spanLen := r.EndM - r.StartM
		if spanLen <= 0 || sConf <= 0 || sCentral <= 0 {
			continue
		}
		if 2.0*lc >= spanLen {
			segments = append(segments, StirrupZoneSegment{
				StartM:         r.StartM,
				EndM:           r.EndM,
				ZoneType:       "confined",
				SpacingM:       sConf,
				EstimatedCount: math.Floor(spanLen/sConf) + 1,
			})
			continue
		}
		segments = append(segments,
			StirrupZoneSegment{
				StartM:         r.StartM,
				EndM:           r.StartM + lc,
				ZoneType:       "confined",
				SpacingM:       sConf,
				EstimatedCount: math.Floor(lc/sConf) + 1,
			},
			StirrupZoneSegment{
				StartM:         r.StartM + lc,
				EndM:           r.EndM - lc,
				ZoneType:       "non_confined",
				SpacingM:       sCentral,
				EstimatedCount: math.Floor((spanLen-2.0*lc)/sCentral) + 1,
			},
			StirrupZoneSegment{
				StartM:         r.EndM - lc,
				EndM:           r.EndM,
				ZoneType:       "confined",
				SpacingM:       sConf,
				EstimatedCount: math.Floor(lc/sConf) + 1,
			},
		)
	}
	return segments
}

// stirrupSpanSpecs derives the fabrication spec of each span section. The
// bent dimensions subtract cover on every face.
func stirrupSpanSpecs(cfg BeamConfiguration, perSpan map[int]float64) []StirrupSpanSpec {
	specs := make([]StirrupSpanSpec, 0, len(cfg.Spans))
	for i, span := range cfg.Spans {
		sConf, sCentral := confinementSpacings(cfg, span)
		specs = append(specs, StirrupSpanSpec{
			SpanIndex:           i,
			Label:               fmt.Sprintf("Luz %d", i+1),
			BaseCm:              span.SectionBaseCm,
			HeightCm:            span.SectionHeightCm,
			CoverCm:             cfg.CoverCm,
			StirrupWidthCm:      span.SectionBaseCm - 2.0*cfg.CoverCm,
			StirrupHeightCm:     span.SectionHeightCm - 2.0*cfg.CoverCm,
			EffectiveDepthM:     effectiveDepthM(span, cfg.CoverCm),
			SpacingConfinedM:    sConf,
			SpacingNonConfinedM: sCentral,
			EstimatedStirrups:   round1(perSpan[i]),
		})
	}
	return specs
}
