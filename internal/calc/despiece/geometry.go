package despiece

import "fmt"

// MapBeamAxis resolves spans and supports into absolute coordinates along
// the beam line. The cursor walks support widths and clear spans in
// alternation: supports advance it, spans both advance it and emit a range.
// A missing trailing support counts as width zero, a negative clear span
// collapses to a zero-length range. Zero spans and zero supports produce an
// empty axis, callers handle that.
func MapBeamAxis(spans []SpanGeometry, supports []AxisSupport) BeamAxis {
	steps := len(supports)
	if n := len(spans) + 1; n > steps {
		steps = n
	}
	axis := BeamAxis{
		SpanRanges: make([]SpanRange, 0, len(spans)),
		Supports:   make([]SupportInterval, 0, len(supports)),
	}
	cursor := 0.0
	for i := 0; i < steps; i++ {
		if i < len(supports) {
			w := supports[i].WidthCm / 100.0
			axis.Supports = append(axis.Supports, SupportInterval{
				Index:  i,
				Label:  supports[i].Label,
				StartM: cursor,
				EndM:   cursor + w,
				WidthM: w,
			})
			cursor += w
		}
		if i < len(spans) {
			length := spans[i].ClearSpanM
			if length < 0 {
				length = 0
			}
			axis.SpanRanges = append(axis.SpanRanges, SpanRange{
				SpanIndex: i,
				StartM:    cursor,
				EndM:      cursor + length,
			})
			cursor += length
		}
	}
	axis.TotalLengthM = cursor
	return axis
}

// effectiveDepthM is d = h - recubrimiento for a span section.
func effectiveDepthM(span SpanGeometry, coverCm float64) float64 {
	return (span.SectionHeightCm - coverCm) / 100.0
}

// spanEnteringSupport picks the section that governs a support region: the
// span arriving from the left, or the departing one for the first support.
func spanEnteringSupport(spans []SpanGeometry, supportIndex int) (SpanGeometry, bool) {
	if supportIndex-1 >= 0 && supportIndex-1 < len(spans) {
		return spans[supportIndex-1], true
	}
	if supportIndex < len(spans) {
		return spans[supportIndex], true
	}
	return SpanGeometry{}, false
}

// prohibitedSpliceZones marks the no-splice band around every internal
// support: 2d total, centered on the support axis, where d is the effective
// depth of the governing span. Beams with fewer than three supports have no
// internal supports and return an empty list.
func prohibitedSpliceZones(cfg BeamConfiguration, axis BeamAxis) []ProhibitedZone {
	zones := make([]ProhibitedZone, 0)
	if len(axis.Supports) < 3 {
		return zones
	}
	for i := 1; i < len(axis.Supports)-1; i++ {
		sup := axis.Supports[i]
		span, ok := spanEnteringSupport(cfg.Spans, sup.Index)
		if !ok {
			continue
		}
		d := effectiveDepthM(span, cfg.CoverCm)
		if d <= 0 {
			continue
		}
		length := noSpliceZoneFactor * d
		center := (sup.StartM + sup.EndM) / 2.0
		start := center - length/2.0
		end := center + length/2.0
		if start < 0 {
			start = 0
		}
		if end > axis.TotalLengthM {
			end = axis.TotalLengthM
		}
		label := sup.Label
		if label == "" {
			label = fmt.Sprintf("%d", sup.Index+1)
		}
		zones = append(zones, ProhibitedZone{
			StartM:      start,
			EndM:        end,
			Description: fmt.Sprintf("Zona prohibida de traslapo en el apoyo %s (2d = %.2f m)", label, length),
		})
	}
	return zones
}

// overlapM returns the shared length of two intervals, zero when disjoint.
func overlapM(aStart, aEnd, bStart, bEnd float64) float64 {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}
