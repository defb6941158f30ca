package despiece

import "math"

// DistributeZoneCounts apportions placed stirrup runs across span ranges in
// proportion to geometric overlap. A run straddling a support belongs
// fractionally to both adjacent spans; scaling by overlap over run length
// splits its count without double counting or losing pieces. Malformed runs
// (non-finite bounds or count, zero or negative length, non-positive count)
// are skipped so partial input still yields per-span totals.
func DistributeZoneCounts(segments []StirrupZoneSegment, ranges []SpanRange) map[int]float64 {
	perSpan := make(map[int]float64, len(ranges))
	for _, r := range ranges {
		perSpan[r.SpanIndex] = 0
	}
	for _, seg := range segments {
		if !isFinite(seg.StartM) || !isFinite(seg.EndM) || !isFinite(seg.EstimatedCount) {
			continue
		}
		length := seg.EndM - seg.StartM
		if length <= 0 || seg.EstimatedCount <= 0 {
			continue
		}
		for _, r := range ranges {
			ov := overlapM(seg.StartM, seg.EndM, r.StartM, r.EndM)
			if ov <= 0 {
				continue
			}
			perSpan[r.SpanIndex] += seg.EstimatedCount * (ov / length)
		}
	}
	return perSpan
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
