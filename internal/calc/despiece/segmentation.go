package despiece

import "fmt"

const (
	// Clearance kept between a lap joint and a prohibited zone edge.
	spliceZoneClearanceM = 0.05
	// A piece never gets shorter than this many splice lengths.
	minPieceSplices = 1.5
	// Iteration guard for the piece walk.
	maxSplitIterations = 100
)

// splitParams controls how one run is cut into commercial pieces.
type splitParams struct {
	StockLengthM  float64
	SpliceLengthM float64
	HookStart     bool
	HookEnd       bool
	HookLenM      float64
	DevLengthM    float64
	Zones         []ProhibitedZone
}

type jointSpan struct {
	start float64
	end   float64
}

type pieceExtent struct {
	start   float64
	end     float64
	first   bool
	last    bool
	flagged bool
}

// splitRun cuts one bar run into pieces no longer than the commercial stock,
// placing a class B lap at each cut. Consecutive pieces overlap by the lap
// length (the next piece starts where the joint starts). Hooked ends consume
// stock, so the first and last pieces cover less axis than a straight one.
// Joints are pushed out of prohibited zones by shortening the piece; when no
// room remains the joint stays put, gets flagged, and the compliance check
// reports it.
func splitRun(run barRun, p splitParams) []RebarSegment {
	total := run.EndM - run.StartM
	deductBoth := 0.0
	if p.HookStart {
		deductBoth += p.HookLenM
	}
	if p.HookEnd {
		deductBoth += p.HookLenM
	}

	var extents []pieceExtent
	var joints []jointSpan

	single := total <= 0 ||
		p.StockLengthM <= 0 ||
		p.SpliceLengthM <= 0 ||
		p.SpliceLengthM >= p.StockLengthM ||
		total+deductBoth <= p.StockLengthM
	if single {
		extents = []pieceExtent{{start: run.StartM, end: run.EndM, first: true, last: true}}
	} else {
		segStart := run.StartM
		for iter := 0; iter < maxSplitIterations; iter++ {
			first := len(extents) == 0
			startDeduct := 0.0
			if first && p.HookStart {
				startDeduct = p.HookLenM
			}
			endDeduct := 0.0
			if p.HookEnd {
				endDeduct = p.HookLenM
			}
			remaining := run.EndM - segStart
			if remaining+startDeduct+endDeduct <= p.StockLengthM {
				extents = append(extents, pieceExtent{start: segStart, end: run.EndM, first: first, last: true})
				break
			}
			usable := p.StockLengthM - startDeduct
			target := segStart + usable
			if first {
				// the first cut sets the joint rhythm for the whole
				// bar; shorten it so later joints fall clear of the
				// supports
				if run.Position == PositionBottom {
					t := 0.45 * total
					if cap := 0.8 * usable; t > cap {
						t = cap
					}
					if t >= minPieceSplices*p.SpliceLengthM {
						target = segStart + t
					}
				} else if remaining > 1.8*p.StockLengthM {
					target = segStart + 0.6*usable
				}
			}
			if target > run.EndM {
				target = run.EndM
			}
			end, clean := adjustEndForZones(target, segStart, p)
			jStart := end - p.SpliceLengthM
			if n := len(joints); n > 0 && jStart-joints[n-1].end < minSpliceSpacingM {
				// zone avoidance squeezed two joints together; keep
				// the natural cut instead
				end, clean = target, false
				jStart = end - p.SpliceLengthM
			}
			extents = append(extents, pieceExtent{start: segStart, end: end, first: first, flagged: !clean})
			joints = append(joints, jointSpan{start: jStart, end: end})
			segStart = jStart
		}
		if last := extents[len(extents)-1]; !last.last && last.end < run.EndM {
			// iteration guard tripped, close the run so no steel is lost
			extents = append(extents, pieceExtent{start: segStart, end: run.EndM, last: true, flagged: true})
		}
	}

	pieces := make([]RebarSegment, 0, len(extents))
	for i, ex := range extents {
		hookS := ex.first && p.HookStart
		hookE := ex.last && p.HookEnd
		length := ex.end - ex.start
		if hookS {
			length += p.HookLenM
		}
		if hookE {
			length += p.HookLenM
		}
		piece := RebarSegment{
			ID:       fmt.Sprintf("%s-S%02d", run.ID, i+1),
			Diameter: run.Mark,
			Position: run.Position,
			Type:     run.Type,
			StartM:   ex.start,
			EndM:     ex.end,
			LengthM:  length,
			Quantity: run.Quantity,
		}
		if hookS || hookE {
			piece.HookType = run.Hook
		}
		if (ex.first || ex.last) && p.DevLengthM > 0 {
			piece.DevelopmentLengthM = p.DevLengthM
		}
		if ex.flagged {
			piece.Notes = "Revisar traslapo: sin espacio fuera de zona prohibida"
		}
		for _, j := range joints {
			if overlapM(j.start, j.end, ex.start, ex.end) > 0 {
				piece.Splices = append(piece.Splices, SpliceJoint{
					StartM:   j.start,
					EndM:     j.end,
					LengthM:  j.end - j.start,
					Type:     "lap_class_b",
					Position: run.Position,
				})
			}
		}
		pieces = append(pieces, piece)
	}
	return pieces
}

// adjustEndForZones shifts a piece end left until its lap joint clears every
// prohibited zone. Returns the final end and whether the joint is clean; a
// joint that cannot leave the zone without making the piece too short keeps
// the original cut.
func adjustEndForZones(target, segStart float64, p splitParams) (float64, bool) {
	end := target
	for attempt := 0; attempt < 20; attempt++ {
		zone, ok := overlappingZone(end-p.SpliceLengthM, end, p.Zones)
		if !ok {
			return end, true
		}
		candidate := zone.StartM - spliceZoneClearanceM
		if candidate-segStart < minPieceSplices*p.SpliceLengthM {
			return target, false
		}
		end = candidate
	}
	return end, false
}

func overlappingZone(start, end float64, zones []ProhibitedZone) (ProhibitedZone, bool) {
	for _, z := range zones {
		if overlapM(start, end, z.StartM, z.EndM) > 0 {
			return z, true
		}
	}
	return ProhibitedZone{}, false
}
