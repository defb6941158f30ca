package despiece

import "math"

type groupKey struct {
	diameter string
	barType  string
	lengthCm int
}

// GroupBars collapses geometrically identical pieces into schedule rows.
// The key is (diameter, type, length rounded to 2 decimals). The first piece
// under a key becomes the representative and keeps its coordinates for
// display; later members only add quantity and their id. This is a quantity
// rollup, not a geometric merge: members may sit at different offsets along
// the beam. Callers group each face separately, positions never mix.
func GroupBars(segments []RebarSegment) []GroupedBar {
	groups := make([]GroupedBar, 0, len(segments))
	index := make(map[groupKey]int)
	for _, seg := range segments {
		qty := seg.Quantity
		if qty <= 0 {
			// pieces placed one at a time omit the field
			qty = 1
		}
		key := groupKey{
			diameter: seg.Diameter,
			barType:  seg.Type,
			lengthCm: int(math.Round(seg.LengthM * 100)),
		}
		if at, ok := index[key]; ok {
			groups[at].Quantity += qty
			groups[at].GroupedIDs = append(groups[at].GroupedIDs, seg.ID)
			continue
		}
		g := GroupedBar{RebarSegment: seg, GroupedIDs: []string{seg.ID}}
		g.Quantity = qty
		index[key] = len(groups)
		groups = append(groups, g)
	}
	return groups
}
