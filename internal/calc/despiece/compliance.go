package despiece

import (
	"fmt"
	"strings"
)

// complianceContext carries everything the rules inspect. The checker only
// annotates, it never mutates geometry.
type complianceContext struct {
	Config       BeamConfiguration
	Axis         BeamAxis
	Zones        []ProhibitedZone
	TopRuns      []barRun
	BottomRuns   []barRun
	TopPieces    []RebarSegment
	BottomPieces []RebarSegment
	Continuous   ContinuousBars
	Hook         string
	FcFactor     float64
}

type complianceRule struct {
	Name  string
	Check func(*complianceContext) []string
}

// Rule order is fixed so warnings come out in a stable order.
var complianceRules = []complianceRule{
	{Name: "ganchos", Check: checkHookCompatibility},
	{Name: "barras_continuas", Check: checkContinuousBars},
	{Name: "longitud_desarrollo", Check: checkDevelopmentLength},
	{Name: "zonas_traslapo", Check: checkSpliceZones},
	{Name: "momento_positivo", Check: checkPositiveMoment},
}

func runCompliance(ctx *complianceContext) ([]string, bool) {
	warnings := make([]string, 0)
	for _, rule := range complianceRules {
		warnings = append(warnings, rule.Check(ctx)...)
	}
	return warnings, len(warnings) == 0
}

func formatHookAngles(angles []string) string {
	switch len(angles) {
	case 0:
		return ""
	case 1:
		return angles[0] + "°"
	}
	parts := make([]string, len(angles))
	for i, a := range angles {
		parts[i] = a + "°"
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " o " + parts[len(parts)-1]
}

func checkHookCompatibility(ctx *complianceContext) []string {
	allowed := allowedHooksByClass[ctx.Config.EnergyClass]
	for _, a := range allowed {
		if a == ctx.Hook {
			return nil
		}
	}
	return []string{fmt.Sprintf("Clase %s: Se recomiendan ganchos de %s",
		ctx.Config.EnergyClass, formatHookAngles(allowed))}
}

func checkContinuousBars(ctx *complianceContext) []string {
	var out []string
	if ctx.Continuous.Top.TotalContinuous < minContinuousBars {
		out = append(out, fmt.Sprintf(
			"Refuerzo superior: se requieren al menos %d barras continuas en toda la luz (NSR-10 C.21.3.4)",
			minContinuousBars))
	}
	if ctx.Continuous.Bottom.TotalContinuous < minContinuousBars {
		out = append(out, fmt.Sprintf(
			"Refuerzo inferior: se requieren al menos %d barras continuas en toda la luz (NSR-10 C.21.3.4)",
			minContinuousBars))
	}
	return out
}

// checkDevelopmentLength verifies end anchorage: the embedment available in
// each exterior support (width minus cover) must reach the development
// length of every continuous bar, with hook credit when the bar terminates
// in a hook. Cantilever ends have no exterior support and are skipped.
func checkDevelopmentLength(ctx *complianceContext) []string {
	if len(ctx.Axis.Supports) == 0 {
		return nil
	}
	coverM := ctx.Config.CoverCm / 100.0
	type endSupport struct {
		sup  SupportInterval
		skip bool
	}
	first := ctx.Axis.Supports[0]
	last := ctx.Axis.Supports[len(ctx.Axis.Supports)-1]
	ends := []endSupport{
		{sup: first, skip: ctx.Config.HasInitialCantilever || first.WidthM <= 0},
		{sup: last, skip: ctx.Config.HasFinalCantilever || last.WidthM <= 0},
	}

	var out []string
	seen := make(map[string]bool)
	runs := append(append([]barRun{}, ctx.TopRuns...), ctx.BottomRuns...)
	for _, end := range ends {
		if end.skip {
			continue
		}
		available := end.sup.WidthM - coverM
		for _, run := range runs {
			if run.Type != BarContinuous && run.Type != BarSupportAnchored {
				continue
			}
			required := developmentLengthM(run.Mark, ctx.Config.EnergyClass, ctx.FcFactor)
			if run.Hook != "" {
				if f, ok := hookDevelopmentFactor[run.Hook]; ok {
					required *= f
				}
			}
			if required <= 0 || available+1e-9 >= required {
				continue
			}
			pos := "superior"
			if run.Position == PositionBottom {
				pos = "inferior"
			}
			msg := fmt.Sprintf(
				"Refuerzo %s %s: longitud de desarrollo insuficiente en el apoyo %s (disponible %.2f m, requerida %.2f m)",
				pos, run.Mark, supportName(end.sup), available, required)
			if !seen[msg] {
				seen[msg] = true
				out = append(out, msg)
			}
		}
	}
	return out
}

// checkSpliceZones flags lap joints that invade a prohibited zone. Joints
// are recorded on both adjacent pieces, so they are deduplicated by extent
// before checking.
func checkSpliceZones(ctx *complianceContext) []string {
	type jointKey struct {
		position string
		startMM  int
		endMM    int
	}
	var out []string
	seen := make(map[jointKey]bool)
	pieces := append(append([]RebarSegment{}, ctx.TopPieces...), ctx.BottomPieces...)
	for _, piece := range pieces {
		for _, j := range piece.Splices {
			key := jointKey{piece.Position, int(j.StartM * 1000), int(j.EndM * 1000)}
			if seen[key] {
				continue
			}
			seen[key] = true
			for _, z := range ctx.Zones {
				if overlapM(j.StartM, j.EndM, z.StartM, z.EndM) > 0 {
					out = append(out, fmt.Sprintf(
						"Traslapo de la barra %s (%.2f-%.2f m) dentro de zona prohibida: %s",
						piece.ID, j.StartM, j.EndM, z.Description))
				}
			}
		}
	}
	return out
}

// checkPositiveMoment enforces the C.12.11.1 minimum: at every internal
// support, the bottom bars that cross it must be at least a quarter of the
// bottom reinforcement at the adjacent midspans.
func checkPositiveMoment(ctx *complianceContext) []string {
	if len(ctx.Axis.Supports) < 3 {
		return nil
	}
	countAt := func(x float64) int {
		total := 0
		for _, run := range ctx.BottomRuns {
			if run.StartM <= x && x <= run.EndM {
				total += run.Quantity
			}
		}
		return total
	}
	var out []string
	for i := 1; i < len(ctx.Axis.Supports)-1; i++ {
		sup := ctx.Axis.Supports[i]
		center := (sup.StartM + sup.EndM) / 2.0
		atSupport := countAt(center)

		spanRef := 0
		for _, r := range ctx.Axis.SpanRanges {
			if r.SpanIndex == sup.Index-1 || r.SpanIndex == sup.Index {
				if n := countAt((r.StartM + r.EndM) / 2.0); n > spanRef {
					spanRef = n
				}
			}
		}
		if spanRef == 0 {
			continue
		}
		if float64(atSupport)+1e-9 < minPositiveAtSupports*float64(spanRef) {
			out = append(out, fmt.Sprintf(
				"Apoyo %s: el refuerzo inferior que atraviesa el apoyo (%d) es menor que el %.0f%% del refuerzo de la luz (%d)",
				supportName(sup), atSupport, minPositiveAtSupports*100, spanRef))
		}
	}
	return out
}

func supportName(sup SupportInterval) string {
	if sup.Label != "" {
		return sup.Label
	}
	return fmt.Sprintf("%d", sup.Index+1)
}
