package despiece

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
)

// ErrInvalidConfiguration marks structural inconsistencies that abort the
// calculation before any geometry is derived. Degraded inputs (skipped zone
// segments, missing span specs) never raise it, they surface in the result.
var ErrInvalidConfiguration = errors.New("invalid beam configuration")

// Engine computes cutting schedules. The estimator and the density table are
// replaceable; NewEngine wires the standard ones.
type Engine struct {
	Estimator StirrupLengthFunc
	Densities map[string]float64
	Logger    *log.Logger
}

func NewEngine() *Engine {
	return &Engine{
		Estimator: StandardStirrupLength,
		Densities: LinearDensityKgM,
		Logger:    log.New(os.Stdout, "[despiece] ", log.LstdFlags),
	}
}

var defaultEngine = NewEngine()

// Detail runs the full pipeline on the default engine.
func Detail(req DetailingRequest) (*DetailingResult, error) {
	return defaultEngine.Detail(req)
}

// Detail computes the cutting schedule for one beam line: resolve the axis,
// mark prohibited splice zones, place and split the longitudinal steel, fold
// in upstream pieces, distribute stirrups, roll up the steel bill and run
// the NSR-10 checks. Two calls with the same request produce byte-identical
// JSON, callers cache on that.
func (e *Engine) Detail(req DetailingRequest) (*DetailingResult, error) {
	cfg := req.BeamConfiguration
	if err := validateConfiguration(cfg); err != nil {
		return nil, err
	}
	estimator := e.Estimator
	if estimator == nil {
		estimator = StandardStirrupLength
	}
	densities := e.Densities
	if densities == nil {
		densities = LinearDensityKgM
	}

	axis := MapBeamAxis(cfg.Spans, cfg.Supports)
	zones := prohibitedSpliceZones(cfg, axis)

	fcFactor := concreteFactorFor(cfg.ConcreteStrength)
	stock := parseCommercialLength(cfg.MaxRebarLength)
	hook := normalizeHook(cfg.HookType)
	e.logf("calculo %q: %d luces, %d apoyos, clase %s, barra comercial %dm",
		beamName(cfg), len(cfg.Spans), len(cfg.Supports), cfg.EnergyClass, stock)

	topRuns, bottomRuns := placeContinuousRuns(cfg, axis)
	splitFace := func(runs []barRun) []RebarSegment {
		pieces := make([]RebarSegment, 0, 2*len(runs))
		for _, run := range runs {
			splice := lapSpliceLengthM(run.Mark, cfg.EnergyClass, stock, fcFactor)
			if cfg.LapSpliceLengthMinM > splice {
				splice = cfg.LapSpliceLengthMinM
			}
			pieces = append(pieces, splitRun(run, splitParams{
				StockLengthM:  float64(stock),
				SpliceLengthM: splice,
				HookStart:     !cfg.HasInitialCantilever,
				HookEnd:       !cfg.HasFinalCantilever,
				HookLenM:      hookExtensionM(run.Mark, hook),
				DevLengthM:    developmentLengthM(run.Mark, cfg.EnergyClass, fcFactor),
				Zones:         zones,
			})...)
		}
		return pieces
	}
	topPieces := splitFace(topRuns)
	bottomPieces := splitFace(bottomRuns)

	extraTop := filterByPosition(req.ExtraBars, PositionTop)
	extraBottom := filterByPosition(req.ExtraBars, PositionBottom)
	if skipped := len(req.ExtraBars) - len(extraTop) - len(extraBottom); skipped > 0 {
		e.logf("%d piezas externas descartadas por posicion desconocida", skipped)
	}
	topPieces = append(topPieces, extraTop...)
	bottomPieces = append(bottomPieces, extraBottom...)
	topRuns = append(topRuns, extraRunsFromSegments(extraTop)...)
	bottomRuns = append(bottomRuns, extraRunsFromSegments(extraBottom)...)

	groupedTop := GroupBars(topPieces)
	groupedBottom := GroupBars(bottomPieces)
	continuous := ContinuousBars{
		Top:    continuousInfo(topRuns),
		Bottom: continuousInfo(bottomRuns),
	}

	zoneSegs := req.ZoneSegments
	if zoneSegs == nil {
		zoneSegs = buildZoneSegments(cfg, axis)
	}
	perSpan := DistributeZoneCounts(zoneSegs, axis.SpanRanges)
	spanSpecs := stirrupSpanSpecs(cfg, perSpan)

	totalStirrups := 0.0
	for _, r := range axis.SpanRanges {
		totalStirrups += perSpan[r.SpanIndex]
	}
	summary := &StirrupsSummary{
		Diameter:                stirrupMark(cfg),
		HookType:                hook,
		AdditionalBranchesTotal: sumBranches(cfg.StirrupsConfig),
		SpanSpecs:               spanSpecs,
		ZoneSegments:            zoneSegs,
		TotalStirrups:           round1(totalStirrups),
	}

	materials := buildMaterialList(materialInputs{
		Top:          groupedTop,
		Bottom:       groupedBottom,
		PerSpan:      perSpan,
		SpanSpecs:    spanSpecs,
		StirrupMark:  stirrupMark(cfg),
		StirrupHook:  hook,
		StockLengthM: float64(stock),
		Estimator:    estimator,
		Densities:    densities,
	})

	warnings, passed := runCompliance(&complianceContext{
		Config:       cfg,
		Axis:         axis,
		Zones:        zones,
		TopRuns:      topRuns,
		BottomRuns:   bottomRuns,
		TopPieces:    topPieces,
		BottomPieces: bottomPieces,
		Continuous:   continuous,
		Hook:         hook,
		FcFactor:     fcFactor,
	})

	totalWeight := 0.0
	for _, item := range materials {
		totalWeight += item.WeightKg
	}
	totalBars := 0
	for _, g := range groupedTop {
		totalBars += g.Quantity
	}
	for _, g := range groupedBottom {
		totalBars += g.Quantity
	}

	e.logf("calculo %q: %d grupos de barras, %.1f kg, %d advertencias",
		beamName(cfg), len(groupedTop)+len(groupedBottom), round1(totalWeight), len(warnings))

	return &DetailingResult{
		ProjectName:      cfg.ProjectName,
		BeamLabel:        cfg.BeamLabel,
		BeamLengthM:      axis.TotalLengthM,
		SpanRanges:       axis.SpanRanges,
		TopBars:          groupedTop,
		BottomBars:       groupedBottom,
		ProhibitedZones:  zones,
		MaterialList:     materials,
		ContinuousBars:   continuous,
		StirrupsSummary:  summary,
		TotalWeightKg:    round1(totalWeight),
		TotalBarsCount:   totalBars,
		Warnings:         warnings,
		ValidationPassed: passed,
	}, nil
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

func beamName(cfg BeamConfiguration) string {
	if cfg.BeamLabel != "" {
		return cfg.BeamLabel
	}
	return "VIGA"
}

func filterByPosition(segments []RebarSegment, position string) []RebarSegment {
	out := make([]RebarSegment, 0, len(segments))
	for _, seg := range segments {
		if seg.Position == position {
			out = append(out, seg)
		}
	}
	return out
}

func continuousInfo(runs []barRun) ContinuousBarsInfo {
	info := ContinuousBarsInfo{
		Diameters:        make([]string, 0, 1),
		CountPerDiameter: make(map[string]int),
	}
	for _, run := range runs {
		if run.Type != BarContinuous {
			continue
		}
		if _, ok := info.CountPerDiameter[run.Mark]; !ok {
			info.Diameters = append(info.Diameters, run.Mark)
		}
		info.CountPerDiameter[run.Mark] += run.Quantity
		info.TotalContinuous += run.Quantity
	}
	sort.Slice(info.Diameters, func(i, j int) bool {
		oi, oj := markOrder(info.Diameters[i]), markOrder(info.Diameters[j])
		if oi != oj {
			return oi < oj
		}
		return info.Diameters[i] < info.Diameters[j]
	})
	return info
}

func sumBranches(configs []StirrupConfig) int {
	total := 0
	for _, c := range configs {
		if c.AdditionalBranches > 0 {
			total += c.AdditionalBranches
		}
	}
	return total
}

func validateConfiguration(cfg BeamConfiguration) error {
	if !isFinite(cfg.CoverCm) || cfg.CoverCm < 0 {
		return fmt.Errorf("%w: cover %v cm", ErrInvalidConfiguration, cfg.CoverCm)
	}
	if len(cfg.Spans) == 0 {
		return fmt.Errorf("%w: at least one span is required", ErrInvalidConfiguration)
	}
	if len(cfg.Supports) != len(cfg.Spans)+1 {
		return fmt.Errorf("%w: %d spans require %d supports, got %d",
			ErrInvalidConfiguration, len(cfg.Spans), len(cfg.Spans)+1, len(cfg.Supports))
	}
	for i, s := range cfg.Spans {
		if !isFinite(s.ClearSpanM) || s.ClearSpanM < 0 {
			return fmt.Errorf("%w: span %d clear length %v m", ErrInvalidConfiguration, i+1, s.ClearSpanM)
		}
		if !isFinite(s.SectionBaseCm) || s.SectionBaseCm <= 0 ||
			!isFinite(s.SectionHeightCm) || s.SectionHeightCm <= 0 {
			return fmt.Errorf("%w: span %d section %vx%v cm", ErrInvalidConfiguration,
				i+1, s.SectionBaseCm, s.SectionHeightCm)
		}
		if s.SectionHeightCm <= cfg.CoverCm {
			return fmt.Errorf("%w: span %d cover %.1f cm leaves no effective depth",
				ErrInvalidConfiguration, i+1, cfg.CoverCm)
		}
	}
	for i, s := range cfg.Supports {
		if !isFinite(s.WidthCm) || s.WidthCm < 0 {
			return fmt.Errorf("%w: support %d width %v cm", ErrInvalidConfiguration, i+1, s.WidthCm)
		}
	}
	switch cfg.EnergyClass {
	case ClassDES, ClassDMO, ClassDMI:
	default:
		return fmt.Errorf("%w: unknown dissipation class %q", ErrInvalidConfiguration, cfg.EnergyClass)
	}
	if len(cfg.TopBarDiameters) == 0 || len(cfg.BottomBarDiameters) == 0 {
		return fmt.Errorf("%w: top and bottom bar diameters are required", ErrInvalidConfiguration)
	}
	marks := append(append([]string{}, cfg.TopBarDiameters...), cfg.BottomBarDiameters...)
	for _, mark := range marks {
		if _, ok := barDiameterMm[mark]; !ok {
			return fmt.Errorf("%w: unknown bar mark %q", ErrInvalidConfiguration, mark)
		}
	}
	if _, ok := barDiameterMm[stirrupMark(cfg)]; !ok {
		return fmt.Errorf("%w: unknown stirrup mark %q", ErrInvalidConfiguration, cfg.StirrupDiameter)
	}
	return nil
}
