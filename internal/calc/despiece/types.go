package despiece

// Package despiece computes rebar cutting schedules for continuous
// reinforced-concrete beams following NSR-10 (titulo C). All lengths are
// meters unless the field name says otherwise.

// SpanGeometry is one clear span between support faces.
type SpanGeometry struct {
	ClearSpanM      float64 `json:"clear_span_m"`
	SectionBaseCm   float64 `json:"section_base_cm"`
	SectionHeightCm float64 `json:"section_height_cm"`
}

// AxisSupport is a support line crossing the beam (column or wall axis).
type AxisSupport struct {
	Label   string  `json:"label"`
	WidthCm float64 `json:"width_cm"`
}

// SupportInterval is a support resolved to absolute beam coordinates.
type SupportInterval struct {
	Index  int     `json:"index"`
	Label  string  `json:"label"`
	StartM float64 `json:"start_m"`
	EndM   float64 `json:"end_m"`
	WidthM float64 `json:"width_m"`
}

// SpanRange is a clear span resolved to absolute beam coordinates.
type SpanRange struct {
	SpanIndex int     `json:"span_index"`
	StartM    float64 `json:"start_m"`
	EndM      float64 `json:"end_m"`
}

// BeamAxis is the resolved geometry of the whole beam line.
type BeamAxis struct {
	SpanRanges   []SpanRange       `json:"span_ranges"`
	Supports     []SupportInterval `json:"supports"`
	TotalLengthM float64           `json:"total_length_m"`
}

// StirrupZoneSpec is an authored stirrup zone, beam-local (not yet placed):
// quantity stirrups at a constant spacing, laid out span by span.
type StirrupZoneSpec struct {
	ZoneLabel string  `json:"zone_label"`
	SpacingM  float64 `json:"spacing_m"`
	Quantity  int     `json:"quantity"`
}

// StirrupZoneSegment is a placed stirrup run in absolute coordinates.
// EstimatedCount may be fractional after clipping against span limits.
type StirrupZoneSegment struct {
	StartM         float64 `json:"start_m"`
	EndM           float64 `json:"end_m"`
	ZoneType       string  `json:"zone_type"`
	SpacingM       float64 `json:"spacing_m"`
	EstimatedCount float64 `json:"estimated_count"`
}

// StirrupConfig adds legs beyond the closed outer stirrup.
type StirrupConfig struct {
	StirrupType        string `json:"stirrup_type"`
	AdditionalBranches int    `json:"additional_branches"`
}

// SpliceJoint is a lap splice between two consecutive pieces of one bar.
type SpliceJoint struct {
	StartM   float64 `json:"start_m"`
	EndM     float64 `json:"end_m"`
	LengthM  float64 `json:"length_m"`
	Type     string  `json:"type"`
	Position string  `json:"position"`
}

// Bar placement types. Continuous bars run the full beam; support bars cover
// a negative-moment region; anchored ones terminate with a hook at an end.
const (
	BarContinuous      = "continuous"
	BarSupport         = "support"
	BarSupportAnchored = "support_anchored"
	BarRegular         = "regular"
)

const (
	PositionTop    = "top"
	PositionBottom = "bottom"
)

// RebarSegment is one physical bar piece (or a run of identical pieces,
// Quantity > 1) placed on the beam axis.
type RebarSegment struct {
	ID                 string        `json:"id"`
	Diameter           string        `json:"diameter"`
	Position           string        `json:"position"`
	Type               string        `json:"type"`
	StartM             float64       `json:"start_m"`
	EndM               float64       `json:"end_m"`
	LengthM            float64       `json:"length_m"`
	Quantity           int           `json:"quantity"`
	HookType           string        `json:"hook_type,omitempty"`
	DevelopmentLengthM float64       `json:"development_length_m,omitempty"`
	Splices            []SpliceJoint `json:"splices,omitempty"`
	Notes              string        `json:"notes,omitempty"`
}

// GroupedBar is a set of geometrically identical segments collapsed into one
// schedule row. Quantity accumulates, GroupedIDs keeps the member ids.
type GroupedBar struct {
	RebarSegment
	GroupedIDs []string `json:"grouped_ids"`
}

// ProhibitedZone is a region where lap splices are not allowed (NSR-10
// C.21.3.3: no splices within 2d of the face of confinement zones).
type ProhibitedZone struct {
	StartM      float64 `json:"start_m"`
	EndM        float64 `json:"end_m"`
	Description string  `json:"description"`
}

// ContinuousBarsInfo summarizes full-length bars for one face.
type ContinuousBarsInfo struct {
	Diameters        []string       `json:"diameters"`
	CountPerDiameter map[string]int `json:"count_per_diameter"`
	TotalContinuous  int            `json:"total_continuous"`
}

// ContinuousBars carries both faces with a fixed order.
type ContinuousBars struct {
	Top    ContinuousBarsInfo `json:"top"`
	Bottom ContinuousBarsInfo `json:"bottom"`
}

// MaterialListItem is one row of the steel bill. Pieces stays float64
// because clipped stirrup runs produce fractional estimates.
type MaterialListItem struct {
	Diameter        string  `json:"diameter"`
	Pieces          float64 `json:"pieces"`
	TotalLengthM    float64 `json:"total_length_m"`
	WeightKg        float64 `json:"weight_kg"`
	WastePercentage float64 `json:"waste_percentage,omitempty"`
	IsStirrups      bool    `json:"is_stirrups,omitempty"`
	Incomplete      bool    `json:"incomplete,omitempty"`
}

// StirrupSpanSpec is the per-span stirrup description used by fabrication.
type StirrupSpanSpec struct {
	SpanIndex           int     `json:"span_index"`
	Label               string  `json:"label"`
	BaseCm              float64 `json:"base_cm"`
	HeightCm            float64 `json:"height_cm"`
	CoverCm             float64 `json:"cover_cm"`
	StirrupWidthCm      float64 `json:"stirrup_width_cm"`
	StirrupHeightCm     float64 `json:"stirrup_height_cm"`
	EffectiveDepthM     float64 `json:"effective_depth_m"`
	SpacingConfinedM    float64 `json:"spacing_confined_m"`
	SpacingNonConfinedM float64 `json:"spacing_non_confined_m"`
	EstimatedStirrups   float64 `json:"estimated_stirrups"`
}

// StirrupsSummary groups everything the schedule reports about stirrups.
type StirrupsSummary struct {
	Diameter                string               `json:"diameter"`
	HookType                string               `json:"hook_type"`
	AdditionalBranchesTotal int                  `json:"additional_branches_total"`
	SpanSpecs               []StirrupSpanSpec    `json:"span_specs"`
	ZoneSegments            []StirrupZoneSegment `json:"zone_segments"`
	TotalStirrups           float64              `json:"total_stirrups"`
}

// BeamConfiguration is the full beam definition a client sends.
type BeamConfiguration struct {
	ProjectName          string            `json:"project_name"`
	BeamLabel            string            `json:"beam_label"`
	ElementIdentifier    string            `json:"element_identifier,omitempty"`
	ElementLevel         float64           `json:"element_level,omitempty"`
	ElementQuantity      int               `json:"element_quantity,omitempty"`
	Spans                []SpanGeometry    `json:"spans"`
	Supports             []AxisSupport     `json:"supports"`
	HasInitialCantilever bool              `json:"has_initial_cantilever"`
	HasFinalCantilever   bool              `json:"has_final_cantilever"`
	TopBarDiameters      []string          `json:"top_bar_diameters"`
	BottomBarDiameters   []string          `json:"bottom_bar_diameters"`
	TopBarsQty           int               `json:"top_bars_qty"`
	BottomBarsQty        int               `json:"bottom_bars_qty"`
	StirrupDiameter      string            `json:"stirrup_diameter,omitempty"`
	StirrupZones         []StirrupZoneSpec `json:"stirrup_zones,omitempty"`
	StirrupsConfig       []StirrupConfig   `json:"stirrups_config,omitempty"`
	HookType             string            `json:"hook_type"`
	CoverCm              float64           `json:"cover_cm"`
	EnergyClass          string            `json:"energy_dissipation_class"`
	ConcreteStrength     string            `json:"concrete_strength"`
	Reinforcement        string            `json:"reinforcement"`
	MaxRebarLength       string            `json:"max_rebar_length_m"`
	LapSpliceLengthMinM  float64           `json:"lap_splice_length_min_m,omitempty"`
	LapSpliceLocation    string            `json:"lap_splice_location,omitempty"`
	Notes                string            `json:"notes,omitempty"`
}

// DetailingRequest is the calc payload: the configuration plus optional
// pre-placed data from an upstream layout step. When ExtraBars or
// ZoneSegments are present they are merged with (or replace) the pieces the
// engine would place on its own.
type DetailingRequest struct {
	BeamConfiguration
	ExtraBars    []RebarSegment       `json:"extra_bars,omitempty"`
	ZoneSegments []StirrupZoneSegment `json:"zone_segments,omitempty"`
}

// DetailingResult is the full cutting schedule for one beam line.
type DetailingResult struct {
	ProjectName      string             `json:"project_name"`
	BeamLabel        string             `json:"beam_label"`
	BeamLengthM      float64            `json:"beam_length_m"`
	SpanRanges       []SpanRange        `json:"span_ranges"`
	TopBars          []GroupedBar       `json:"top_bars"`
	BottomBars       []GroupedBar       `json:"bottom_bars"`
	ProhibitedZones  []ProhibitedZone   `json:"prohibited_zones"`
	MaterialList     []MaterialListItem `json:"material_list"`
	ContinuousBars   ContinuousBars     `json:"continuous_bars"`
	StirrupsSummary  *StirrupsSummary   `json:"stirrups_summary"`
	TotalWeightKg    float64            `json:"total_weight_kg"`
	TotalBarsCount   int                `json:"total_bars_count"`
	Warnings         []string           `json:"warnings"`
	ValidationPassed bool               `json:"validation_passed"`
}
