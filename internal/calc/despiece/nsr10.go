package despiece

import (
	"strconv"
	"strings"
)

// Code tables from NSR-10 titulo C and the NTC 2289 bar catalog. Bar marks
// follow the eighth-of-inch convention (#5 = 5/8 in).

// Energy dissipation classes, NSR-10 C.21.
const (
	ClassDES = "DES"
	ClassDMO = "DMO"
	ClassDMI = "DMI"
)

// Nominal bar diameter in mm per mark.
var barDiameterMm = map[string]float64{
	"#2": 6.4,
	"#3": 9.5,
	"#4": 12.7,
	"#5": 15.9,
	"#6": 19.1,
	"#7": 22.2,
	"#8": 25.4,
}

// LinearDensityKgM is the nominal unit weight per bar mark (NTC 2289).
// Callers may substitute their own table on the Engine.
var LinearDensityKgM = map[string]float64{
	"#2": 0.250,
	"#3": 0.560,
	"#4": 0.994,
	"#5": 1.552,
	"#6": 2.235,
	"#7": 3.042,
	"#8": 3.973,
}

// hookLengthM is the end-hook extension in meters per mark and bend angle
// (gancho estandar, NSR-10 C.7.1).
var hookLengthM = map[string]map[string]float64{
	"#2": {"90": 0.10, "135": 0.075, "180": 0.080},
	"#3": {"90": 0.15, "135": 0.080, "180": 0.130},
	"#4": {"90": 0.20, "135": 0.127, "180": 0.150},
	"#5": {"90": 0.25, "135": 0.159, "180": 0.180},
	"#6": {"90": 0.30, "135": 0.191, "180": 0.210},
	"#7": {"90": 0.36, "135": 0.222, "180": 0.250},
	"#8": {"90": 0.41, "135": 0.254, "180": 0.300},
}

// developmentMultiplier gives ld as a multiple of db per class.
var developmentMultiplier = map[string]float64{
	ClassDES: 50,
	ClassDMO: 40,
	ClassDMI: 30,
}

// lapFactorByBarLength maps the commercial bar length in meters to the
// class B splice factor applied over ld.
var lapFactorByBarLength = map[int]float64{
	6:  1.3,
	9:  1.4,
	12: 1.5,
}

const (
	// Lap splice floor: 30 db and never below 0.30 m.
	minLapMultiplier = 30
	minLapAbsoluteM  = 0.30

	// Minimum clear distance between consecutive splices of one bar.
	minSpliceSpacingM = 1.5

	// Prohibited splice zone length as a multiple of the effective depth,
	// centered on the support axis (C.21.3.3).
	noSpliceZoneFactor = 2.0

	// Two bars minimum per face run continuous (C.21.3.4).
	minContinuousBars = 2

	// Fraction of midspan positive reinforcement that must reach supports
	// (C.12.11.1, continuous members).
	minPositiveAtSupports = 0.25
)

// concreteFactor scales development lengths by f'c, reference 21 MPa.
var concreteFactor = map[int]float64{
	21: 1.00,
	24: 0.94,
	28: 0.87,
}

// hookDevelopmentFactor is the anchorage credit for a hooked termination.
var hookDevelopmentFactor = map[string]float64{
	"90":  0.6,
	"135": 0.5,
	"180": 0.5,
}

// allowedHooksByClass restricts hook angles by dissipation class. DES
// demands ganchos sismicos de 135 grados.
var allowedHooksByClass = map[string][]string{
	ClassDES: {"135"},
	ClassDMO: {"135", "180"},
	ClassDMI: {"90", "135", "180"},
}

// confinementRule sizes the confined stirrup zone next to each support.
type confinementRule struct {
	LengthFactor float64 // times section height
	LengthMinM   float64
	SpacingCapM  float64
}

var confinementByClass = map[string]confinementRule{
	ClassDES: {LengthFactor: 1.5, LengthMinM: 0.60, SpacingCapM: 0.15},
	ClassDMO: {LengthFactor: 1.0, LengthMinM: 0.45, SpacingCapM: 0.20},
	ClassDMI: {LengthFactor: 0.5, LengthMinM: 0.30, SpacingCapM: 0.25},
}

// barDiameterM returns the nominal diameter in meters.
func barDiameterM(mark string) (float64, bool) {
	mm, ok := barDiameterMm[mark]
	return mm / 1000.0, ok
}

// normalizeHook reduces hook descriptions ("Sismico 135", "135 grados",
// "90") to the bare angle. Unknown values default to 90.
func normalizeHook(s string) string {
	switch {
	case strings.Contains(s, "135"):
		return "135"
	case strings.Contains(s, "180"):
		return "180"
	case strings.Contains(s, "90"):
		return "90"
	}
	return "90"
}

// hookExtensionM looks up the hook length for a mark and a normalized angle.
func hookExtensionM(mark, hook string) float64 {
	byAngle, ok := hookLengthM[mark]
	if !ok {
		return 0
	}
	return byAngle[hook]
}

// parseCommercialLength reads "6m"/"9m"/"12m" (or bare numbers) and falls
// back to 12 m stock when the value is not a catalog length.
func parseCommercialLength(s string) int {
	digits := strings.TrimFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 12
	}
	if _, ok := lapFactorByBarLength[n]; !ok {
		return 12
	}
	return n
}

// concreteFactorFor parses the leading f'c from a preset label such as
// "21 MPa (3000 psi)". Unlisted strengths use factor 1.0.
func concreteFactorFor(label string) float64 {
	i := 0
	for i < len(label) && label[i] >= '0' && label[i] <= '9' {
		i++
	}
	if i == 0 {
		return 1.0
	}
	fc, err := strconv.Atoi(label[:i])
	if err != nil {
		return 1.0
	}
	if f, ok := concreteFactor[fc]; ok {
		return f
	}
	return 1.0
}

// developmentLengthM returns ld for a mark under a dissipation class,
// already adjusted for concrete strength.
func developmentLengthM(mark, class string, fcFactor float64) float64 {
	db, ok := barDiameterM(mark)
	if !ok {
		return 0
	}
	mult, ok := developmentMultiplier[class]
	if !ok {
		mult = developmentMultiplier[ClassDMI]
	}
	return mult * db * fcFactor
}

// lapSpliceLengthM returns the class B lap length: max of 30 db, the
// development length times the stock-length factor, and 0.30 m.
func lapSpliceLengthM(mark, class string, commercialLen int, fcFactor float64) float64 {
	db, ok := barDiameterM(mark)
	if !ok {
		return 0
	}
	long := float64(minLapMultiplier) * db
	factor, ok := lapFactorByBarLength[commercialLen]
	if !ok {
		factor = 1.3
	}
	ld := developmentLengthM(mark, class, fcFactor)
	if v := ld * factor; v > long {
		long = v
	}
	if long < minLapAbsoluteM {
		long = minLapAbsoluteM
	}
	return long
}
