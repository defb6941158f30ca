package despiece

import "fmt"

// StirrupLengthFunc estimates the cut length in centimeters of one stirrup
// piece from the bent dimensions, bar mark and hook angle. The engine treats
// it as a strategy so fabricators can plug their own bending allowances.
type StirrupLengthFunc func(widthCm, heightCm float64, barMark, hookType string) (float64, error)

// StandardStirrupLength is the default estimator: closed perimeter plus two
// hook extensions from the standard hook table.
func StandardStirrupLength(widthCm, heightCm float64, barMark, hookType string) (float64, error) {
	if widthCm <= 0 || heightCm <= 0 {
		return 0, fmt.Errorf("invalid stirrup dimensions %.1fx%.1f cm", widthCm, heightCm)
	}
	hookCm := hookExtensionM(barMark, normalizeHook(hookType)) * 100.0
	if hookCm == 0 {
		return 0, fmt.Errorf("no hook length tabulated for %s", barMark)
	}
	return 2.0*(widthCm+heightCm) + 2.0*hookCm, nil
}
