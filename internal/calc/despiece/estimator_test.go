package despiece

import "testing"

func TestStandardStirrupLength(t *testing.T) {
	// 2(22 + 37) + 2 * 8.0 cm of 135 degree hook
	got, err := StandardStirrupLength(22, 37, "#3", "Sísmico 135°")
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !approxEq(got, 134.0) {
		t.Errorf("cut length: got %.2f, want 134.00", got)
	}
}

func TestStandardStirrupLength_HookAngleChangesLength(t *testing.T) {
	at135, err := StandardStirrupLength(22, 37, "#3", "135")
	if err != nil {
		t.Fatalf("estimate 135: %v", err)
	}
	at90, err := StandardStirrupLength(22, 37, "#3", "90")
	if err != nil {
		t.Fatalf("estimate 90: %v", err)
	}
	// 90 degree hooks are longer for #3 (15 cm vs 8 cm)
	if at90 <= at135 {
		t.Errorf("expected 90 hook length %.2f > 135 hook length %.2f", at90, at135)
	}
}

func TestStandardStirrupLength_RejectsBadDimensions(t *testing.T) {
	if _, err := StandardStirrupLength(0, 37, "#3", "135"); err == nil {
		t.Error("zero width should fail")
	}
	if _, err := StandardStirrupLength(22, -1, "#3", "135"); err == nil {
		t.Error("negative height should fail")
	}
}

func TestStandardStirrupLength_UnknownMark(t *testing.T) {
	if _, err := StandardStirrupLength(22, 37, "#9", "135"); err == nil {
		t.Error("mark without hook table entry should fail")
	}
}
