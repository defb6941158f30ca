package despiece

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerCalc_InvalidJSON(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/despiece/calc", strings.NewReader("{no json"))
	rr := httptest.NewRecorder()

	h.Calc(rr, req)

	res := rr.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
	if !strings.Contains(rr.Body.String(), "Invalid request payload") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestHandlerCalc_InvalidConfiguration(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/despiece/calc", strings.NewReader("{}"))
	rr := httptest.NewRecorder()

	h.Calc(rr, req)

	res := rr.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", res.StatusCode)
	}
	if !strings.Contains(rr.Body.String(), "invalid beam configuration") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestHandlerCalc_OK(t *testing.T) {
	h := &Handler{}
	payload, err := json.Marshal(DetailingRequest{BeamConfiguration: testConfig()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/despiece/calc", bytes.NewReader(payload))
	rr := httptest.NewRecorder()

	h.Calc(rr, req)

	res := rr.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %q", res.StatusCode, rr.Body.String())
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var out DetailingResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !approxEq(out.BeamLengthM, 11.80) {
		t.Errorf("BeamLengthM = %.4f", out.BeamLengthM)
	}
	if out.BeamLabel != "V-101" {
		t.Errorf("BeamLabel = %q", out.BeamLabel)
	}
	if out.StirrupsSummary == nil || len(out.MaterialList) == 0 {
		t.Error("result is missing the stirrup summary or the material list")
	}
}

func TestHandlerPresets_Catalog(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodGet, "/api/user/tools/despiece/presets", nil)
	rr := httptest.NewRecorder()

	h.Presets(rr, req)

	res := rr.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var opts PresetOptions
	if err := json.NewDecoder(res.Body).Decode(&opts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(opts.FcOptions) != 3 {
		t.Errorf("FcOptions = %v", opts.FcOptions)
	}
	foundHook := false
	for _, hk := range opts.HookOptions {
		if hk == "Sísmico 135°" {
			foundHook = true
		}
	}
	if !foundHook {
		t.Errorf("HookOptions = %v", opts.HookOptions)
	}
	want := []string{ClassDMI, ClassDMO, ClassDES}
	if len(opts.EnergyClasses) != len(want) {
		t.Fatalf("EnergyClasses = %v", opts.EnergyClasses)
	}
	for i, c := range want {
		if opts.EnergyClasses[i] != c {
			t.Errorf("EnergyClasses[%d] = %q, want %q", i, opts.EnergyClasses[i], c)
		}
	}
	if len(opts.MaxBarLengths) != 3 || opts.MaxBarLengths[0] != "6m" {
		t.Errorf("MaxBarLengths = %v", opts.MaxBarLengths)
	}
}
