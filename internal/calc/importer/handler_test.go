package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseBeamRow_Defaults(t *testing.T) {
	cfg, err := parseBeamRow([]string{"V-1", "3.2;4.0", "30", "40"})
	if err != nil {
		t.Fatalf("parseBeamRow: %v", err)
	}
	if cfg.BeamLabel != "V-1" || len(cfg.Spans) != 2 {
		t.Errorf("label/spans = %q/%d", cfg.BeamLabel, len(cfg.Spans))
	}
	if len(cfg.Supports) != 3 {
		t.Fatalf("supports = %d, want 3", len(cfg.Supports))
	}
	for i, sup := range cfg.Supports {
		if sup.WidthCm != 30 {
			t.Errorf("support %d width = %.1f, want default 30", i, sup.WidthCm)
		}
	}
	if cfg.Supports[0].Label != "A" || cfg.Supports[2].Label != "C" {
		t.Errorf("labels = %s..%s", cfg.Supports[0].Label, cfg.Supports[2].Label)
	}
	if cfg.TopBarsQty != 2 || cfg.TopBarDiameters[0] != "#5" || cfg.StirrupDiameter != "#3" {
		t.Errorf("bar defaults = %d/%s/%s", cfg.TopBarsQty, cfg.TopBarDiameters[0], cfg.StirrupDiameter)
	}
	if cfg.HookType != "135" || cfg.CoverCm != 4.0 || cfg.EnergyClass != "DMO" {
		t.Errorf("detail defaults = %s/%.1f/%s", cfg.HookType, cfg.CoverCm, cfg.EnergyClass)
	}
	if cfg.ConcreteStrength != "21 MPa (3000 psi)" || cfg.MaxRebarLength != "6m" {
		t.Errorf("material defaults = %s/%s", cfg.ConcreteStrength, cfg.MaxRebarLength)
	}
}

func TestParseBeamRow_FullRow(t *testing.T) {
	row := []string{
		"V-2", "3.0;3.5", "35", "50", "40;35;40", "3", "4",
		"#6", "#5", "#3", "90", "5", "dmi", "28 MPa (4000 psi)", "9m", "Torre B",
	}
	cfg, err := parseBeamRow(row)
	if err != nil {
		t.Fatalf("parseBeamRow: %v", err)
	}
	widths := []float64{40, 35, 40}
	for i, sup := range cfg.Supports {
		if sup.WidthCm != widths[i] {
			t.Errorf("support %d width = %.1f, want %.0f", i, sup.WidthCm, widths[i])
		}
	}
	if cfg.TopBarsQty != 3 || cfg.BottomBarsQty != 4 {
		t.Errorf("qty = %d/%d", cfg.TopBarsQty, cfg.BottomBarsQty)
	}
	if cfg.TopBarDiameters[0] != "#6" || cfg.BottomBarDiameters[0] != "#5" {
		t.Errorf("marks = %v/%v", cfg.TopBarDiameters, cfg.BottomBarDiameters)
	}
	if cfg.EnergyClass != "DMI" {
		t.Errorf("class = %q, want upper case DMI", cfg.EnergyClass)
	}
	if cfg.HookType != "90" || cfg.CoverCm != 5.0 {
		t.Errorf("hook/cover = %s/%.1f", cfg.HookType, cfg.CoverCm)
	}
	if cfg.MaxRebarLength != "9m" || cfg.ProjectName != "Torre B" {
		t.Errorf("stock/project = %s/%s", cfg.MaxRebarLength, cfg.ProjectName)
	}
}

func TestParseBeamRow_SingleSupportWidth(t *testing.T) {
	cfg, err := parseBeamRow([]string{"V-3", "4.0", "30", "40", "45"})
	if err != nil {
		t.Fatalf("parseBeamRow: %v", err)
	}
	for i, sup := range cfg.Supports {
		if sup.WidthCm != 45 {
			t.Errorf("support %d width = %.1f, want 45", i, sup.WidthCm)
		}
	}
}

func TestParseBeamRow_BadSpans(t *testing.T) {
	if _, err := parseBeamRow([]string{"V-4", "abc", "30", "40"}); err == nil {
		t.Error("non-numeric spans must fail")
	}
	if _, err := parseBeamRow([]string{"V-5", "", "30", "40"}); err == nil {
		t.Error("empty spans must fail")
	}
}

func TestToFloatList(t *testing.T) {
	got, err := toFloatList(" 3.2 ; 4.0 ;3.2 ")
	if err != nil {
		t.Fatalf("toFloatList: %v", err)
	}
	want := []float64{3.2, 4.0, 3.2}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func importFile(t *testing.T, rows [][]interface{}) *http.Request {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	xl, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "vigas.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write(xl.Bytes()); err != nil {
		t.Fatalf("write: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/despiece/import", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestBeams_ImportSkipsBadRows(t *testing.T) {
	req := importFile(t, [][]interface{}{
		{"label", "luces", "base", "altura"},
		{"V-101", "3.2;4.0;3.2", "30", "40"},
		{"V-XX", "no;numerico", "30", "40"},
		{"V-YY", "4.0", "30", "40", "", "", "", "", "", "", "", "", "ZZZ"},
	})
	h := &Handler{}
	rr := httptest.NewRecorder()
	h.Beams(rr, req)

	res := rr.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %q", res.StatusCode, rr.Body.String())
	}
	var out BeamImportResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Count != 1 || len(out.Results) != 1 {
		t.Fatalf("count = %d, results = %d", out.Count, len(out.Results))
	}
	if out.Results[0].BeamLabel != "V-101" {
		t.Errorf("label = %q", out.Results[0].BeamLabel)
	}
	if out.Results[0].BeamLengthM < 11.0 {
		t.Errorf("BeamLengthM = %.2f", out.Results[0].BeamLengthM)
	}
}

func TestBeams_FileRequired(t *testing.T) {
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/despiece/import", nil)
	rr := httptest.NewRecorder()
	h.Beams(rr, req)

	if rr.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Result().StatusCode)
	}
	if !strings.Contains(rr.Body.String(), "File required") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestBeams_InvalidFile(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("file", "vigas.xlsx")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte("esto no es un xlsx"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/user/tools/despiece/import", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	h := &Handler{}
	rr := httptest.NewRecorder()
	h.Beams(rr, req)

	if rr.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Result().StatusCode)
	}
	if !strings.Contains(rr.Body.String(), "Invalid file") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestBeams_EmptySheet(t *testing.T) {
	req := importFile(t, [][]interface{}{
		{"label", "luces", "base", "altura"},
	})
	h := &Handler{}
	rr := httptest.NewRecorder()
	h.Beams(rr, req)

	if rr.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Result().StatusCode)
	}
	if !strings.Contains(rr.Body.String(), "Empty sheet") {
		t.Errorf("body = %q", rr.Body.String())
	}
}
