package importer

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"Despiece/internal/calc/despiece"

	"github.com/xuri/excelize/v2"
)

type Handler struct{}

type BeamImportResult struct {
	Count   int                        `json:"count"`
	Results []despiece.DetailingResult `json:"results"`
}

// Beams reads an XLSX with one beam line per row and returns the computed
// cutting schedules. Rows that fail to parse or validate are skipped.
func (h *Handler) Beams(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) < 2 {
		http.Error(w, "Empty sheet", http.StatusBadRequest)
		return
	}

	var results []despiece.DetailingResult
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 4 {
			continue
		}
		cfg, err := parseBeamRow(row)
		if err != nil {
			continue
		}
		res, err := despiece.Detail(despiece.DetailingRequest{BeamConfiguration: cfg})
		if err != nil {
			continue
		}
		results = append(results, *res)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BeamImportResult{Count: len(results), Results: results})
}

func parseBeamRow(row []string) (despiece.BeamConfiguration, error) {
	// expected: label, spans "3.2;4.0", base_cm, height_cm, support_widths,
	// top_qty, bottom_qty, top_mark, bottom_mark, stirrup_mark, hook,
	// cover_cm, class, fc, stock, project (trailing fields optional)
	if len(row) < 4 {
		return despiece.BeamConfiguration{}, fmt.Errorf("bad row")
	}
	label := strings.TrimSpace(row[0])
	clearSpans, err := toFloatList(row[1])
	if err != nil || len(clearSpans) == 0 {
		return despiece.BeamConfiguration{}, fmt.Errorf("bad spans")
	}
	base, err := toFloat(row[2])
	if err != nil {
		return despiece.BeamConfiguration{}, err
	}
	height, err := toFloat(row[3])
	if err != nil {
		return despiece.BeamConfiguration{}, err
	}

	supportWidth := 30.0
	var supportWidths []float64
	if len(row) > 4 && row[4] != "" {
		supportWidths, err = toFloatList(row[4])
		if err != nil {
			return despiece.BeamConfiguration{}, err
		}
		if len(supportWidths) == 1 {
			supportWidth = supportWidths[0]
			supportWidths = nil
		}
	}

	topQty := 2
	if len(row) > 5 && row[5] != "" {
		fmt.Sscanf(row[5], "%d", &topQty)
	}
	bottomQty := 2
	if len(row) > 6 && row[6] != "" {
		fmt.Sscanf(row[6], "%d", &bottomQty)
	}
	topMark := "#5"
	if len(row) > 7 && row[7] != "" {
		topMark = strings.TrimSpace(row[7])
	}
	bottomMark := "#5"
	if len(row) > 8 && row[8] != "" {
		bottomMark = strings.TrimSpace(row[8])
	}
	stirrupMark := "#3"
	if len(row) > 9 && row[9] != "" {
		stirrupMark = strings.TrimSpace(row[9])
	}
	hook := "135"
	if len(row) > 10 && row[10] != "" {
		hook = strings.TrimSpace(row[10])
	}
	cover := 4.0
	if len(row) > 11 && row[11] != "" {
		cover, _ = toFloat(row[11])
	}
	class := "DMO"
	if len(row) > 12 && row[12] != "" {
		class = strings.ToUpper(strings.TrimSpace(row[12]))
	}
	fc := "21 MPa (3000 psi)"
	if len(row) > 13 && row[13] != "" {
		fc = strings.TrimSpace(row[13])
	}
	stock := "6m"
	if len(row) > 14 && row[14] != "" {
		stock = strings.TrimSpace(row[14])
	}
	project := ""
	if len(row) > 15 {
		project = strings.TrimSpace(row[15])
	}

	spans := make([]despiece.SpanGeometry, len(clearSpans))
	for i, s := range clearSpans {
		spans[i] = despiece.SpanGeometry{ClearSpanM: s, SectionBaseCm: base, SectionHeightCm: height}
	}
	supports := make([]despiece.AxisSupport, len(clearSpans)+1)
	for i := range supports {
		w := supportWidth
		if supportWidths != nil {
			if i < len(supportWidths) {
				w = supportWidths[i]
			} else {
				w = supportWidths[len(supportWidths)-1]
			}
		}
		supports[i] = despiece.AxisSupport{Label: fmt.Sprintf("%c", 'A'+i), WidthCm: w}
	}

	return despiece.BeamConfiguration{
		ProjectName:        project,
		BeamLabel:          label,
		Spans:              spans,
		Supports:           supports,
		TopBarDiameters:    []string{topMark},
		BottomBarDiameters: []string{bottomMark},
		TopBarsQty:         topQty,
		BottomBarsQty:      bottomQty,
		StirrupDiameter:    stirrupMark,
		HookType:           hook,
		CoverCm:            cover,
		EnergyClass:        class,
		ConcreteStrength:   fc,
		MaxRebarLength:     stock,
	}, nil
}

func toFloat(s string) (float64, error) {
	var v float64
	_, err := fmt.Sscanf(strings.TrimSpace(s), "%f", &v)
	return v, err
}

func toFloatList(s string) ([]float64, error) {
	parts := strings.Split(s, ";")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := toFloat(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
