package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"Despiece/internal/auth"
	"Despiece/internal/calc/despiece"
	"Despiece/internal/repo"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Handler renders cutting schedules as PDF or XLSX. When the source is a
// saved design the generated file is recorded in the export history.
type Handler struct {
	Repo repo.Repository
}

type Input struct {
	Title    string                     `json:"title"`
	Author   string                     `json:"author"`
	Notes    string                     `json:"notes"`
	DesignID int                        `json:"design_id,omitempty"`
	Beam     *despiece.DetailingRequest `json:"beam,omitempty"`
}

var typeLabels = map[string]string{
	despiece.BarContinuous:      "continua",
	despiece.BarSupport:         "apoyo",
	despiece.BarSupportAnchored: "anclada",
	despiece.BarRegular:         "adicional",
}

func typeLabel(t string) string {
	if s, ok := typeLabels[t]; ok {
		return s
	}
	return t
}

// resolve turns the request into a detailing run: either a saved design of
// the authenticated user or an inline beam.
func (h *Handler) resolve(r *http.Request, input *Input) (*despiece.DetailingResult, int, error) {
	if input.DesignID > 0 {
		if h.Repo == nil {
			return nil, 0, errors.New("design storage not configured")
		}
		userID, ok := auth.UserID(r.Context())
		if !ok {
			return nil, 0, repo.ErrNotFound
		}
		rec, err := h.Repo.GetDesign(r.Context(), userID, input.DesignID)
		if err != nil {
			return nil, 0, err
		}
		if input.Title == "" {
			input.Title = rec.Title
		}
		res, err := despiece.Detail(despiece.DetailingRequest{BeamConfiguration: rec.Config})
		return res, userID, err
	}
	if input.Beam == nil {
		return nil, 0, errors.New("beam or design_id required")
	}
	res, err := despiece.Detail(*input.Beam)
	return res, 0, err
}

func (h *Handler) recordExport(ctx context.Context, userID, designID int, format, filename string) {
	if h.Repo == nil || designID == 0 || userID == 0 {
		return
	}
	rec := repo.ExportRecord{
		ID:       uuid.NewString(),
		DesignID: designID,
		UserID:   userID,
		Format:   format,
		Filename: filename,
	}
	if err := h.Repo.RecordExport(ctx, rec); err != nil {
		// the file already streamed, history is best effort
		log.Printf("RecordExport Error: %v", err)
	}
}

func (h *Handler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, userID, err := h.resolve(r, &input)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Design not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		input.Title = "Despiece de acero"
	}

	pdf := buildPDF(input, res)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	filename := exportFilename(res.BeamLabel, "pdf")
	h.recordExport(r.Context(), userID, input.DesignID, "pdf", filename)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

func (h *Handler) GenerateXLSX(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, userID, err := h.resolve(r, &input)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Design not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f, err := buildXLSX(res)
	if err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	filename := exportFilename(res.BeamLabel, "xlsx")
	h.recordExport(r.Context(), userID, input.DesignID, "xlsx", filename)

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

// Exports lists the generated files of one design.
func (h *Handler) Exports(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	designID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}
	list, err := h.Repo.ListExports(r.Context(), userID, designID)
	if err != nil {
		log.Printf("ListExports Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func exportFilename(label, ext string) string {
	if label == "" {
		label = "viga"
	}
	return fmt.Sprintf("despiece_%s_%s.%s", label, time.Now().Format("20060102_150405"), ext)
}

func buildPDF(input Input, res *despiece.DetailingResult) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(input.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Proyecto: %s", res.ProjectName)))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Viga: %s", res.BeamLabel)))
	pdf.Ln(6)
	if input.Author != "" {
		pdf.Cell(0, 6, tr(fmt.Sprintf("Autor: %s", input.Author)))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Fecha: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Longitud total: %.2f m", res.BeamLengthM)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Barras de refuerzo"))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "B", 9)
	headers := []struct {
		label string
		width float64
	}{
		{"Id", 30}, {"Diám", 16}, {"Cara", 20}, {"Tipo", 24},
		{"Long (m)", 20}, {"Cant", 14}, {"Inicio (m)", 22}, {"Fin (m)", 22},
	}
	for _, hd := range headers {
		pdf.CellFormat(hd.width, 6, tr(hd.label), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	writeBar := func(face string, g despiece.GroupedBar) {
		cells := []string{
			g.ID, g.Diameter, face, typeLabel(g.Type),
			fmt.Sprintf("%.2f", g.LengthM), fmt.Sprintf("%d", g.Quantity),
			fmt.Sprintf("%.2f", g.StartM), fmt.Sprintf("%.2f", g.EndM),
		}
		for i, c := range cells {
			pdf.CellFormat(headers[i].width, 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	for _, g := range res.TopBars {
		writeBar("Superior", g)
	}
	for _, g := range res.BottomBars {
		writeBar("Inferior", g)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Lista de materiales"))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "B", 9)
	matHeaders := []struct {
		label string
		width float64
	}{
		{"Diám", 20}, {"Piezas", 24}, {"Long total (m)", 34}, {"Peso (kg)", 28}, {"Desperdicio %", 32},
	}
	for _, hd := range matHeaders {
		pdf.CellFormat(hd.width, 6, tr(hd.label), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range res.MaterialList {
		name := item.Diameter
		if item.IsStirrups {
			name = item.Diameter + " (estribos)"
		}
		cells := []string{
			name, fmt.Sprintf("%.1f", item.Pieces), fmt.Sprintf("%.1f", item.TotalLengthM),
			fmt.Sprintf("%.1f", item.WeightKg), fmt.Sprintf("%.1f", item.WastePercentage),
		}
		for i, c := range cells {
			pdf.CellFormat(matHeaders[i].width, 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Peso total: %.1f kg", res.TotalWeightKg)))
	pdf.Ln(10)

	if st := res.StirrupsSummary; st != nil && len(st.SpanSpecs) > 0 {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, tr(fmt.Sprintf("Estribos %s (gancho %s°)", st.Diameter, st.HookType)))
		pdf.Ln(9)
		pdf.SetFont("Helvetica", "", 9)
		for _, spec := range st.SpanSpecs {
			pdf.Cell(0, 5, tr(fmt.Sprintf(
				"%s: %.0fx%.0f cm, estribo %.0fx%.0f cm, conf %.2f m / centro %.2f m, aprox %.1f unid",
				spec.Label, spec.BaseCm, spec.HeightCm, spec.StirrupWidthCm, spec.StirrupHeightCm,
				spec.SpacingConfinedM, spec.SpacingNonConfinedM, spec.EstimatedStirrups)))
			pdf.Ln(5)
		}
		pdf.Cell(0, 6, tr(fmt.Sprintf("Total estribos: %.1f", st.TotalStirrups)))
		pdf.Ln(9)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr("Advertencias"))
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	if len(res.Warnings) == 0 {
		pdf.Cell(0, 6, tr("Sin advertencias. Verificación NSR-10 superada."))
		pdf.Ln(6)
	}
	for i, warn := range res.Warnings {
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, warn)), "", "L", false)
	}
	if input.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(input.Notes), "", "L", false)
	}
	return pdf
}

func buildXLSX(res *despiece.DetailingResult) (*excelize.File, error) {
	f := excelize.NewFile()
	const barsSheet = "Despiece"
	if err := f.SetSheetName("Sheet1", barsSheet); err != nil {
		return nil, err
	}

	row := 1
	setRow := func(sheet string, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	if err := setRow(barsSheet, []interface{}{"Id", "Diámetro", "Cara", "Tipo", "Long (m)", "Cantidad", "Inicio (m)", "Fin (m)", "Gancho"}); err != nil {
		return nil, err
	}
	writeBars := func(face string, bars []despiece.GroupedBar) error {
		for _, g := range bars {
			if err := setRow(barsSheet, []interface{}{
				g.ID, g.Diameter, face, typeLabel(g.Type), g.LengthM, g.Quantity, g.StartM, g.EndM, g.HookType,
			}); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeBars("Superior", res.TopBars); err != nil {
		return nil, err
	}
	if err := writeBars("Inferior", res.BottomBars); err != nil {
		return nil, err
	}

	const matSheet = "Materiales"
	if _, err := f.NewSheet(matSheet); err != nil {
		return nil, err
	}
	row = 1
	if err := setRow(matSheet, []interface{}{"Diámetro", "Piezas", "Long total (m)", "Peso (kg)", "Desperdicio %", "Estribos"}); err != nil {
		return nil, err
	}
	for _, item := range res.MaterialList {
		if err := setRow(matSheet, []interface{}{
			item.Diameter, item.Pieces, item.TotalLengthM, item.WeightKg, item.WastePercentage, item.IsStirrups,
		}); err != nil {
			return nil, err
		}
	}
	if err := setRow(matSheet, []interface{}{"Total", "", "", res.TotalWeightKg, "", ""}); err != nil {
		return nil, err
	}

	const warnSheet = "Advertencias"
	if _, err := f.NewSheet(warnSheet); err != nil {
		return nil, err
	}
	row = 1
	if err := setRow(warnSheet, []interface{}{"Advertencia"}); err != nil {
		return nil, err
	}
	for _, warn := range res.Warnings {
		if err := setRow(warnSheet, []interface{}{warn}); err != nil {
			return nil, err
		}
	}
	return f, nil
}
