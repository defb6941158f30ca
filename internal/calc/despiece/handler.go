package despiece

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Handler struct{}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var req DetailingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Detail(req)
	if err != nil {
		if errors.Is(err, ErrInvalidConfiguration) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// PresetOptions is the catalog the configuration form offers.
type PresetOptions struct {
	FcOptions     []string `json:"fc_options"`
	FyOptions     []string `json:"fy_options"`
	HookOptions   []string `json:"hook_options"`
	MaxBarLengths []string `json:"max_bar_lengths"`
	EnergyClasses []string `json:"energy_classes"`
	BarMarks      []string `json:"bar_marks"`
	StirrupMarks  []string `json:"stirrup_marks"`
}

func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	opts := PresetOptions{
		FcOptions:     []string{"21 MPa (3000 psi)", "24 MPa (3500 psi)", "28 MPa (4000 psi)"},
		FyOptions:     []string{"420 MPa (Grado 60)", "520 MPa (Grado 75)"},
		HookOptions:   []string{"Estándar 90°", "Sísmico 135°"},
		MaxBarLengths: []string{"6m", "9m", "12m"},
		EnergyClasses: []string{ClassDMI, ClassDMO, ClassDES},
		BarMarks:      []string{"#3", "#4", "#5", "#6", "#7", "#8"},
		StirrupMarks:  []string{"#2", "#3", "#4"},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opts)
}
