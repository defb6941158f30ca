package batch

import (
	"encoding/json"
	"errors"
	"net/http"

	"Despiece/internal/calc/despiece"
)

type Handler struct{}

func (h *Handler) Beams(w http.ResponseWriter, r *http.Request) {
	var input BeamBatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := CalculateBeams(input)
	if err != nil {
		if errors.Is(err, despiece.ErrInvalidConfiguration) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
