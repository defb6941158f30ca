package designs

import (
	"Despiece/internal/auth"
	"Despiece/internal/calc/despiece"
	"Despiece/internal/repo"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// Handler persists beam designs per user. Saving validates the configuration
// by running the engine once; invalid beams never reach the database.
type Handler struct {
	Repo repo.Repository
}

type SaveDesignRequest struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Config      despiece.BeamConfiguration `json:"config"`
}

type DesignResponse struct {
	repo.DesignRecord
	Result *despiece.DetailingResult `json:"result,omitempty"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req SaveDesignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Title required", http.StatusBadRequest)
		return
	}
	result, err := despiece.Detail(despiece.DetailingRequest{BeamConfiguration: req.Config})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec := repo.DesignRecord{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DesignType:  "viga",
		Config:      req.Config,
	}
	id, err := h.Repo.CreateDesign(r.Context(), rec)
	if err != nil {
		log.Printf("CreateDesign Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	rec.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(DesignResponse{DesignRecord: rec, Result: result})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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
	rec, err := h.Repo.GetDesign(r.Context(), userID, designID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			http.Error(w, "Design not found", http.StatusNotFound)
			return
		}
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	// recompute instead of storing results, the engine is deterministic
	result, err := despiece.Detail(despiece.DetailingRequest{BeamConfiguration: rec.Config})
	if err != nil {
		log.Printf("Detail on stored design %d: %v", designID, err)
		http.Error(w, "Calculation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DesignResponse{DesignRecord: rec, Result: result})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	list, err := h.Repo.ListDesigns(r.Context(), userID)
	if err != nil {
		log.Printf("ListDesigns Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req SaveDesignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if _, err := despiece.Detail(despiece.DetailingRequest{BeamConfiguration: req.Config}); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := h.Repo.UpdateDesign(r.Context(), repo.DesignRecord{
		ID:          designID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Config:      req.Config,
	})
	if err != nil {
		log.Printf("UpdateDesign Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Design not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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
	rows, err := h.Repo.DeleteDesign(r.Context(), userID, designID)
	if err != nil {
		log.Printf("DeleteDesign Error: %v", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if rows == 0 {
		http.Error(w, "Design not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
