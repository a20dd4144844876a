package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"gameion/internal/model"
	"gameion/internal/repository"
)

// ResultHandler serves finished game results.
type ResultHandler struct {
	results repository.ResultRepo
}

// NewResultHandler creates a new result handler
func NewResultHandler(results repository.ResultRepo) *ResultHandler {
	return &ResultHandler{results: results}
}

// ListByRoom handles GET /v1/rooms/{roomId}/results
func (h *ResultHandler) ListByRoom(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		writeError(w, http.StatusServiceUnavailable, "result archive not configured")
		return
	}

	roomID := mux.Vars(r)["roomId"]
	results, err := h.results.ListByRoom(r.Context(), roomID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to fetch results")
		return
	}
	if results == nil {
		results = []model.GameResult{}
	}

	writeJSON(w, http.StatusOK, results)
}
