package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/queryai/queryai/internal/models"
	"github.com/queryai/queryai/internal/schema"
	"github.com/queryai/queryai/internal/store"
	"github.com/rs/zerolog/log"
)

// RecordsHandler handles POST/GET /records/{table}
type RecordsHandler struct {
	repo store.RecordRepository
}

func NewRecordsHandler(repo store.RecordRepository) *RecordsHandler {
	return &RecordsHandler{repo: repo}
}

// Create handles POST /records/{table}
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	ts := schema.Get(table)
	if ts == nil {
		models.WriteError(w, http.StatusBadRequest, "invalid table name")
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		models.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if verr := ts.Validate(payload); verr != nil {
		models.WriteError(w, http.StatusBadRequest, verr.Message)
		return
	}

	rec, err := h.repo.Create(table, payload)
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info().Str("table", table).Msg("record created")

	models.WriteJSON(w, http.StatusOK, models.RecordResponse{
		Success: true,
		Data:    rec,
		Message: ts.Label + " created successfully",
	})
}

// List handles GET /records/{table}
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if schema.Get(table) == nil {
		models.WriteError(w, http.StatusBadRequest, "invalid table name")
		return
	}

	records, err := h.repo.List(table)
	if err != nil {
		models.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data := make([]map[string]any, len(records))
	for i, rec := range records {
		data[i] = rec
	}

	models.WriteJSON(w, http.StatusOK, models.RecordListResponse{
		Success: true,
		Data:    data,
		Count:   len(data),
	})
}
