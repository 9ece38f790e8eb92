package handlers

import (
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/domain"
	"github.com/go-chi/chi/v5"
)

type LogHandler struct {
	logs LogReader
}

func NewLogHandler(logs LogReader) *LogHandler {
	return &LogHandler{logs: logs}
}

func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.logs.List(r.Context())
	if err != nil {
		handleFailure(w, r, err, "Could not load logs.")
		return
	}
	if items == nil {
		items = []domain.SendLog{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *LogHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.logs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleFailure(w, r, err, "Could not load the log entry.")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
