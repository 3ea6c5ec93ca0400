package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	pgjson "phishguard/internal/json"
	"phishguard/internal/store"
	"phishguard/pkg/models"
)

const userIDHeader = "X-User-ID"

// historyResponse keeps "data" present when the history is empty.
type historyResponse struct {
	Success bool                `json:"success"`
	Data    []models.ScanRecord `json:"data"`
}

func requestUserID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(userIDHeader))
}

// ServeSaveScan handles "POST /api/scans". Anonymous scans are saved for the
// guest user.
func (h *Handler) ServeSaveScan(w http.ResponseWriter, r *http.Request) {
	var rec models.ScanRecord
	if err := decodeBody(w, r, &rec); err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rec.ID = ""
	if id := requestUserID(r); id != "" {
		rec.UserID = id
	}
	if strings.TrimSpace(rec.UserID) == "" {
		rec.UserID = models.GuestUser
	}
	if strings.TrimSpace(rec.UserEmail) == "" {
		rec.UserEmail = models.GuestUser
	}

	if err := h.store.SaveScan(r.Context(), &rec); err != nil {
		h.storeError(w, r, "save scan", err)
		return
	}
	pgjson.WriteJSON(w, http.StatusCreated, pgjson.Envelope{Success: true, Data: rec})
}

// ServeListScans handles "GET /api/scans".
func (h *Handler) ServeListScans(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		pgjson.WriteError(w, http.StatusUnauthorized, "User ID required")
		return
	}

	scans, err := h.store.ListScans(r.Context(), userID, store.DefaultHistoryLimit)
	if err != nil {
		h.storeError(w, r, "list scans", err)
		return
	}
	if scans == nil {
		scans = []models.ScanRecord{}
	}
	pgjson.WriteJSON(w, http.StatusOK, historyResponse{Success: true, Data: scans})
}

// ServeDeleteScan handles "DELETE /api/scans/{id}".
func (h *Handler) ServeDeleteScan(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		pgjson.WriteError(w, http.StatusUnauthorized, "User ID required")
		return
	}

	err := h.store.DeleteScan(r.Context(), userID, chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		pgjson.WriteError(w, http.StatusNotFound, "Scan not found")
		return
	}
	if err != nil {
		h.storeError(w, r, "delete scan", err)
		return
	}
	pgjson.WriteMessage(w, http.StatusOK, "Scan deleted")
}

// ServeClearScans handles "DELETE /api/scans".
func (h *Handler) ServeClearScans(w http.ResponseWriter, r *http.Request) {
	userID := requestUserID(r)
	if userID == "" {
		pgjson.WriteError(w, http.StatusUnauthorized, "User ID required")
		return
	}

	n, err := h.store.ClearScans(r.Context(), userID)
	if err != nil {
		h.storeError(w, r, "clear scans", err)
		return
	}

	GetLoggerFromContext(r.Context(), h.logger).Info("scan history cleared",
		slog.String("user_id", userID),
		slog.Int64("deleted", n))
	pgjson.WriteMessage(w, http.StatusOK, "All scans cleared")
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	GetLoggerFromContext(r.Context(), h.logger).Error("store operation failed",
		slog.String("op", op),
		slog.String("error", err.Error()))
	pgjson.WriteError(w, http.StatusInternalServerError, "Internal server error")
}
