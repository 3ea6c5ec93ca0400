package server

import (
	"net/http"
	"strings"

	"phishguard/internal/heuristics"
	pgjson "phishguard/internal/json"
	"phishguard/pkg/models"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (c contactRequest) validate() string {
	switch {
	case c.Name == "":
		return "Name is required"
	case !heuristics.ValidEmailFormat(c.Email):
		return "A valid email is required"
	case c.Message == "":
		return "Message is required"
	}
	return ""
}

// ServeContact handles "POST /api/contact".
func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeBody(w, r, &req); err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if msg := req.validate(); msg != "" {
		pgjson.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	contact := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := h.store.SaveContact(r.Context(), contact); err != nil {
		h.storeError(w, r, "save contact", err)
		return
	}
	pgjson.WriteMessage(w, http.StatusCreated, "Message sent successfully")
}
