package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"phishguard/internal/auth"
	pgjson "phishguard/internal/json"
	"phishguard/internal/store"
	"phishguard/pkg/models"
)

type authRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
	Token    string `json:"token"`
}

// userView is the public part of an account.
type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newUserView(u *models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email}
}

// validationMessage drops the sentinel prefix from a wrapped ErrValidation.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), auth.ErrValidation.Error()+": ")
}

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decodeBody(w, r, &req); err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, store.ErrEmailExists):
		pgjson.WriteError(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, auth.ErrValidation):
		pgjson.WriteError(w, http.StatusBadRequest, validationMessage(err))
	case err != nil:
		h.storeError(w, r, "register", err)
	default:
		pgjson.WriteData(w, http.StatusCreated, newUserView(u))
	}
}

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decodeBody(w, r, &req); err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		pgjson.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
	case err != nil:
		h.storeError(w, r, "login", err)
	default:
		pgjson.WriteData(w, http.StatusOK, newUserView(u))
	}
}

// ServeSendOTP stores and mails a reset code. The code itself is only echoed
// when the server runs with OTP exposure enabled.
func (h *Handler) ServeSendOTP(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decodeBody(w, r, &req); err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		pgjson.WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}

	otp, err := h.auth.SendOTP(r.Context(), req.Email)
	switch {
	case errors.Is(err, auth.ErrValidation):
		pgjson.WriteError(w, http.StatusBadRequest, validationMessage(err))
		return
	case err != nil:
		GetLoggerFromContext(r.Context(), h.logger).Error("OTP send failed", slog.String("error", err.Error()))
		pgjson.WriteError(w, http.StatusInternalServerError, "Failed to send OTP. Check server logs.")
		return
	}

	resp := pgjson.Envelope{Success: true, Message: "OTP sent successfully"}
	if h.config.Auth.ExposeOTP {
		resp.Data = map[string]string{"otp": otp}
	}
	pgjson.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ServeVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decodeBody(w, r, &req); err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.auth.VerifyOTP(r.Context(), req.Email, req.OTP)
	switch {
	case errors.Is(err, auth.ErrOTPNotFound):
		pgjson.WriteError(w, http.StatusBadRequest, "OTP not found or expired")
	case errors.Is(err, auth.ErrOTPInvalid):
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid OTP")
	case err != nil:
		pgjson.WriteError(w, http.StatusInternalServerError, "Failed to verify OTP")
	default:
		pgjson.WriteJSON(w, http.StatusOK, pgjson.Envelope{
			Success: true,
			Message: "OTP verified successfully",
			Data:    map[string]string{"resetToken": token},
		})
	}
}

func (h *Handler) ServeResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decodeBody(w, r, &req); err != nil {
		pgjson.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.auth.ResetPassword(r.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, auth.ErrValidation):
		pgjson.WriteError(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, auth.ErrResetTokenInvalid):
		pgjson.WriteError(w, http.StatusBadRequest, "Reset token invalid or expired")
	case err != nil:
		h.storeError(w, r, "reset password", err)
	default:
		pgjson.WriteMessage(w, http.StatusOK, "Password updated successfully")
	}
}
