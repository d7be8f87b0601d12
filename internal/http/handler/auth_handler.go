package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/univdir/universities-api/internal/http/response"
	"github.com/univdir/universities-api/internal/mail"
	"github.com/univdir/universities-api/internal/observability"
	"github.com/univdir/universities-api/internal/service"
)

type AuthHandler struct {
	authSvc  *service.AuthService
	notifier mail.Notifier
}

func NewAuthHandler(authSvc *service.AuthService, notifier mail.Notifier) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, notifier: notifier}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// Login answers 202 with the signed token. The contract is Accepted,
// not OK.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email and password are required", nil)
		return
	}

	token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.login.failed", "email", req.Email)
		response.DomainError(w, r, err)
		return
	}

	observability.Audit(r, "auth.login.success", "email", req.Email)
	response.JSON(w, r, http.StatusAccepted, map[string]string{"token": token})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "forgot_password", status, time.Since(start))
	}()

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email is required", nil)
		return
	}

	res, err := h.authSvc.RequestResetPasswordToken(r.Context(), req.Email)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.forgot_password.failed", "email", req.Email)
		response.DomainError(w, r, err)
		return
	}

	if err := h.notifier.SendResetToken(req.Email, res.Name, res.Token); err != nil {
		observability.RecordMailEvent(r.Context(), "reset_token", "failure")
		observability.Audit(r, "auth.forgot_password.mail_failed", "email", req.Email)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to send reset email", nil)
		return
	}
	observability.RecordMailEvent(r.Context(), "reset_token", "success")
	observability.Audit(r, "auth.forgot_password.issued", "email", req.Email)
	response.JSON(w, r, http.StatusOK, res)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "change_password", status, time.Since(start))
	}()

	var req service.ChangePasswordInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed request body", nil)
		return
	}
	if req.Email == "" || req.CurrentPassword == "" || req.NewPassword == "" || req.Token == "" {
		status = "failure"
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "email, currentPassword, newPassword and token are required", nil)
		return
	}

	name, err := h.authSvc.ChangePassword(r.Context(), req)
	if err != nil {
		status = "failure"
		observability.Audit(r, "auth.change_password.failed", "email", req.Email)
		response.DomainError(w, r, err)
		return
	}

	if err := h.notifier.SendPasswordChanged(req.Email, name); err != nil {
		// The password is already rotated; a lost confirmation email is
		// not worth failing the request over.
		observability.RecordMailEvent(r.Context(), "password_changed", "failure")
	} else {
		observability.RecordMailEvent(r.Context(), "password_changed", "success")
	}

	observability.Audit(r, "auth.change_password.success", "email", req.Email)
	response.JSON(w, r, http.StatusOK, map[string]string{"name": name})
}
