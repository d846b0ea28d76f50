package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/washdesk/internal/auth"
)

type AuthHandler struct {
	issuer       *auth.Issuer
	username     string
	passwordHash string
	logger       *slog.Logger
}

func NewAuthHandler(issuer *auth.Issuer, username, passwordHash string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{issuer: issuer, username: username, passwordHash: passwordHash, logger: logger}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login handles POST /admin/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if h.passwordHash == "" {
		writeError(w, http.StatusServiceUnavailable, "Admin login is not configured")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = h.username
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.username)) == 1
	passErr := auth.CheckPassword(h.passwordHash, req.Password)
	if !userOK || passErr != nil {
		h.logger.Warn("admin login failed", "username", username)
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, exp, err := h.issuer.Issue(username)
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	h.logger.Info("admin signed in", "username", username)
	writeData(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: exp})
}

// Me handles GET /admin/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	writeData(w, http.StatusOK, map[string]string{"username": ac.Subject, "role": ac.Role})
}
