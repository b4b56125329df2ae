package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"trainingdesk/internal/api"
	"trainingdesk/pkg/config"
)

type Handlers struct {
	Cfg config.Config
}

type tokenRequest struct {
	Secret string `json:"secret"`
	Name   string `json:"name,omitempty"`
}

// Token exchanges the configured staff shared secret for a bearer token.
// Ops/dev convenience only; disabled when no shared secret is configured.
func (h Handlers) Token(w http.ResponseWriter, r *http.Request) {
	if h.Cfg.Auth.StaffSharedSecret == "" {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "token exchange disabled")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid body")
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.Cfg.Auth.StaffSharedSecret)) != 1 {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "wrong secret")
		return
	}

	name := req.Name
	if name == "" {
		name = "staff"
	}
	ttl := time.Duration(h.Cfg.Auth.TokenTTLMinutes) * time.Minute
	tok, err := IssueStaffToken(h.Cfg.Auth.JWTSecret, name, name, ttl, time.Now())
	if err != nil {
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "failed to issue token")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"token":     tok,
		"expiresIn": int(ttl.Seconds()),
	})
}
