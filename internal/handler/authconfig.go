package handler

import "net/http"

// AuthConfig is the public identity-provider configuration the front-end
// needs to run its login flow. None of these values are secrets — the
// browser must know all of them to redirect to the provider.
type AuthConfig struct {
	Domain      string `json:"domain"`
	ClientID    string `json:"clientID"`
	Audience    string `json:"audience"`
	CallbackURL string `json:"callbackURL"`
}

// AuthConfigHandler serves GET /auth/config. The route is unauthenticated:
// the front-end has to read it BEFORE it can obtain a token.
type AuthConfigHandler struct {
	config AuthConfig
}

// NewAuthConfigHandler creates an AuthConfigHandler.
func NewAuthConfigHandler(config AuthConfig) *AuthConfigHandler {
	return &AuthConfigHandler{config: config}
}

// HandleGet returns the provider configuration as JSON.
func (h *AuthConfigHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.config)
}
