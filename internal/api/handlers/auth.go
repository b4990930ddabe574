package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/csrsef/chatbot/internal/api/middleware"
	"github.com/csrsef/chatbot/internal/services/auth"
	"github.com/csrsef/chatbot/internal/services/auth/models"
	"github.com/csrsef/chatbot/internal/services/session"
	"github.com/csrsef/chatbot/pkg/httpext"
)

// HandleAuth compares the submitted password with the server secret. A match
// also issues a session cookie when sessionService is set.
func HandleAuth(gate *auth.Gate, sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	// A top-level null leaves req nil; it is as malformed as a non-object.
	var req *models.AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req == nil {
		log.Warn().
			Err(err).
			Str("request_id", middleware.RequestID(r)).
			Str("client_ip", r.RemoteAddr).
			Msg("Client sent malformed auth request")
		httpext.JsonError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if !gate.CheckValue(req.Password) {
		log.Warn().
			Str("request_id", middleware.RequestID(r)).
			Str("client_ip", r.RemoteAddr).
			Msg("Auth attempt rejected")
		httpext.JsonResponse(w, http.StatusUnauthorized, models.AuthResponse{Authenticated: false})
		return
	}

	if sessionService != nil {
		if err := sessionService.CreateSession(r.Context(), w); err != nil {
			log.Error().Err(err).Str("request_id", middleware.RequestID(r)).Msg("Failed to create session after successful auth")
		}
	}

	log.Info().
		Str("request_id", middleware.RequestID(r)).
		Str("client_ip", r.RemoteAddr).
		Msg("Auth attempt accepted")
	httpext.JsonResponse(w, http.StatusOK, models.AuthResponse{Authenticated: true})
}

// HandleLogout drops the caller's session and expires its cookie.
func HandleLogout(sessionService *session.Service, w http.ResponseWriter, r *http.Request) {
	if sessionService != nil {
		sessionService.ClearSession(w, r)
	}

	log.Info().
		Str("request_id", middleware.RequestID(r)).
		Str("client_ip", r.RemoteAddr).
		Msg("Session cleared")
	httpext.JsonResponse(w, http.StatusOK, models.AuthResponse{Authenticated: false})
}
