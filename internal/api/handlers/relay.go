package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/csrsef/chatbot/internal/api/middleware"
	"github.com/csrsef/chatbot/internal/services/chat"
	"github.com/csrsef/chatbot/internal/services/chat/models"
	"github.com/csrsef/chatbot/pkg/httpext"
)

// HandleChat relays one message to the chat model.
func HandleChat(chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	handleRelay(chatService, models.ChatProfile, w, r)
}

// HandlePrompt rewrites one message into a meta-prompt.
func HandlePrompt(chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	handleRelay(chatService, models.PromptProfile, w, r)
}

func handleRelay(chatService chat.Service, profile models.Profile, w http.ResponseWriter, r *http.Request) {
	if err := chatService.Ready(); err != nil {
		writeRelayError(w, r, profile, err)
		return
	}

	req, err := chat.DecodeRequest(r.Body)
	if err != nil {
		writeRelayError(w, r, profile, err)
		return
	}

	log.Info().
		Str("request_id", middleware.RequestID(r)).
		Str("route", profile.Route).
		Int("message_bytes", len(req.Message)).
		Str("client_ip", r.RemoteAddr).
		Msg("Received relay request")

	resp, err := chatService.Relay(r.Context(), profile, req)
	if err != nil {
		writeRelayError(w, r, profile, err)
		return
	}

	httpext.JsonResponse(w, http.StatusOK, resp)

	log.Info().
		Str("request_id", middleware.RequestID(r)).
		Str("route", profile.Route).
		Str("client_ip", r.RemoteAddr).
		Int("status", http.StatusOK).
		Msg("Relay request processed successfully")
}

func writeRelayError(w http.ResponseWriter, r *http.Request, profile models.Profile, err error) {
	status, message := chat.HTTPStatus(err)

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Err(err).
		Str("request_id", middleware.RequestID(r)).
		Str("route", profile.Route).
		Str("client_ip", r.RemoteAddr).
		Int("status", status).
		Msg("Relay request failed")

	httpext.JsonError(w, message, status)
}
