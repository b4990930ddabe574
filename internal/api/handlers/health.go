package handlers

import (
	"net/http"

	"github.com/csrsef/chatbot/internal/services/chat"
	"github.com/csrsef/chatbot/pkg/httpext"
)

type HealthResponse struct {
	Status             string `json:"status"`
	UpstreamConfigured bool   `json:"upstream_configured"`
}

func HandleHealth(chatService chat.Service, w http.ResponseWriter, r *http.Request) {
	httpext.JsonResponse(w, http.StatusOK, HealthResponse{
		Status:             "ok",
		UpstreamConfigured: chatService.Ready() == nil,
	})
}
