package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/csrsef/chatbot/internal/api/handlers/websocket"
	"github.com/csrsef/chatbot/internal/api/middleware"
	"github.com/csrsef/chatbot/internal/services"
	"github.com/csrsef/chatbot/pkg/httpext"
)

func RegisterRoutes(router *mux.Router, services *services.Services) {
	router.Use(middleware.AccessLog, middleware.Recover)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpext.JsonError(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpext.JsonError(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	// Public routes
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		HandleHealth(services.GetChatService(), w, r)
	}).Methods("GET")

	// Relay routes and the websocket are gated on a session cookie when
	// REQUIRE_SESSION is set. The gate wraps each handler so every route stays
	// on one router and method mismatches still answer 405.
	sessionGate := middleware.RequireSession(services.GetSessionService(), services.Config().RequireSession)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		HandleAuth(services.GetAuthGate(), services.GetSessionService(), w, r)
	}).Methods("POST")
	apiRouter.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		HandleLogout(services.GetSessionService(), w, r)
	}).Methods("POST")
	apiRouter.Handle("/chat", sessionGate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandleChat(services.GetChatService(), w, r)
	}))).Methods("POST")
	apiRouter.Handle("/prompt", sessionGate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HandlePrompt(services.GetChatService(), w, r)
	}))).Methods("POST")

	router.Handle("/ws", sessionGate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		websocket.HandleWebSocket(services.GetChatService(), services.GetConnectionManager(), w, r)
	}))).Methods("GET")
}
