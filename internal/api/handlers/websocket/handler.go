package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/csrsef/chatbot/internal/api/middleware"
	"github.com/csrsef/chatbot/internal/connections"
	"github.com/csrsef/chatbot/internal/services/chat"
	"github.com/csrsef/chatbot/internal/services/chat/models"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Same-origin and non-browser clients only
			origin := r.Header.Get("Origin")
			return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
		},
	}
)

// RequestFrame is one relay request sent by the client.
type RequestFrame struct {
	Route   string      `json:"route"`
	Message interface{} `json:"message"`
}

// ResponseFrame answers exactly one RequestFrame.
type ResponseFrame struct {
	Reply  string `json:"reply,omitempty"`
	Error  string `json:"error,omitempty"`
	Status int    `json:"status,omitempty"`
}

// HandleWebSocket upgrades the connection and answers each request frame with
// one response frame, one at a time.
func HandleWebSocket(chatService chat.Service, manager *connections.Manager, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("client_ip", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	var sessionID string
	if claims := middleware.GetSessionClaims(r); claims != nil {
		sessionID = claims.SessionID
	}

	client := manager.Register(conn, sessionID)
	defer func() {
		manager.Unregister(client)
		conn.Close()
	}()

	timeouts := manager.Timeouts()

	// Set up ping/pong handlers
	conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	})

	// Start ping ticker in separate goroutine
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(timeouts.PingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := client.Ping(timeouts.WriteWait); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	log.Info().
		Str("connection_id", client.ID).
		Str("client_ip", r.RemoteAddr).
		Msg("WebSocket relay connected")

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("connection_id", client.ID).Msg("Unexpected WebSocket closure")
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		frame := relayFrame(r, chatService, data)
		if err := client.WriteJSON(frame, timeouts.WriteWait); err != nil {
			log.Warn().Err(err).Str("connection_id", client.ID).Msg("Failed to write relay reply")
			return
		}

		// The relay may have outlasted the pong window.
		conn.SetReadDeadline(time.Now().Add(timeouts.PongWait))
	}
}

func relayFrame(r *http.Request, chatService chat.Service, data []byte) ResponseFrame {
	var frame RequestFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return errorFrame(&chat.ValidationError{Message: chat.InvalidRequest})
	}

	profile, ok := models.ProfileFor(frame.Route)
	if !ok {
		return ResponseFrame{Error: "Unknown route", Status: http.StatusBadRequest}
	}

	if err := chatService.Ready(); err != nil {
		return errorFrame(err)
	}

	message, ok := frame.Message.(string)
	if !ok {
		return errorFrame(&chat.ValidationError{Message: chat.MessageRequired})
	}

	resp, err := chatService.Relay(r.Context(), profile, models.RelayRequest{Message: message})
	if err != nil {
		return errorFrame(err)
	}
	return ResponseFrame{Reply: resp.Reply}
}

func errorFrame(err error) ResponseFrame {
	status, message := chat.HTTPStatus(err)
	return ResponseFrame{Error: message, Status: status}
}
