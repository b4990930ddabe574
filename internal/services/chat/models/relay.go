package models

// RelayRequest is the body accepted by the chat and prompt routes.
type RelayRequest struct {
	Message string `json:"message" validate:"required"`
}

// RelayResponse is the success body of the chat and prompt routes.
type RelayResponse struct {
	Reply string `json:"reply"`
}
