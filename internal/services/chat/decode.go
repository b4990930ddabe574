package chat

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/csrsef/chatbot/internal/services/chat/models"
)

const InvalidRequest = "Invalid request"

// DecodeRequest reads a relay body. A non-string message is reported the same
// way as a missing one; any other decode failure is an invalid request.
func DecodeRequest(r io.Reader) (models.RelayRequest, error) {
	var req models.RelayRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "message" {
			return req, &ValidationError{Message: MessageRequired}
		}
		return req, &ValidationError{Message: InvalidRequest}
	}
	return req, nil
}
