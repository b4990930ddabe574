package models

// AuthRequest is the body accepted by the auth route. Password is left as raw
// JSON so a missing or non-string value can be told apart from a malformed body.
type AuthRequest struct {
	Password interface{} `json:"password"`
}

// AuthResponse is the body of every well-formed auth answer.
type AuthResponse struct {
	Authenticated bool `json:"authenticated"`
}
