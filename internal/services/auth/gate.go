package auth

import (
	"crypto/subtle"

	"github.com/csrsef/chatbot/pkg/logger"
)

// Gate compares candidate passwords against one configured secret.
type Gate struct {
	secret []byte
}

// NewGate builds a gate. An empty secret rejects every candidate.
func NewGate(secret string) *Gate {
	if secret == "" {
		logger.Warn(logger.AUTH, "Access gate has no secret configured - all attempts will be rejected")
	}
	return &Gate{secret: []byte(secret)}
}

// Configured reports whether a secret is set.
func (g *Gate) Configured() bool {
	return len(g.secret) > 0
}

// Check reports whether password matches the secret exactly.
func (g *Gate) Check(password string) bool {
	if !g.Configured() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), g.secret) == 1
}

// CheckValue accepts a decoded JSON value. Anything that is not a string
// is a mismatch.
func (g *Gate) CheckValue(value interface{}) bool {
	password, ok := value.(string)
	if !ok {
		logger.Debug(logger.AUTH, "Rejecting non-string password of type %T", value)
		return false
	}
	return g.Check(password)
}
