package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/csrsef/chatbot/internal/config"
	"github.com/csrsef/chatbot/internal/infrastructure/redis"
	"github.com/csrsef/chatbot/pkg/logger"
)

const cookieLifetime = 1 * time.Hour

type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

type SessionStore interface {
	Set(ctx context.Context, sessionID string, claims *SessionClaims) error
	Get(ctx context.Context, sessionID string) (*SessionClaims, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	redisService *redis.Service
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionClaims
}

type Service struct {
	store      SessionStore
	secret     []byte
	cookieName string
	secure     bool
}

// NewService picks the Redis store when redisService is reachable and an
// in-memory store otherwise.
func NewService(cfg config.Config, redisService *redis.Service) *Service {
	var store SessionStore
	if redisService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := redisService.Ping(ctx); err != nil {
			logger.Warn(logger.SESSION, "Redis unreachable, falling back to memory store: %v", err)
			store = NewMemoryStore()
		} else {
			logger.Info(logger.SESSION, "Using Redis session store")
			store = &RedisStore{redisService: redisService}
		}
	} else {
		logger.Info(logger.SESSION, "Using in-memory session store")
		store = NewMemoryStore()
	}

	return NewServiceWithStore(cfg, store)
}

func NewServiceWithStore(cfg config.Config, store SessionStore) *Service {
	name := cfg.SessionCookieName
	if name == "" {
		name = config.DefaultSessionCookieName
	}
	return &Service{
		store:      store,
		secret:     []byte(cfg.SessionSecret),
		cookieName: name,
		secure:     cfg.SessionCookieSecure,
	}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*SessionClaims),
	}
}

// Redis Store implementation
func (rs *RedisStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	data, err := json.Marshal(claims)
	if err != nil {
		return err
	}

	return rs.redisService.Store(ctx, redis.Key("session", sessionID), string(data), cookieLifetime)
}

func (rs *RedisStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	data, found, err := rs.redisService.Load(ctx, redis.Key("session", sessionID))
	if err != nil || !found {
		return nil, err
	}

	var claims SessionClaims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, err
	}

	return &claims, nil
}

func (rs *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return rs.redisService.Forget(ctx, redis.Key("session", sessionID))
}

// Memory Store implementation. Expired sessions are swept on every write.
func (ms *MemoryStore) Set(ctx context.Context, sessionID string, claims *SessionClaims) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	now := time.Now()
	for id, c := range ms.sessions {
		if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
			delete(ms.sessions, id)
		}
	}
	ms.sessions[sessionID] = claims
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.sessions)
}

func (ms *MemoryStore) Get(ctx context.Context, sessionID string) (*SessionClaims, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	claims, exists := ms.sessions[sessionID]
	if !exists {
		return nil, nil
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return claims, nil
}

func (ms *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.sessions, sessionID)
	return nil
}

// CookieName returns the name of the session cookie.
func (s *Service) CookieName() string {
	return s.cookieName
}

// CreateSession stores a new session and sets its signed cookie on w.
func (s *Service) CreateSession(ctx context.Context, w http.ResponseWriter) error {
	now := time.Now()
	sessionID := uuid.New().String()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cookieLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sessionID,
		},
		SessionID: sessionID,
	}

	if err := s.store.Set(ctx, sessionID, claims); err != nil {
		return err
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, s.cookie(signedToken, now.Add(cookieLifetime)))
	logger.Debug(logger.SESSION, "Created session %s", sessionID)
	return nil
}

// ValidateSession returns the claims of a live session, or nil when the
// request carries none.
func (s *Service) ValidateSession(r *http.Request) (*SessionClaims, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, err
	}

	claims, err := s.parse(cookie.Value)
	if err != nil {
		return nil, err
	}

	storedClaims, err := s.store.Get(r.Context(), claims.SessionID)
	if err != nil {
		return nil, err
	}
	if storedClaims == nil {
		return nil, nil
	}

	return claims, nil
}

// ClearSession removes the session from storage and expires its cookie.
func (s *Service) ClearSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cookieName); err == nil {
		if claims, err := s.parse(cookie.Value); err == nil {
			_ = s.store.Delete(r.Context(), claims.SessionID)
		}
	}

	http.SetCookie(w, s.cookie("", time.Now().Add(-1*time.Hour)))
}

func (s *Service) parse(value string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

func (s *Service) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     s.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  expires,
	}
}
