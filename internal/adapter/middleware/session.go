package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"worklog-backend/pkg/token"
)

const (
	// Header carrying the session token issued at login.
	TokenHeader = "X-Session-Token"

	sessionKeyPrefix = "session:"
	contextKey       = "worklog.session"
)

var ErrNoSession = errors.New("no such session")

// Session is the explicit per-request auth context handlers receive,
// instead of ambient login flags.
type Session struct {
	Authenticated bool      `json:"authenticated"`
	ActorID       string    `json:"actor_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store keeps sessions in redis with a TTL, so a restart of the service
// does not silently re-authenticate anyone.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Create(ctx context.Context, actorID string) (string, error) {
	tok := token.New()
	sess := Session{Authenticated: true, ActorID: actorID, CreatedAt: time.Now().UTC()}
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	// SetNX guards against the (vanishingly unlikely) token collision.
	ok, err := s.rdb.SetNX(ctx, sessionKeyPrefix+tok, payload, s.ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errors.New("session token collision")
	}
	return tok, nil
}

func (s *Store) Get(ctx context.Context, tok string) (*Session, error) {
	if !token.Valid(tok) {
		return nil, ErrNoSession
	}
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+tok).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, ErrNoSession
	}
	return &sess, nil
}

func (s *Store) Destroy(ctx context.Context, tok string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+tok).Err()
}

// RequireSession gates privileged routes. The loaded session is placed
// on the echo context for handlers to read via SessionFrom.
func RequireSession(store *Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := strings.TrimSpace(c.Request().Header.Get(TokenHeader))
			if tok == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing " + TokenHeader})
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
			defer cancel()
			sess, err := store.Get(ctx, tok)
			if err != nil {
				if errors.Is(err, ErrNoSession) {
					return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired session"})
				}
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "session store unavailable"})
			}
			c.Set(contextKey, sess)
			return next(c)
		}
	}
}

// SessionFrom returns the request's session, or an unauthenticated one
// when the middleware did not run.
func SessionFrom(c echo.Context) *Session {
	if sess, ok := c.Get(contextKey).(*Session); ok {
		return sess
	}
	return &Session{}
}
