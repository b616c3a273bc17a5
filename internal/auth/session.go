// Package auth verifies bearer tokens issued by the identity provider and
// turns them into an explicit Session for the service layer.
package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"photomap-service/internal/apperr"
	"photomap-service/internal/log"
)

const sessionKey = "photomap.session"

// Session identifies the authenticated caller.
type Session struct {
	UserID uuid.UUID
	Email  string
}

// Claims is the token payload. The subject carries the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify parses and validates a raw token.
func (v *Verifier) Verify(tokenString string) (*Session, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = errors.New("token is not valid")
		}
		return nil, &apperr.Error{Kind: apperr.KindNotAuthenticated, Message: "invalid or expired token", Err: err}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindNotAuthenticated, Message: "invalid token subject", Err: err}
	}
	return &Session{UserID: userID, Email: claims.Email}, nil
}

// Issue signs a token for the given user. The identity provider normally
// issues tokens; this is used by tooling and tests.
func (v *Verifier) Issue(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// RequireSession rejects requests without a valid bearer token.
func (v *Verifier) RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return unauthorized(c, "authentication required")
		}
		session, err := v.Verify(token)
		if err != nil {
			log.Debug("rejecting bearer token", log.SourceHTTP, zap.Error(err))
			return unauthorized(c, apperr.Message(err))
		}
		c.Locals(sessionKey, session)
		return c.Next()
	}
}

// OptionalSession attaches a session when a valid token is present and
// lets anonymous requests through otherwise.
func (v *Verifier) OptionalSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c); ok {
			if session, err := v.Verify(token); err == nil {
				c.Locals(sessionKey, session)
			}
		}
		return c.Next()
	}
}

// FromCtx returns the session stored by one of the middlewares.
func FromCtx(c *fiber.Ctx) (*Session, bool) {
	session, ok := c.Locals(sessionKey).(*Session)
	return session, ok && session != nil
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   true,
		"kind":    apperr.KindNotAuthenticated.String(),
		"message": message,
	})
}
