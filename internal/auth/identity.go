package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken  = errors.New("missing bearer token")
	ErrMissingUserID = errors.New("bearer token carries no user id")
)

// Identity is the caller as asserted by the identity provider's token. The
// token is not verified here; the location API verifies it on every call.
type Identity struct {
	Token  string
	UserID string
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// ParseBearer extracts the token from an Authorization header value and reads
// the uid claim. Firebase ID tokens carry it as "user_id" and "sub".
func ParseBearer(header string) (Identity, error) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return Identity{}, ErrMissingToken
	}
	token := strings.TrimSpace(header[7:])
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	id := Identity{Token: token}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return id, nil
	}
	if uid, ok := claims["user_id"].(string); ok && uid != "" {
		id.UserID = uid
	} else if sub, err := claims.GetSubject(); err == nil {
		id.UserID = sub
	}
	return id, nil
}
