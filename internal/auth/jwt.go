package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"github.com/simaogato/assetflow-backend/internal/domain"
)

// Verifier checks HS256 tokens signed with the shared secret and yields the owner id from "sub"
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier for the given shared secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret), now: time.Now}
}

// Verify parses a raw token, or an "Authorization" header value with a Bearer prefix
func (v *Verifier) Verify(raw string) (uuid.UUID, error) {
	tokenStr := strings.TrimSpace(raw)
	if len(tokenStr) > 7 && strings.EqualFold(tokenStr[:7], "bearer ") {
		tokenStr = strings.TrimSpace(tokenStr[7:])
	}
	if tokenStr == "" {
		return uuid.Nil, fmt.Errorf("%w: missing token", domain.ErrUnauthenticated)
	}

	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: failed to parse token: %v", domain.ErrUnauthenticated, err)
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}
	if claims.ExpiresAt != 0 && v.now().UTC().Unix() > claims.ExpiresAt {
		return uuid.Nil, fmt.Errorf("%w: jwt is expired", domain.ErrUnauthenticated)
	}

	ownerID, err := uuid.Parse(claims.Subject)
	if err != nil || ownerID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: subject is not a user id", domain.ErrUnauthenticated)
	}
	return ownerID, nil
}

// Issue signs a token for ownerID valid for ttl
func (v *Verifier) Issue(ownerID uuid.UUID, ttl time.Duration) (string, error) {
	now := v.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   ownerID.String(),
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

type ownerKey struct{}

// WithOwner returns a copy of ctx carrying the authenticated owner id
func WithOwner(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerFromContext returns the owner id stored by WithOwner
func OwnerFromContext(ctx context.Context) (uuid.UUID, error) {
	ownerID, ok := ctx.Value(ownerKey{}).(uuid.UUID)
	if !ok || ownerID == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	return ownerID, nil
}

// IsUnauthenticated reports whether err came from a failed verification
func IsUnauthenticated(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated)
}
