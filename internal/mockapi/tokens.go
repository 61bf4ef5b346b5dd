package mockapi

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pawhub/internal/models"
	dErrors "pawhub/pkg/domain-errors"
)

const issuer = "pawhub-mockapi"

// Claims are carried by every access token the mock API issues.
type Claims struct {
	Kind models.SessionKind `json:"kind"`
	Role string             `json:"role"`
	jwt.RegisteredClaims
}

// ProfileID returns the numeric subject.
func (c *Claims) ProfileID() int64 {
	id, _ := strconv.ParseInt(c.Subject, 10, 64)
	return id
}

// TokenService signs and checks HS256 access tokens.
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenService(signingKey string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{signingKey: []byte(signingKey), ttl: ttl, now: time.Now}
}

// Issue signs a token for profile under kind.
func (s *TokenService) Issue(kind models.SessionKind, profile models.Profile) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not issue token")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Kind: kind,
		Role: profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(profile.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			ID:        hex.EncodeToString(b),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not issue token")
	}
	return signed, nil
}

// Validate checks signature, algorithm, expiry and issuer.
func (s *TokenService) Validate(raw string) (*Claims, error) {
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing token")
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || !claims.Kind.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return claims, nil
}
