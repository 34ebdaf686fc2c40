package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"submission-review-service/internal/core/domain"
)

const identityKey = "identity"

// Claims is the bearer token payload. The subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Auth verifies the HS256 bearer token and stores the caller identity on
// the context. Every protected handler reads it back with GetIdentity.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthenticated(c, "authorization header is required")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			unauthenticated(c, "invalid authorization header format")
			return
		}

		identity, err := ParseToken(key, tokenString)
		if err != nil {
			unauthenticated(c, "invalid or expired token")
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// ParseToken validates tokenString and converts its claims to an identity.
func ParseToken(key []byte, tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Identity{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Identity{}, jwt.ErrSignatureInvalid
	}
	if claims.Subject == "" {
		return domain.Identity{}, errors.New("token has no subject")
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Identity{}, errors.New("token carries an unknown role")
	}

	return domain.Identity{ID: claims.Subject, Role: role, Name: claims.Name}, nil
}

// SignToken issues an HS256 token for identity valid for ttl.
func SignToken(secret string, identity domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(identity.Role),
		Name: identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GetIdentity returns the identity stored by Auth.
func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

func unauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "code": "unauthenticated"})
}
