package middleware

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/api/response"
	jwtutil "github.com/Soufiane-Tahiri/faculty-management-portal/pkg/jwt"
)

const (
	claimsContextKey = "claims"

	// AccessTokenCookie carries the signed session token.
	AccessTokenCookie = "access_token"
)

type Claims = jwtutil.Claims

var (
	jwtPublicKeyMu sync.RWMutex
	jwtPublicKey   *rsa.PublicKey
)

// SetJWTPublicKey injects the verification key. main calls this once at
// startup; tests call it with a throwaway key pair.
func SetJWTPublicKey(key *rsa.PublicKey) {
	jwtPublicKeyMu.Lock()
	defer jwtPublicKeyMu.Unlock()
	jwtPublicKey = key
}

func getJWTPublicKey() (*rsa.PublicKey, error) {
	jwtPublicKeyMu.RLock()
	key := jwtPublicKey
	jwtPublicKeyMu.RUnlock()
	if key != nil {
		return key, nil
	}

	path := strings.TrimSpace(os.Getenv("FACULTY_JWT_PUBLIC_KEY_FILE"))
	if path == "" {
		return nil, errors.New("jwt public key not configured")
	}

	// #nosec G304 -- path is provided by operator config.
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := parseRSAPublicKey(raw)
	if err != nil {
		return nil, err
	}

	SetJWTPublicKey(parsed)
	return parsed, nil
}

func parseRSAPublicKey(raw []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("invalid PEM block in jwt public key")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("jwt public key is not RSA")
	}
	return key, nil
}

// JWTAuth rejects requests without a valid access token, taken from the
// session cookie or an Authorization bearer header.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := GetClaims(c); ok && claims != nil {
			c.Next()
			return
		}

		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			response.Fail(c, 401, "Non autorisé")
			c.Abort()
			return
		}

		publicKey, err := getJWTPublicKey()
		if err != nil {
			response.Fail(c, 401, "Non autorisé")
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseAccessToken(tokenString, publicKey)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.Fail(c, 401, "Session expirée")
			} else {
				response.Fail(c, 401, "Non autorisé")
			}
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. It assumes JWTAuth
// ran earlier in the chain.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(roles) == 0 {
			c.Next()
			return
		}

		claims, ok := GetClaims(c)
		if !ok {
			response.Fail(c, 401, "Non autorisé")
			c.Abort()
			return
		}

		for _, role := range roles {
			if strings.EqualFold(claims.Role, role) {
				c.Next()
				return
			}
		}

		response.Fail(c, 403, "Accès refusé")
		c.Abort()
	}
}

func GetClaims(c *gin.Context) (*Claims, bool) {
	val, ok := c.Get(claimsContextKey)
	if !ok {
		return nil, false
	}
	claims, ok := val.(*Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return claims, true
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
