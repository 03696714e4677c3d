package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/murmur-app/murmur-backend/internal/reqctx"
)

// Claims carries the authenticated user id in addition to the registered set.
type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthMiddleware(secret string, ttl time.Duration) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(secret), ttl: ttl}
}

// GenerateToken issues a signed HS256 token for the given user id.
func (m *AuthMiddleware) GenerateToken(userID uint64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "murmur-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// RequireAuth validates the bearer token and stores the user id on the echo
// context under "uid" and in the request context for downstream logging.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid || claims.UserID == 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid_token"})
		}

		c.Set("uid", claims.UserID)
		ctx := reqctx.WithUID(c.Request().Context(), claims.UserID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
