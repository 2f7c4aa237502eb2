package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "github.com/golang-jwt/jwt/v5"
)

// ContextUserID is the gin context key holding the authenticated user ID.
const ContextUserID = "user_id"

// AuthRequired validates the bearer token and stores the user ID on the
// context. EventSource cannot set headers, so streaming endpoints may pass
// the token as a query parameter instead.
func (h *Handler) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			tokenString = header[len("Bearer "):]
		} else if query := c.Query("token"); query != "" {
			tokenString = query
		}
		if tokenString == "" {
			respondError(c, http.StatusUnauthorized, "Authorization token missing")
			return
		}

		userID, err := h.parseJWT(tokenString)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid token or expired")
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

func (h *Handler) parseJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return h.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("missing subject")
	}
	return sub, nil
}
