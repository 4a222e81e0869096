package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"safety-forms-api/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := config.LoadConfig()

		accessToken := bearerToken(c.GetHeader("Authorization"))
		if accessToken == "" {
			accessToken, _ = c.Cookie("access_token")
		}
		if accessToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing access token"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(accessToken, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		var userID float64
		switch v := claims["user_id"].(type) {
		case float64:
			userID = v
		case string:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
				c.Abort()
				return
			}
			userID = f
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
			c.Abort()
			return
		}

		roles := []string{}
		if arr, ok := claims["roles"].([]interface{}); ok {
			for _, v := range arr {
				if s, ok := v.(string); ok && s != "" {
					roles = append(roles, s)
				}
			}
		}

		c.Set("userID", userID)
		c.Set("roles", roles)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// CurrentUserID reads the id set by AuthMiddleware. JWT numbers arrive as float64;
// test routers may set a uint directly.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case float64:
		if id <= 0 {
			return 0, false
		}
		return uint(id), true
	case uint:
		return id, id > 0
	default:
		return 0, false
	}
}

func CurrentRoles(c *gin.Context) []string {
	v, _ := c.Get("roles")
	roles, _ := v.([]string)
	return roles
}
