package handler

import (
	"net/http"
	"strings"

	"storereviews/pkg/logger"
	"storereviews/reviews-service/internal/app/reviews/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Ключи gin.Context, которые выставляет Authenticate
const (
	ctxUserID   = "user_id"
	ctxRoleName = "role_name"
)

// JWTClaims структура claims для JWT токена, выданного Auth Service
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	RoleID      int      `json:"role_id"`
	RoleName    string   `json:"role_name"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// AuthMiddleware проверяет JWT токен в запросах для Gin
type AuthMiddleware struct {
	jwtSecret string
	blacklist repository.TokenBlacklist
}

// NewAuthMiddleware создает новый middleware для аутентификации
func NewAuthMiddleware(jwtSecret string, blacklist repository.TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		blacklist: blacklist,
	}
}

func abortWith(c *gin.Context, status int, errText, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   errText,
		"message": message,
	})
}

// Authenticate проверяет JWT токен и добавляет данные пользователя в контекст Gin
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWith(c, http.StatusUnauthorized, "Unauthorized", "Authorization header required")
			return
		}

		// Проверяем формат "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, http.StatusUnauthorized, "Unauthorized", "Invalid authorization header format")
			return
		}

		tokenString := parts[1]

		token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(m.jwtSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			abortWith(c, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*JWTClaims)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "Unauthorized", "Invalid token claims")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortWith(c, http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
			return
		}

		// Токен мог быть отозван при logout в Auth Service
		revoked, err := m.blacklist.IsBlacklisted(c.Request.Context(), tokenString)
		if err != nil {
			logger.Ctx(c.Request.Context()).Error().Err(err).Msg("Failed to check token blacklist")
			abortWith(c, http.StatusInternalServerError, "Internal Server Error", "Failed to validate token")
			return
		}
		if revoked {
			abortWith(c, http.StatusUnauthorized, "Unauthorized", "Token has been revoked")
			return
		}

		c.Set(ctxUserID, userID)
		c.Set("email", claims.Email)
		c.Set("role_id", claims.RoleID)
		c.Set(ctxRoleName, claims.RoleName)
		c.Set("permissions", claims.Permissions)

		c.Next()
	}
}

// HasAnyRole - true, если хотя бы одна роль вызывающего есть среди требуемых
func HasAnyRole(callerRoles []string, required []string) bool {
	for _, have := range callerRoles {
		for _, want := range required {
			if have == want {
				return true
			}
		}
	}
	return false
}

// RequireRole пропускает запрос, только если роль из токена входит в roles
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleName, exists := c.Get(ctxRoleName)
		if !exists {
			abortWith(c, http.StatusUnauthorized, "Unauthorized", "Unauthorized")
			return
		}

		roleStr, ok := roleName.(string)
		if !ok {
			abortWith(c, http.StatusUnauthorized, "Unauthorized", "Unauthorized")
			return
		}

		if !HasAnyRole([]string{roleStr}, roles) {
			abortWith(c, http.StatusForbidden, "Forbidden", "Insufficient permissions")
			return
		}

		c.Next()
	}
}
