package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"food-delivery-tracking/models"
)

const actorKey = "actor"

type Claims struct {
	UserID uint        `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for an actor.
func GenerateToken(secret []byte, actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: actor.ID,
		Role:   actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// UserFinder loads the user a token names.
type UserFinder func(ctx context.Context, id uint) (*models.User, error)

// GormUsers finds users in db. A missing user is reported as a nil user.
func GormUsers(db *gorm.DB) UserFinder {
	return func(ctx context.Context, id uint) (*models.User, error) {
		var user models.User
		err := db.WithContext(ctx).First(&user, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
}

// AuthRequired validates the JWT, checks that its user still exists in the
// claimed role, and stores the resulting actor in the context.
func AuthRequired(secret []byte, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header required (Bearer <token>)"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid || !claims.Role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}

		user, err := users(c.Request.Context(), claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to resolve user"})
			return
		}
		if user == nil || user.Role != claims.Role {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not found"})
			return
		}

		c.Set(actorKey, models.Actor{Role: user.Role, ID: user.ID})
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Role not found in context"})
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   "Access denied. Required role(s): " + rolesString(roles),
		})
	}
}

func rolesString(roles []models.Role) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	val, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := val.(models.Actor)
	return actor, ok
}

// GetActor returns the authenticated actor. Only call it behind AuthRequired.
func GetActor(c *gin.Context) models.Actor {
	actor, _ := ActorFrom(c)
	return actor
}
