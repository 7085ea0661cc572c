package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

// Actor — личность вызывающего из JWT, выданного внешним identity-сервисом.
// sub — id пользователя; у исполнителей дополнительно есть professional_id.
type Actor struct {
	UserID         uuid.UUID
	ProfessionalID uuid.UUID
	Role           string
}

// JWTMiddleware разбирает Bearer-токен и кладёт Actor в контекст запроса.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token claims"})
			}

			actor := Actor{}
			if sub, ok := claims["sub"].(string); ok {
				actor.UserID, _ = uuid.Parse(sub)
			}
			if actor.UserID == uuid.Nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token claims"})
			}
			if role, ok := claims["role"].(string); ok {
				actor.Role = role
			}
			if pid, ok := claims["professional_id"].(string); ok {
				actor.ProfessionalID, _ = uuid.Parse(pid)
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

// RequireRole пропускает только перечисленные роли.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := c.Get(actorContextKey).(Actor)
			if !ok || actor.Role == "" {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "role missing"})
			}
			for _, r := range roles {
				if actor.Role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
		}
	}
}

func actorFrom(c echo.Context) (Actor, bool) {
	actor, ok := c.Get(actorContextKey).(Actor)
	return actor, ok
}
