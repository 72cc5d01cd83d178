package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	journeydomain "github.com/suryashakti/partner-crm/internal/journey/domain"
)

const (
	headerActorRole = "X-Actor-Role"
	headerActorID   = "X-Actor-Id"

	contextActorKey = "actor"
)

// ActorMiddleware records who performed the request for audit fields.
// Missing headers are tolerated; the actor is then recorded as unknown.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.TrimSpace(c.GetHeader(headerActorRole))
		if role == "" {
			role = "unknown"
		}
		c.Set(contextActorKey, journeydomain.Actor{
			Role: role,
			ID:   strings.TrimSpace(c.GetHeader(headerActorID)),
		})
		c.Next()
	}
}

func actorFromContext(c *gin.Context) journeydomain.Actor {
	value, ok := c.Get(contextActorKey)
	if !ok {
		return journeydomain.Actor{Role: "unknown"}
	}
	actor, ok := value.(journeydomain.Actor)
	if !ok {
		return journeydomain.Actor{Role: "unknown"}
	}
	return actor
}
