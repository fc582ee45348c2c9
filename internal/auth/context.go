package auth

import "github.com/gin-gonic/gin"

const actorKey = "authActor"

// SetActor stores the authenticated actor in the Gin context.
func SetActor(c *gin.Context, actor Actor) {
	c.Set(actorKey, actor)
}

// GetActor returns the authenticated actor stored by the auth middleware.
func GetActor(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

// Credential returns the raw Authorization header of the request, used to
// propagate the caller's token to remote collaborator services.
func Credential(c *gin.Context) string {
	return c.GetHeader("Authorization")
}
