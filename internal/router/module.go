package router

import "github.com/gin-gonic/gin"

// Module is one feature slice of the API (users, diary, evaluations). Each
// module mounts its own routes and per-route limiters on the /api/v1 group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
