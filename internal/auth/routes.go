package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers auth routes
func RegisterRoutes(r *gin.Engine, handler *Handler, service *Service) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", Middleware(service), handler.Refresh)
		authGroup.GET("/me", Middleware(service), handler.Me)
	}
}
