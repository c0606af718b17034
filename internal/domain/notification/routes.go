package notification

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the user-facing notification routes.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	notifGroup := protected.Group("/notifications")
	{
		notifGroup.GET("", handler.GetNotifications)
		notifGroup.GET("/count", handler.GetCounts)
		notifGroup.PUT("/:id/read", handler.MarkAsRead)
		notifGroup.PUT("/read-all", handler.MarkAllAsRead)
		notifGroup.DELETE("/:id", handler.DeleteNotification)
	}
}

// RegisterInternalRoutes registers the service-to-service routes.
func RegisterInternalRoutes(internal *gin.RouterGroup, handler *Handler) {
	internal.POST("/notifications", handler.CreateInternal)
}
