package activity

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the user-facing activity routes.
func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	activityGroup := protected.Group("/activities")
	{
		activityGroup.GET("", handler.GetActivities)
		activityGroup.GET("/count", handler.GetActivityCount)
	}
}

// RegisterInternalRoutes registers the service-to-service routes.
func RegisterInternalRoutes(internal *gin.RouterGroup, handler *Handler) {
	internal.POST("/activities", handler.RecordInternal)
}
