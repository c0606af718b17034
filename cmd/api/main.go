package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"billsplit/internal/config"
	"billsplit/internal/database"
	"billsplit/internal/domain/activity"
	"billsplit/internal/domain/notification"
	"billsplit/internal/middleware"
	jwtsvc "billsplit/internal/pkg/jwt"
	"billsplit/internal/realtime"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&notification.Notification{}, &activity.Activity{}); err != nil {
		log.Fatal(err)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	// One hub per process, injected everywhere live pushes are needed.
	hub := realtime.NewHub()
	gateway := realtime.NewGateway(hub, j)

	notifRepo := notification.NewRepository(db)
	notifService := notification.NewService(notifRepo, hub)
	notifHandler := notification.NewHandler(notifService)

	activityRepo := activity.NewRepository(db)
	activityService := activity.NewService(activityRepo, hub)
	activityHandler := activity.NewHandler(activityService)

	r := gin.Default()
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorLogger())

	r.GET("/ws/notifications", gateway.HandleWebSocket)

	v1 := r.Group("/api/v1")
	{
		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			notification.RegisterRoutes(protected, notifHandler)
			activity.RegisterRoutes(protected, activityHandler)
		}

		internal := v1.Group("/internal")
		internal.Use(middleware.InternalTokenAuth(cfg.InternalToken))
		{
			notification.RegisterInternalRoutes(internal, notifHandler)
			activity.RegisterInternalRoutes(internal, activityHandler)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
