// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notyourkokoro/FDB/controller"
	"github.com/notyourkokoro/FDB/middleware"
)

func SetupRouter(
	recordController *controller.RecordController,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	api := router.Group("/api/v1")

	recordController.RegisterRoutes(api)

	return router
}
