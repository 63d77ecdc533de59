package app

import (
	"github.com/gin-gonic/gin"

	"merchant-notification-service/pkg/manager"
)

// registerRoutes attaches every init-registered controller plugin to router.
func registerRoutes(router *gin.Engine) {
	manager.RegisterAllRoutes(router)
}
