package manager

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"merchant-notification-service/pkg/config"
)

// Dependencies 依赖注入容器，持有启动期初始化的存储句柄。
// Only the handle matching Config.Store.Driver is set; Redis may be nil.
type Dependencies struct {
	DB         *gorm.DB
	Collection *mongo.Collection
	Redis      *redis.Client
	Config     *config.Config
}

// RegisterAllRoutes 注册所有路由。
// 商户通知服务只依赖 Controller 插件。
func RegisterAllRoutes(router *gin.Engine) {
	openApiGroup := router.Group("/api")
	innerApiGroup := router.Group("/api")
	debugApiGroup := router.Group("/debug")
	opsApiGroup := router.Group("/ops")

	MustInitControllers(openApiGroup, innerApiGroup, debugApiGroup, opsApiGroup)
}
