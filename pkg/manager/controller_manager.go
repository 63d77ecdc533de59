package manager

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"

	"merchant-notification-service/pkg/logger"
)

type (
	// ControllerPlugin lazily builds one controller of the service.
	ControllerPlugin interface {
		Name() string
		MustCreateController() Controller
	}

	// Controller attaches its handlers to the route groups it serves.
	Controller interface {
		RegisterOpenApi(group *gin.RouterGroup)
		RegisterInnerApi(group *gin.RouterGroup)
		RegisterDebugApi(group *gin.RouterGroup)
		RegisterOpsApi(group *gin.RouterGroup)
	}
)

var (
	pluginsMu         sync.Mutex
	controllerPlugins = map[string]ControllerPlugin{}
)

// RegisterControllerPlugin registers a controller plugin. It panics on an
// empty or duplicate name.
func RegisterControllerPlugin(p ControllerPlugin) {
	if p.Name() == "" {
		panic(fmt.Errorf("%T: empty controller plugin name", p))
	}
	pluginsMu.Lock()
	defer pluginsMu.Unlock()
	if existed, ok := controllerPlugins[p.Name()]; ok {
		panic(fmt.Errorf("%T and %T got same name: %s", p, existed, p.Name()))
	}
	controllerPlugins[p.Name()] = p
}

// PluginNames returns the registered plugin names, sorted.
func PluginNames() []string {
	pluginsMu.Lock()
	defer pluginsMu.Unlock()
	names := make([]string, 0, len(controllerPlugins))
	for n := range controllerPlugins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MustInitControllers creates every registered controller, ordered by plugin
// name, and attaches it to the non-nil groups.
func MustInitControllers(openApiGroup, innerApiGroup, debugApiGroup, opsApiGroup *gin.RouterGroup) {
	for _, name := range PluginNames() {
		pluginsMu.Lock()
		p := controllerPlugins[name]
		pluginsMu.Unlock()

		controller := p.MustCreateController()
		if openApiGroup != nil {
			controller.RegisterOpenApi(openApiGroup)
		}
		if innerApiGroup != nil {
			controller.RegisterInnerApi(innerApiGroup)
		}
		if debugApiGroup != nil {
			controller.RegisterDebugApi(debugApiGroup)
		}
		if opsApiGroup != nil {
			controller.RegisterOpsApi(opsApiGroup)
		}
		logger.Infof("Register controller: plugin=%s controller=%T", name, controller)
	}
}
