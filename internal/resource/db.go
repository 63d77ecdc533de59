package resource

import (
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"merchant-notification-service/pkg/assert"
)

var (
	mu         sync.RWMutex
	mainDB     *gorm.DB
	mongoColl  *mongo.Collection
	mainDBOnce sync.Once
	mongoOnce  sync.Once
)

// SetMainDB sets the global SQL DB instance for this service.
// It should be called once during startup in app.Run.
func SetMainDB(db *gorm.DB) {
	assert.NotNil(db, "SetMainDB called with nil db")
	mainDBOnce.Do(func() {
		mu.Lock()
		mainDB = db
		mu.Unlock()
	})
}

// MainDB returns the SQL DB instance. It panics if not initialised.
func MainDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	if mainDB == nil {
		panic("MainDB not initialized; call resource.SetMainDB in app.Run first")
	}
	return mainDB
}

// SetNotificationCollection sets the Mongo collection holding notifications.
func SetNotificationCollection(c *mongo.Collection) {
	assert.NotNil(c, "SetNotificationCollection called with nil collection")
	mongoOnce.Do(func() {
		mu.Lock()
		mongoColl = c
		mu.Unlock()
	})
}

// NotificationCollection returns the Mongo notification collection. It panics
// if not initialised.
func NotificationCollection() *mongo.Collection {
	mu.RLock()
	defer mu.RUnlock()
	if mongoColl == nil {
		panic("NotificationCollection not initialized; call resource.SetNotificationCollection in app.Run first")
	}
	return mongoColl
}
