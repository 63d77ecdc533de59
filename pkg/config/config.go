package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Supported notification store drivers.
const (
	StoreDriverMongo = "mongo"
	StoreDriverMySQL = "mysql"
)

// Config is the merchant notification service configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Store        StoreConfig        `mapstructure:"store"`
	Mongo        MongoConfig        `mapstructure:"mongo"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Notification NotificationConfig `mapstructure:"notification"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig selects which document store backs notifications.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type MongoConfig struct {
	URI              string        `mapstructure:"uri"`
	Database         string        `mapstructure:"database"`
	Collection       string        `mapstructure:"collection"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig controls the shared candidate cache in front of the store.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	Key     string        `mapstructure:"key"`
}

// NotificationConfig holds the listing window and mark-read retry budget.
type NotificationConfig struct {
	ListLimit           int `mapstructure:"list_limit"`
	MarkReadMaxAttempts int `mapstructure:"mark_read_max_attempts"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

var (
	globalMu  sync.RWMutex
	globalCfg *Config
)

// SetGlobalConfig stores the process configuration for packages that are
// wired through init-time plugins.
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalCfg = cfg
}

// GetGlobalConfig returns the process configuration, or a defaulted one if
// SetGlobalConfig has not been called.
func GetGlobalConfig() *Config {
	globalMu.RLock()
	cfg := globalCfg
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}
	def := &Config{}
	normalize(def)
	return def
}

// Load 加载配置文件。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("store.driver", StoreDriverMongo)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("redis.enabled", true)
	v.SetDefault("notification.list_limit", 200)
	v.SetDefault("notification.mark_read_max_attempts", 5)

	v.SetEnvPrefix("MERCHANT_PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	normalize(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverMongo, StoreDriverMySQL:
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	return nil
}

// normalize 补全默认值
func normalize(c *Config) {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverMongo
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "merchant_portal"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "notifications"
	}
	if c.Mongo.ConnectTimeout == 0 {
		c.Mongo.ConnectTimeout = 10 * time.Second
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Second
	}
	if c.Cache.Key == "" {
		c.Cache.Key = "merchant-portal:notifications:recent"
	}
	if c.Notification.ListLimit <= 0 {
		c.Notification.ListLimit = 200
	}
	if c.Notification.MarkReadMaxAttempts <= 0 {
		c.Notification.MarkReadMaxAttempts = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}
}

// GetDSN 构建 MySQL DSN。
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
}

// GetRedisAddr 获取 Redis 地址。
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
