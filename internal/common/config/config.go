package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Consul   ConsulConfig   `json:"consul"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Auth     AuthConfig     `json:"auth"`
	Purchase PurchaseConfig `json:"purchase"`
	Log      LogConfig      `json:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`      // 服务名称
	Host     string `json:"host"`      // 服务地址
	HTTPPort int    `json:"http_port"` // HTTP端口
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // 数据库驱动
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// RedisConfig Redis配置
type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// ConsulConfig Consul配置
type ConsulConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// AuthConfig 鉴权配置
type AuthConfig struct {
	Enabled     bool     `json:"enabled"`       // 是否开启 JWT 鉴权
	JWTSecret   string   `json:"jwt_secret"`    // HS256 密钥
	Issuer      string   `json:"issuer"`        // iss 校验（为空则不校验）
	Audience    string   `json:"audience"`      // aud 校验（为空则不校验）
	TokenTTLMin int      `json:"token_ttl_min"` // access token 有效期（分钟）
	PublicPaths []string `json:"public_paths"`  // 免鉴权路径前缀
}

// PurchaseConfig 购车交易引擎配置
type PurchaseConfig struct {
	MaxAttempts     int `json:"max_attempts"`      // 冲突重试次数上限
	CommitTimeoutMS int `json:"commit_timeout_ms"` // 单次事务提交超时（毫秒）
	BackoffBaseMS   int `json:"backoff_base_ms"`   // 重试退避基准（毫秒，带抖动）
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

// TokenTTL access token 有效期。
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLMin <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLMin) * time.Minute
}

// CommitTimeout 单次事务作用域的提交超时。
func (p PurchaseConfig) CommitTimeout() time.Duration {
	if p.CommitTimeoutMS <= 0 {
		return time.Second
	}
	return time.Duration(p.CommitTimeoutMS) * time.Millisecond
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		globalConfig = &Config{}
		// 如果配置文件不存在，使用默认配置
		if _, err = os.Stat(configPath); os.IsNotExist(err) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			err = nil
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "marketplace-service",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "cartradelink",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			PoolSize: 10,
		},
		Consul: ConsulConfig{
			Host: "localhost",
			Port: 8500,
		},
		Jaeger: JaegerConfig{
			Endpoint: "localhost:6831",
			Sampler:  1.0,
		},
		Auth: AuthConfig{
			Enabled:     true,
			JWTSecret:   "dev-secret-change-me",
			Issuer:      "cartradelink",
			Audience:    "cartradelink",
			TokenTTLMin: 24 * 60,
			PublicPaths: []string{"/healthz", "/api/v1/auth"},
		},
		Purchase: PurchaseConfig{
			MaxAttempts:     3,
			CommitTimeoutMS: 1000,
			BackoffBaseMS:   20,
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/app.log",
		},
	}
}
