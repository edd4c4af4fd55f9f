package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config 应用配置
type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	GroqAPI   GroqAPIConfig   `yaml:"groq_api"`
	Services  ServicesConfig  `yaml:"services"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name      string `yaml:"name"`
	Version   string `yaml:"version"`
	JWTSecret string `yaml:"jwt_secret"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	GRPC GRPCConfig `yaml:"grpc"`
}

// HTTPConfig HTTP服务配置
type HTTPConfig struct {
	Network string `yaml:"network"`
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

// GRPCConfig gRPC服务配置
type GRPCConfig struct {
	Network string `yaml:"network"`
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	MongoDB    MongoDBConfig    `yaml:"mongodb"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
}

// MongoDBConfig MongoDB配置
type MongoDBConfig struct {
	URI    string `yaml:"uri"`
	DBName string `yaml:"db_name"`
}

// PostgreSQLConfig PostgreSQL配置
type PostgreSQLConfig struct {
	DSN    string `yaml:"dsn"`
	DBName string `yaml:"db_name"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Enabled         bool `yaml:"enabled"`
	PostsPerHour    int  `yaml:"posts_per_hour"`
	CommentsPerHour int  `yaml:"comments_per_hour"`
}

// GroqAPIConfig Groq内容审核API配置
type GroqAPIConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// ServicesConfig 内部服务地址配置
type ServicesConfig struct {
	Moderation ModerationServiceConfig `yaml:"moderation"`
}

// ModerationServiceConfig 审核服务连接配置
type ModerationServiceConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GroqAPIKeyPlaceholder 配置模板中的占位符，等同于未配置
const GroqAPIKeyPlaceholder = "YOUR_GROQ_API_KEY_HERE"

// LoadConfig 从环境变量加载配置
func LoadConfig(serviceName string) *Config {

	var defaultHTTPPort, defaultGRPCPort string

	// 根据服务名称设置默认端口
	switch serviceName {
	case "moderation-service":
		defaultHTTPPort = "21001"
		defaultGRPCPort = "22001"
	case "post-service":
		defaultHTTPPort = "21002"
		defaultGRPCPort = "22002"
	case "comment-service":
		defaultHTTPPort = "21003"
		defaultGRPCPort = "22003"
	case "group-service":
		defaultHTTPPort = "21004"
		defaultGRPCPort = "22004"
	default:
		panic(fmt.Sprintf("未知的服务名称: %s，支持的服务名称: moderation-service, post-service, comment-service, group-service", serviceName))
	}

	httpPort := getEnvOrDefault("HTTP_PORT", defaultHTTPPort)
	grpcPort := getEnvOrDefault("GRPC_PORT", defaultGRPCPort)

	return &Config{
		App: AppConfig{
			Name:      serviceName,
			Version:   getEnvOrDefault("APP_VERSION", "1.0.0"),
			JWTSecret: getEnvOrDefault("JWT_SECRET", "sportshub"),
		},
		Server: ServerConfig{
			HTTP: HTTPConfig{
				Network: "tcp",
				Addr:    ":" + httpPort,
				Timeout: "30s",
			},
			GRPC: GRPCConfig{
				Network: "tcp",
				Addr:    ":" + grpcPort,
				Timeout: "30s",
			},
		},
		Database: DatabaseConfig{
			MongoDB: MongoDBConfig{
				URI:    getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
				DBName: getEnvOrDefault("MONGODB_DB", serviceName+"DB"),
			},
			PostgreSQL: PostgreSQLConfig{
				DSN:    getEnvOrDefault("POSTGRESQL_DSN", "host=localhost user=postgres password=postgres dbname="+serviceName+"DB port=5432 sslmode=disable TimeZone=Europe/Bucharest"),
				DBName: getEnvOrDefault("POSTGRESQL_DB", serviceName+"DB"),
			},
		},
		Redis: RedisConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getEnvIntOrDefault("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnvOrDefault("KAFKA_BROKERS", "localhost:9092")},
			GroupID: getEnvOrDefault("KAFKA_GROUP_ID", serviceName+"-group"),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getEnvBoolOrDefault("RATE_LIMIT_ENABLED", true),
			PostsPerHour:    getEnvIntOrDefault("RATE_LIMIT_POSTS_PER_HOUR", 10),
			CommentsPerHour: getEnvIntOrDefault("RATE_LIMIT_COMMENTS_PER_HOUR", 30),
		},
		GroqAPI: GroqAPIConfig{
			Enabled: getEnvBoolOrDefault("GROQ_API_ENABLED", false),
			APIKey:  getEnvOrDefault("GROQ_API_KEY", GroqAPIKeyPlaceholder),
			Model:   getEnvOrDefault("GROQ_API_MODEL", "llama-3.1-8b-instant"),
		},
		Services: ServicesConfig{
			Moderation: ModerationServiceConfig{
				Host: getEnvOrDefault("MODERATION_SERVICE_HOST", "localhost"),
				Port: getEnvIntOrDefault("MODERATION_SERVICE_PORT", 21001),
			},
		},
	}
}

// getEnvOrDefault 获取环境变量或默认值
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault 获取环境变量整数值或默认值
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBoolOrDefault 获取环境变量布尔值或默认值
func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
