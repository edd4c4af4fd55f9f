package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"sportshub-social/apps/moderation-service/dao"
	"sportshub-social/apps/moderation-service/handler"
	"sportshub-social/apps/moderation-service/service"
	"sportshub-social/pkg/config"
	"sportshub-social/pkg/groq"
	"sportshub-social/pkg/kafka"
	"sportshub-social/pkg/logger"
	"sportshub-social/pkg/middleware"
	"sportshub-social/pkg/redis"
	"sportshub-social/pkg/telemetry"
)

func main() {
	// 初始化配置
	cfg, err := initConfig()
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// 初始化日志
	logr := initLogger(cfg)
	logr.Info(context.Background(), "Starting moderation service")

	// 初始化链路追踪
	if err := telemetry.InitGlobal(telemetry.DefaultConfig("moderation-service")); err != nil {
		logr.Error(context.Background(), "Failed to initialize telemetry", logger.F("error", err.Error()))
	}

	// 初始化限流计数存储
	// Redis不可用时退化为进程内计数
	counterDAO := initCounterDAO(cfg, logr)

	// 初始化Groq客户端
	groqCfg := initGroqConfig(cfg)
	groqClient := groq.NewClient(groqCfg, logr)

	// 初始化Kafka生产者
	// Kafka不可用时跳过事件发送，不阻塞启动
	producer := initKafkaProducer(cfg, logr)

	// 初始化服务层
	rateLimitCfg := initRateLimitConfig(cfg)
	moderator := service.NewModerator(groqClient, groqCfg, logr)
	limiter := service.NewRateLimiter(counterDAO, rateLimitCfg, logr)
	svc := service.NewService(moderator, limiter, producer, logr)

	// 初始化HTTP处理器
	httpHandler := handler.NewHTTPHandler(svc, logr)

	// 初始化Gin引擎
	gin.SetMode(getGinMode(cfg))
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Recovery(logr))
	router.Use(requestLoggerMiddleware(logr))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "moderation-service"})
	})

	// 注册路由
	httpHandler.RegisterRoutes(router)

	// 启动HTTP服务器
	httpPort := cfg.GetInt("moderation.server.port")
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", httpPort),
		Handler: router,
	}

	// 启动gRPC服务器（健康检查）
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("moderation-service", healthpb.HealthCheckResponse_SERVING)

	grpcPort := httpPort + 1000
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
	if err != nil {
		logr.Fatal(context.Background(), "Failed to listen for gRPC", logger.F("error", err.Error()))
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal(context.Background(), "Failed to start HTTP server", logger.F("error", err.Error()))
		}
	}()

	go func() {
		if err := grpcServer.Serve(grpcListener); err != nil {
			logr.Fatal(context.Background(), "Failed to start gRPC server", logger.F("error", err.Error()))
		}
	}()

	logr.Info(context.Background(), "Moderation service started",
		logger.F("http_port", httpPort),
		logger.F("grpc_port", grpcPort),
		logger.F("ai_enabled", groqCfg.Enabled),
		logger.F("rate_limit_enabled", rateLimitCfg.Enabled))

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info(context.Background(), "Shutting down moderation service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logr.Error(context.Background(), "HTTP server forced to shutdown", logger.F("error", err.Error()))
	}
	grpcServer.GracefulStop()

	if producer != nil {
		if err := producer.Close(); err != nil {
			logr.Error(context.Background(), "Failed to close Kafka producer", logger.F("error", err.Error()))
		}
	}

	if err := telemetry.ShutdownGlobal(ctx); err != nil {
		logr.Error(context.Background(), "Failed to shutdown telemetry", logger.F("error", err.Error()))
	}

	logr.Info(context.Background(), "Moderation service stopped")
}

// initConfig 初始化配置
func initConfig() (*viper.Viper, error) {
	cfg := viper.New()

	cfg.SetConfigName("config")
	cfg.SetConfigType("yaml")
	cfg.AddConfigPath(".")
	cfg.AddConfigPath("..")
	cfg.AddConfigPath("../..")
	cfg.AddConfigPath("../../..")

	cfg.AutomaticEnv()

	// 设置默认值
	cfg.SetDefault("moderation.server.port", 21001)
	cfg.SetDefault("moderation.server.mode", "debug")
	cfg.SetDefault("moderation.rate_limit.enabled", true)
	cfg.SetDefault("moderation.rate_limit.posts_per_hour", 10)
	cfg.SetDefault("moderation.rate_limit.comments_per_hour", 30)
	cfg.SetDefault("moderation.groq.enabled", true)
	cfg.SetDefault("moderation.groq.api_key", config.GroqAPIKeyPlaceholder)
	cfg.SetDefault("moderation.groq.model", "llama-3.1-8b-instant")
	cfg.SetDefault("redis.addr", "localhost:6379")
	cfg.SetDefault("kafka.brokers", []string{"localhost:9092"})
	cfg.SetDefault("logger.level", "info")

	if err := cfg.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using default values")
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	}

	return cfg, nil
}

// initLogger 初始化日志
func initLogger(cfg *viper.Viper) logger.Logger {
	logLevel := cfg.GetString("logger.level")
	if logLevel == "" {
		logLevel = "info"
	}

	logr, err := logger.NewLogger(logLevel)
	if err != nil {
		return logger.GetLogger()
	}

	return logr
}

// initCounterDAO 初始化限流计数存储
func initCounterDAO(cfg *viper.Viper, logr logger.Logger) dao.RateCounterDAO {
	addr := cfg.GetString("redis.addr")
	rdb := redis.NewRedisClient(addr)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx); err != nil {
		logr.Error(context.Background(), "Redis unreachable, falling back to in-memory rate counters",
			logger.F("addr", addr),
			logger.F("error", err.Error()))
		return dao.NewMemoryCounterDAO()
	}

	logr.Info(context.Background(), "Redis connected successfully", logger.F("addr", addr))
	return dao.NewRedisCounterDAO(rdb)
}

// initGroqConfig 初始化Groq配置
func initGroqConfig(cfg *viper.Viper) config.GroqAPIConfig {
	apiKey := cfg.GetString("GROQ_API_KEY")
	if apiKey == "" {
		apiKey = cfg.GetString("moderation.groq.api_key")
	}

	return config.GroqAPIConfig{
		Enabled: cfg.GetBool("moderation.groq.enabled"),
		APIKey:  apiKey,
		Model:   cfg.GetString("moderation.groq.model"),
	}
}

// initRateLimitConfig 初始化限流配置
func initRateLimitConfig(cfg *viper.Viper) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:         cfg.GetBool("moderation.rate_limit.enabled"),
		PostsPerHour:    cfg.GetInt("moderation.rate_limit.posts_per_hour"),
		CommentsPerHour: cfg.GetInt("moderation.rate_limit.comments_per_hour"),
	}
}

// initKafkaProducer 初始化Kafka生产者
func initKafkaProducer(cfg *viper.Viper, logr logger.Logger) *kafka.Producer {
	brokers := cfg.GetStringSlice("kafka.brokers")
	producer, err := kafka.InitProducer(brokers)
	if err != nil {
		logr.Error(context.Background(), "Kafka unreachable, blocked events will not be published",
			logger.F("error", err.Error()))
		return nil
	}
	return producer
}

// getGinMode 获取Gin模式
func getGinMode(cfg *viper.Viper) string {
	mode := cfg.GetString("moderation.server.mode")
	switch mode {
	case "release", "prod", "production":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// requestLoggerMiddleware 请求日志中间件
func requestLoggerMiddleware(logr logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)

		logr.Info(c.Request.Context(), "HTTP request completed",
			logger.F("method", c.Request.Method),
			logger.F("path", c.Request.URL.Path),
			logger.F("status_code", c.Writer.Status()),
			logger.F("duration_ms", duration.Milliseconds()),
			logger.F("client_ip", c.ClientIP()))
	}
}
