package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"

	"sportshub-social/apps/group-service/dao"
	"sportshub-social/apps/group-service/handler"
	"sportshub-social/apps/group-service/model"
	"sportshub-social/apps/group-service/service"
	moderationclient "sportshub-social/apps/moderation-service/client"
	"sportshub-social/pkg/server"
	"sportshub-social/pkg/snowflake"
)

func main() {
	// 创建应用程序
	app := server.NewApplication("group-service")

	// 启用HTTP和gRPC服务器
	app.EnableHTTP()
	app.EnableGRPC()

	// 初始化PostgreSQL连接
	postgreSQL := app.GetPostgreSQL()

	// 自动迁移数据库表结构
	if err := postgreSQL.AutoMigrate(
		&model.Group{},
		&model.GroupMember{},
	); err != nil {
		panic("Failed to migrate database: " + err.Error())
	}

	// 群消息存储在MongoDB
	mongoDB := app.EnableMongoDB()

	// 初始化ID生成器
	idGen, err := snowflake.NewSnowflake(4)
	if err != nil {
		panic("Failed to create snowflake generator: " + err.Error())
	}

	// 初始化审核服务客户端
	moderationCfg := app.GetConfig().Services.Moderation
	moderationURL := fmt.Sprintf("http://%s:%d", moderationCfg.Host, moderationCfg.Port)
	moderation := moderationclient.NewHTTPClient(moderationURL, app.GetLogger())

	// 初始化DAO层
	groupDAO := dao.NewGroupDAO(postgreSQL)
	messageDAO := dao.NewMessageDAO(mongoDB.GetDatabase())

	// 初始化Service层
	svc := service.NewService(groupDAO, messageDAO, app.GetKafkaProducer(), moderation, idGen, app.GetLogger())

	// 初始化Handler
	httpHandler := handler.NewHTTPHandler(svc, app.GetLogger())

	// 注册HTTP路由
	app.RegisterHTTPRoutes(func(engine *gin.Engine) {
		httpHandler.RegisterRoutes(engine)
	})

	// 注册gRPC服务（健康检查在服务器包装层注册）
	app.RegisterGRPCService(func(grpcSrv *grpc.Server) {})

	// 运行应用程序
	if err := app.Run(); err != nil {
		panic(err)
	}
}
