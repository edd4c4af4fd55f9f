package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sportshub-social/apps/moderation-service/model"
	"sportshub-social/apps/moderation-service/service"
	"sportshub-social/pkg/httpx"
	"sportshub-social/pkg/logger"
)

// HTTPHandler HTTP处理器
type HTTPHandler struct {
	svc    *service.Service
	logger logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(svc *service.Service, logger logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger,
	}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api/v1/moderation")
	{
		// 内容审核
		api.POST("/check", h.CheckContent)

		// 限流
		api.POST("/ratelimit/check", h.CheckRateLimit)
		api.POST("/ratelimit/remaining", h.GetRemainingQuota)
	}
}

// CheckContent 审核内容
func (h *HTTPHandler) CheckContent(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.ModerateParams
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid moderation request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &model.ModerationResult{
			Approved:        false,
			Reason:          "Invalid request format",
			Level:           model.LevelLocalFilter,
			ConfidenceScore: model.ConfidenceLocalReject,
		}, err)
		return
	}

	result := h.svc.Moderate(ctx, &req)
	httpx.WriteObject(c, result, nil)
}

// CheckRateLimit 检查并消耗一次配额
func (h *HTTPHandler) CheckRateLimit(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.RateLimitParams
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid rate limit request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &model.RateLimitDecision{
			Allowed: false,
			Message: "Invalid request format",
		}, err)
		return
	}

	decision := h.svc.CheckRateLimit(ctx, &req)
	if !decision.Allowed {
		httpx.WriteStatus(c, http.StatusTooManyRequests, decision)
		return
	}
	httpx.WriteObject(c, decision, nil)
}

// GetRemainingQuota 查询剩余配额
func (h *HTTPHandler) GetRemainingQuota(c *gin.Context) {
	ctx := c.Request.Context()
	var req model.RateLimitParams
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid remaining quota request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &model.RemainingQuota{}, err)
		return
	}

	quota := h.svc.GetRemainingQuota(ctx, &req)
	httpx.WriteObject(c, quota, nil)
}
