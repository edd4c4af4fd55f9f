package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"sportshub-social/apps/moderation-service/model"
	"sportshub-social/pkg/logger"
)

// ModerationClient 审核服务客户端接口
// 写路径服务通过它调用审核服务，便于测试时替换
type ModerationClient interface {
	Moderate(ctx context.Context, content string, maxLevel model.ModerationLevel) *model.ModerationResult
	CheckRateLimit(ctx context.Context, userID, actionType string) *model.RateLimitDecision
	GetRemainingQuota(ctx context.Context, userID, actionType string) *model.RemainingQuota
}

// HTTPClient 基于HTTP的审核服务客户端
// 审核服务不可达时放行，避免审核故障阻塞整个写路径
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewHTTPClient 创建审核服务客户端
func NewHTTPClient(baseURL string, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Moderate 审核内容，失败时放行
func (c *HTTPClient) Moderate(ctx context.Context, content string, maxLevel model.ModerationLevel) *model.ModerationResult {
	req := &model.ModerateParams{Content: content, MaxLevel: maxLevel}
	var result model.ModerationResult
	if err := c.post(ctx, "/api/v1/moderation/check", req, &result); err != nil {
		c.logger.Error(ctx, "Moderation service unreachable, approving content",
			logger.F("error", err.Error()))
		return &model.ModerationResult{
			Approved:        true,
			Level:           model.LevelLocalFilter,
			ConfidenceScore: model.ConfidenceFinalApprove,
		}
	}
	return &result
}

// CheckRateLimit 检查并消耗一次配额，失败时放行
func (c *HTTPClient) CheckRateLimit(ctx context.Context, userID, actionType string) *model.RateLimitDecision {
	req := &model.RateLimitParams{UserID: userID, ActionType: actionType}
	var decision model.RateLimitDecision
	if err := c.post(ctx, "/api/v1/moderation/ratelimit/check", req, &decision); err != nil {
		c.logger.Error(ctx, "Moderation service unreachable, allowing action",
			logger.F("error", err.Error()))
		return &model.RateLimitDecision{Allowed: true}
	}
	return &decision
}

// GetRemainingQuota 查询剩余配额
func (c *HTTPClient) GetRemainingQuota(ctx context.Context, userID, actionType string) *model.RemainingQuota {
	req := &model.RateLimitParams{UserID: userID, ActionType: actionType}
	var quota model.RemainingQuota
	if err := c.post(ctx, "/api/v1/moderation/ratelimit/remaining", req, &quota); err != nil {
		c.logger.Error(ctx, "Moderation service unreachable, returning zero quota",
			logger.F("error", err.Error()))
		return &model.RemainingQuota{}
	}
	return &quota
}

func (c *HTTPClient) post(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	// 429是限流拒绝的正常应答，响应体里带着拒绝信息
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
