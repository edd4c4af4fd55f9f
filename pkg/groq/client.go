package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sportshub-social/pkg/config"
	"sportshub-social/pkg/logger"
)

// DefaultAPIURL Groq OpenAI兼容接口地址
const DefaultAPIURL = "https://api.groq.com/openai/v1/chat/completions"

// DefaultMaxTokens 默认回复token上限
const DefaultMaxTokens = 150

// approvedReply 审核通过的固定回复，降级时也返回该值
const approvedReply = "APPROVED"

// systemPrompt 固定的系统提示词
const systemPrompt = "You are a content moderation assistant. Be concise and direct."

// Client Groq文本补全客户端
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	model      string
	logger     logger.Logger
}

// chatRequest 请求体
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

// chatMessage 对话消息
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse 响应体（只取需要的字段）
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient 创建Groq客户端
func NewClient(cfg config.GroqAPIConfig, log logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiURL:     DefaultAPIURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		logger:     log,
	}
}

// NewClientWithURL 创建指向自定义地址的Groq客户端，测试用
func NewClientWithURL(cfg config.GroqAPIConfig, apiURL string, log logger.Logger) *Client {
	c := NewClient(cfg, log)
	c.apiURL = apiURL
	return c
}

// Complete 发送审核提示词并返回模型回复
// API key未配置或调用失败时一律降级为"APPROVED"，审核不能阻塞用户操作
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) string {
	if c.apiKey == "" || c.apiKey == config.GroqAPIKeyPlaceholder {
		c.logger.Warn(ctx, "Groq API key not configured, skipping AI moderation")
		return approvedReply
	}

	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	reply, err := c.complete(ctx, prompt, maxTokens)
	if err != nil {
		c.logger.Error(ctx, "Groq API call failed, degrading to approved",
			logger.F("error", err.Error()))
		return approvedReply
	}

	return reply
}

// complete 执行一次补全调用
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	reply := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if reply == "" {
		return approvedReply, nil
	}

	return reply, nil
}
