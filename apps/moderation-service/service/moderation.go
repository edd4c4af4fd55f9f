package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"sportshub-social/apps/moderation-service/model"
	"sportshub-social/pkg/config"
	"sportshub-social/pkg/logger"
)

// Completer 文本补全客户端，由Groq网关实现
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) string
}

// evasionPattern 匹配常见的刷屏规避字符（空白、星号、下划线、连字符）
var evasionPattern = regexp.MustCompile(`[*_\-\s]+`)

// aiPromptTemplate AI审核提示词模板
const aiPromptTemplate = `Analyze the following text for inappropriate content. Check for:
- Profanity or vulgar language
- Personal attacks or insults
- Hate speech or discrimination
- Threats or violence
- Spam or malicious content

Text to analyze: "%s"

Respond ONLY with one of these formats:
- APPROVED if the content is acceptable
- BLOCKED: [brief reason] if the content violates guidelines

Response:`

// Moderator 内容审核流水线
// 先走本地词库，再按需走AI分析，AI不可用时降级放行
type Moderator struct {
	groq   Completer
	cfg    config.GroqAPIConfig
	logger logger.Logger
}

// NewModerator 创建审核流水线
// groq可以为nil，此时只做本地过滤
func NewModerator(groq Completer, cfg config.GroqAPIConfig, log logger.Logger) *Moderator {
	return &Moderator{
		groq:   groq,
		cfg:    cfg,
		logger: log,
	}
}

// Moderate 审核一段用户文本
func (m *Moderator) Moderate(ctx context.Context, content string, maxLevel model.ModerationLevel) *model.ModerationResult {
	if strings.TrimSpace(content) == "" {
		return &model.ModerationResult{
			Approved: false,
			Reason:   model.ReasonEmptyContent,
			Level:    model.LevelLocalFilter,
		}
	}

	// 第一级：本地词库过滤
	if result := m.checkLocalFilter(content); !result.Approved {
		return result
	}

	// 第二级：AI分析（按需开启）
	if maxLevel >= model.LevelAIAnalysis && m.groq != nil && m.cfg.Enabled {
		if result := m.checkAIModeration(ctx, content); !result.Approved {
			return result
		}
	}

	return &model.ModerationResult{
		Approved:        true,
		Level:           model.LevelLocalFilter,
		ConfidenceScore: model.ConfidenceFinalApprove,
	}
}

// checkLocalFilter 本地词库过滤
// 同时检查小写原文和去除规避字符后的文本，子串命中即拦截（不做词边界匹配）
func (m *Moderator) checkLocalFilter(content string) *model.ModerationResult {
	contentLower := strings.ToLower(content)
	normalized := evasionPattern.ReplaceAllString(contentLower, "")

	checks := []struct {
		words  []string
		reason string
	}{
		{model.BannedWordsRomanian, model.ReasonRomanianMatch},
		{model.BannedWordsEnglish, model.ReasonEnglishMatch},
		{model.BannedWordsOther, model.ReasonOtherMatch},
	}

	for _, check := range checks {
		for _, word := range check.words {
			w := strings.ToLower(word)
			if strings.Contains(contentLower, w) || strings.Contains(normalized, w) {
				return &model.ModerationResult{
					Approved:        false,
					Reason:          check.reason,
					Level:           model.LevelLocalFilter,
					ConfidenceScore: model.ConfidenceLocalReject,
				}
			}
		}
	}

	return &model.ModerationResult{
		Approved:        true,
		Level:           model.LevelLocalFilter,
		ConfidenceScore: model.ConfidenceLocalPass,
	}
}

// checkAIModeration AI分析
// 要求回复以APPROVED或BLOCKED开头，其他格式一律视为通过
func (m *Moderator) checkAIModeration(ctx context.Context, content string) *model.ModerationResult {
	prompt := fmt.Sprintf(aiPromptTemplate, content)

	reply := m.groq.Complete(ctx, prompt, 0)

	if len(reply) >= 7 && strings.EqualFold(reply[:7], "BLOCKED") {
		reason := model.ReasonAIFallback
		if len(reply) > 8 {
			if trimmed := strings.TrimSpace(reply[8:]); trimmed != "" {
				reason = trimmed
			}
		}
		return &model.ModerationResult{
			Approved:        false,
			Reason:          reason,
			Level:           model.LevelAIAnalysis,
			ConfidenceScore: model.ConfidenceAIReject,
		}
	}

	return &model.ModerationResult{
		Approved:        true,
		Level:           model.LevelAIAnalysis,
		ConfidenceScore: model.ConfidenceAIPass,
	}
}
