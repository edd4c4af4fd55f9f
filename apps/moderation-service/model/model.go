package model

// ModerationLevel 产生审核结论的流水线阶段
type ModerationLevel int

// String .
func (l ModerationLevel) String() string {
	switch l {
	case LevelLocalFilter:
		return "local_filter"
	case LevelAIAnalysis:
		return "ai_analysis"
	case LevelAdminReview:
		return "admin_review"
	default:
		return "unknown"
	}
}

// ModerationResult 审核结果，每次调用新建，不落库
type ModerationResult struct {
	Approved        bool            `json:"approved"`
	Reason          string          `json:"reason,omitempty"` // 仅在拒绝时非空
	Level           ModerationLevel `json:"level"`
	ConfidenceScore float64         `json:"confidence_score"`
}

// ModerateParams 审核请求参数
type ModerateParams struct {
	Content  string          `json:"content"`
	MaxLevel ModerationLevel `json:"max_level"`
}

// RateLimitParams 限流请求参数
type RateLimitParams struct {
	UserID     string `json:"user_id"`
	ActionType string `json:"action_type"`
}

// RateLimitDecision 限流判定结果
type RateLimitDecision struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message,omitempty"`
}

// RemainingQuota 剩余配额
type RemainingQuota struct {
	Remaining int `json:"remaining"`
	Limit     int `json:"limit"`
}

// BlockedEvent 内容被拦截事件，发往Kafka供运营侧统计
type BlockedEvent struct {
	UserID     string          `json:"user_id,omitempty"`
	ActionType string          `json:"action_type,omitempty"`
	Reason     string          `json:"reason"`
	Level      ModerationLevel `json:"level"`
	Confidence float64         `json:"confidence"`
	OccurredAt int64           `json:"occurred_at"`
}
