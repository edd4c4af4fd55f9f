package service

import (
	"context"
	"testing"

	"sportshub-social/apps/moderation-service/model"
	"sportshub-social/pkg/config"
	"sportshub-social/pkg/logger"
)

// stubCompleter 固定回复的补全客户端
type stubCompleter struct {
	reply  string
	called int
}

func (s *stubCompleter) Complete(ctx context.Context, prompt string, maxTokens int) string {
	s.called++
	return s.reply
}

func newTestModerator(groq Completer, aiEnabled bool) *Moderator {
	return NewModerator(groq, config.GroqAPIConfig{Enabled: aiEnabled}, logger.GetLogger())
}

// TestModerateEmptyContent 空内容直接拒绝
func TestModerateEmptyContent(t *testing.T) {
	m := newTestModerator(nil, false)

	for _, content := range []string{"", "   ", "\t\n  "} {
		result := m.Moderate(context.Background(), content, model.LevelAIAnalysis)
		if result.Approved {
			t.Errorf("content %q: expected rejection", content)
		}
		if result.Reason != model.ReasonEmptyContent {
			t.Errorf("content %q: unexpected reason %q", content, result.Reason)
		}
		if result.Level != model.LevelLocalFilter {
			t.Errorf("content %q: unexpected level %v", content, result.Level)
		}
	}
}

// TestModerateLocalFilter 本地词库过滤
func TestModerateLocalFilter(t *testing.T) {
	m := newTestModerator(nil, false)

	tests := []struct {
		name     string
		content  string
		approved bool
		reason   string
	}{
		{"罗马尼亚语违禁词", "Ești un prost", false, model.ReasonRomanianMatch},
		{"英语违禁词", "you are such a bitch", false, model.ReasonEnglishMatch},
		{"其他语种违禁词", "quelle merde alors", false, model.ReasonOtherMatch},
		{"星号规避", "f*u*c*k you", false, model.ReasonRomanianMatch},
		{"混合分隔符规避", "f-u_c k off", false, model.ReasonRomanianMatch},
		{"大小写混合", "PrOsT", false, model.ReasonRomanianMatch},
		{"子串命中", "idiotule", false, model.ReasonRomanianMatch},
		{"正常内容", "Meciul de aseară a fost excelent!", true, ""},
		{"正常英文内容", "Great match last night, see you at training.", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := m.Moderate(context.Background(), tt.content, model.LevelAIAnalysis)
			if result.Approved != tt.approved {
				t.Fatalf("content %q: approved = %v, want %v", tt.content, result.Approved, tt.approved)
			}
			if !tt.approved {
				if result.Reason != tt.reason {
					t.Errorf("content %q: reason = %q, want %q", tt.content, result.Reason, tt.reason)
				}
				if result.Level != model.LevelLocalFilter {
					t.Errorf("content %q: level = %v, want local_filter", tt.content, result.Level)
				}
				if result.ConfidenceScore != model.ConfidenceLocalReject {
					t.Errorf("content %q: confidence = %v, want %v", tt.content, result.ConfidenceScore, model.ConfidenceLocalReject)
				}
			} else {
				if result.Level != model.LevelLocalFilter {
					t.Errorf("content %q: level = %v, want local_filter", tt.content, result.Level)
				}
				if result.ConfidenceScore != model.ConfidenceFinalApprove {
					t.Errorf("content %q: confidence = %v, want %v", tt.content, result.ConfidenceScore, model.ConfidenceFinalApprove)
				}
				if result.Reason != "" {
					t.Errorf("content %q: unexpected reason %q", tt.content, result.Reason)
				}
			}
		})
	}
}

// TestModerateAIBlocked AI判定违规
func TestModerateAIBlocked(t *testing.T) {
	stub := &stubCompleter{reply: "BLOCKED: Insultă indirectă"}
	m := newTestModerator(stub, true)

	result := m.Moderate(context.Background(), "un mesaj aparent normal", model.LevelAIAnalysis)
	if result.Approved {
		t.Fatal("expected rejection")
	}
	if result.Reason != "Insultă indirectă" {
		t.Errorf("reason = %q, want %q", result.Reason, "Insultă indirectă")
	}
	if result.Level != model.LevelAIAnalysis {
		t.Errorf("level = %v, want ai_analysis", result.Level)
	}
	if result.ConfidenceScore != model.ConfidenceAIReject {
		t.Errorf("confidence = %v, want %v", result.ConfidenceScore, model.ConfidenceAIReject)
	}
	if stub.called != 1 {
		t.Errorf("completer called %d times, want 1", stub.called)
	}
}

// TestModerateAIBlockedWithoutReason AI拒绝但未给出理由时使用兜底文案
func TestModerateAIBlockedWithoutReason(t *testing.T) {
	for _, reply := range []string{"BLOCKED", "BLOCKED: ", "blocked:   "} {
		stub := &stubCompleter{reply: reply}
		m := newTestModerator(stub, true)

		result := m.Moderate(context.Background(), "un mesaj aparent normal", model.LevelAIAnalysis)
		if result.Approved {
			t.Fatalf("reply %q: expected rejection", reply)
		}
		if result.Reason != model.ReasonAIFallback {
			t.Errorf("reply %q: reason = %q, want fallback", reply, result.Reason)
		}
	}
}

// TestModerateAIApproved AI通过后整体通过
func TestModerateAIApproved(t *testing.T) {
	stub := &stubCompleter{reply: "APPROVED"}
	m := newTestModerator(stub, true)

	result := m.Moderate(context.Background(), "un mesaj normal", model.LevelAIAnalysis)
	if !result.Approved {
		t.Fatalf("expected approval, got rejection: %s", result.Reason)
	}
	if result.Level != model.LevelLocalFilter {
		t.Errorf("level = %v, want local_filter", result.Level)
	}
	if result.ConfidenceScore != model.ConfidenceFinalApprove {
		t.Errorf("confidence = %v, want %v", result.ConfidenceScore, model.ConfidenceFinalApprove)
	}
	if stub.called != 1 {
		t.Errorf("completer called %d times, want 1", stub.called)
	}
}

// TestModerateMaxLevelSkipsAI maxLevel限制在本地过滤时不调用AI
func TestModerateMaxLevelSkipsAI(t *testing.T) {
	stub := &stubCompleter{reply: "BLOCKED: nu contează"}
	m := newTestModerator(stub, true)

	result := m.Moderate(context.Background(), "un mesaj normal", model.LevelLocalFilter)
	if !result.Approved {
		t.Fatalf("expected approval, got rejection: %s", result.Reason)
	}
	if stub.called != 0 {
		t.Errorf("completer called %d times, want 0", stub.called)
	}
}

// TestModerateLocalHitSkipsAI 本地命中后不再调用AI
func TestModerateLocalHitSkipsAI(t *testing.T) {
	stub := &stubCompleter{reply: "APPROVED"}
	m := newTestModerator(stub, true)

	result := m.Moderate(context.Background(), "Ești un prost", model.LevelAIAnalysis)
	if result.Approved {
		t.Fatal("expected rejection")
	}
	if stub.called != 0 {
		t.Errorf("completer called %d times, want 0", stub.called)
	}
}

// TestModerateAIDisabled AI关闭时只做本地过滤
func TestModerateAIDisabled(t *testing.T) {
	stub := &stubCompleter{reply: "BLOCKED: nu contează"}
	m := newTestModerator(stub, false)

	result := m.Moderate(context.Background(), "un mesaj normal", model.LevelAIAnalysis)
	if !result.Approved {
		t.Fatalf("expected approval, got rejection: %s", result.Reason)
	}
	if stub.called != 0 {
		t.Errorf("completer called %d times, want 0", stub.called)
	}
}

// TestModerateIdempotent 同一内容重复审核结果一致
func TestModerateIdempotent(t *testing.T) {
	m := newTestModerator(nil, false)

	first := m.Moderate(context.Background(), "Ești un prost", model.LevelAIAnalysis)
	second := m.Moderate(context.Background(), "Ești un prost", model.LevelAIAnalysis)

	if *first != *second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}
