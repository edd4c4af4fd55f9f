package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"sportshub-social/apps/group-service/dao"
	"sportshub-social/apps/group-service/model"
	moderationclient "sportshub-social/apps/moderation-service/client"
	moderationmodel "sportshub-social/apps/moderation-service/model"
	tracecontext "sportshub-social/pkg/context"
	"sportshub-social/pkg/kafka"
	"sportshub-social/pkg/logger"
	"sportshub-social/pkg/snowflake"
	"sportshub-social/pkg/telemetry"
)

// Service 群组服务
type Service struct {
	groupDAO   dao.GroupDAO
	messageDAO dao.MessageDAO
	kafka      *kafka.Producer
	moderation moderationclient.ModerationClient
	idGen      *snowflake.Snowflake
	logger     logger.Logger
}

// NewService 创建群组服务实例
func NewService(groupDAO dao.GroupDAO, messageDAO dao.MessageDAO, kafka *kafka.Producer,
	moderation moderationclient.ModerationClient, idGen *snowflake.Snowflake, log logger.Logger) *Service {
	return &Service{
		groupDAO:   groupDAO,
		messageDAO: messageDAO,
		kafka:      kafka,
		moderation: moderation,
		idGen:      idGen,
		logger:     log,
	}
}

// CreateGroup 创建群组，名称和描述过审后创建者自动成为已批准的管理员
func (s *Service) CreateGroup(ctx context.Context, params *model.CreateGroupParams) (*model.Group, error) {
	ctx, span := telemetry.StartSpan(ctx, "group.service.CreateGroup")
	defer span.End()

	span.SetAttributes(attribute.Int64("group.owner_id", params.OwnerID))

	ctx = tracecontext.WithUserID(ctx, params.OwnerID)

	if params.OwnerID <= 0 {
		span.SetStatus(codes.Error, "invalid owner ID")
		return nil, fmt.Errorf("创建者ID无效")
	}
	name := strings.TrimSpace(params.Name)
	if name == "" || len(name) > model.NameMaxLength {
		span.SetStatus(codes.Error, "invalid name")
		return nil, fmt.Errorf("群组名称为必填且不能超过%d个字符", model.NameMaxLength)
	}
	description := strings.TrimSpace(params.Description)
	if description == "" || len(description) > model.DescriptionMaxLength {
		span.SetStatus(codes.Error, "invalid description")
		return nil, fmt.Errorf("群组描述为必填且不能超过%d个字符", model.DescriptionMaxLength)
	}

	result := s.moderation.Moderate(ctx, name+"\n"+description, moderationmodel.LevelAIAnalysis)
	if !result.Approved {
		span.SetAttributes(attribute.String("moderation.reason", result.Reason))
		span.SetStatus(codes.Error, "content rejected")
		return nil, fmt.Errorf("%s", result.Reason)
	}

	group := &model.Group{
		ID:          s.idGen.MustNextID(),
		Name:        name,
		Description: description,
		AvatarURL:   params.AvatarURL,
		OwnerID:     params.OwnerID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	owner := &model.GroupMember{
		UserID:   params.OwnerID,
		Status:   model.MemberStatusApproved,
		Role:     model.MemberRoleModerator,
		JoinedAt: time.Now(),
	}

	if err := s.groupDAO.CreateGroup(ctx, group, owner); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create group")
		return nil, fmt.Errorf("创建群组失败: %v", err)
	}

	ctx = tracecontext.WithGroupID(ctx, group.ID)
	span.SetAttributes(attribute.Int64("group.id", group.ID))

	s.publishEvent(ctx, &model.GroupEvent{
		Type:       model.EventGroupCreated,
		GroupID:    group.ID,
		UserID:     params.OwnerID,
		OccurredAt: time.Now().Unix(),
	})

	s.logger.Info(ctx, "Group created",
		logger.F("groupID", group.ID),
		logger.F("ownerID", params.OwnerID))

	return group, nil
}

// GetGroup 获取群组
func (s *Service) GetGroup(ctx context.Context, groupID int64) (*model.Group, error) {
	ctx, span := telemetry.StartSpan(ctx, "group.service.GetGroup")
	defer span.End()

	span.SetAttributes(attribute.Int64("group.id", groupID))

	group, err := s.groupDAO.GetGroup(ctx, groupID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "group not found")
		return nil, fmt.Errorf("群组不存在")
	}
	return group, nil
}

// ListGroups 查询群组列表
func (s *Service) ListGroups(ctx context.Context, params *model.ListGroupsParams) ([]*model.Group, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "group.service.ListGroups")
	defer span.End()

	groups, total, err := s.groupDAO.ListGroups(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list groups")
		return nil, 0, fmt.Errorf("查询群组列表失败: %v", err)
	}

	span.SetAttributes(attribute.Int64("group.total", total))
	return groups, total, nil
}

// UpdateGroup 更新群组资料，仅群管理员可操作，修改后的资料重新过审
func (s *Service) UpdateGroup(ctx context.Context, params *model.UpdateGroupParams) (*model.Group, error) {
	ctx, span := telemetry.StartSpan(ctx, "group.service.UpdateGroup")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("group.id", params.GroupID),
		attribute.Int64("group.operator_id", params.OperatorID),
	)

	group, err := s.groupDAO.GetGroup(ctx, params.GroupID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "group not found")
		return nil, fmt.Errorf("群组不存在")
	}

	if err := s.requireModerator(ctx, params.GroupID, params.OperatorID); err != nil {
		span.SetStatus(codes.Error, "permission denied")
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	if name == "" || len(name) > model.NameMaxLength {
		span.SetStatus(codes.Error, "invalid name")
		return nil, fmt.Errorf("群组名称为必填且不能超过%d个字符", model.NameMaxLength)
	}
	description := strings.TrimSpace(params.Description)
	if description == "" || len(description) > model.DescriptionMaxLength {
		span.SetStatus(codes.Error, "invalid description")
		return nil, fmt.Errorf("群组描述为必填且不能超过%d个字符", model.DescriptionMaxLength)
	}

	result := s.moderation.Moderate(ctx, name+"\n"+description, moderationmodel.LevelAIAnalysis)
	if !result.Approved {
		span.SetAttributes(attribute.String("moderation.reason", result.Reason))
		span.SetStatus(codes.Error, "content rejected")
		return nil, fmt.Errorf("%s", result.Reason)
	}

	group.Name = name
	group.Description = description
	if params.AvatarURL != "" {
		group.AvatarURL = params.AvatarURL
	}
	group.UpdatedAt = time.Now()

	if err := s.groupDAO.UpdateGroup(ctx, group); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update group")
		return nil, fmt.Errorf("更新群组失败: %v", err)
	}

	return group, nil
}

// DeleteGroup 解散群组，仅群管理员可操作，同步清理MongoDB中的群消息
func (s *Service) DeleteGroup(ctx context.Context, groupID, operatorID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "group.service.DeleteGroup")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("group.id", groupID),
		attribute.Int64("group.operator_id", operatorID),
	)

	if _, err := s.groupDAO.GetGroup(ctx, groupID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "group not found")
		return fmt.Errorf("群组不存在")
	}

	if err := s.requireModerator(ctx, groupID, operatorID); err != nil {
		span.SetStatus(codes.Error, "permission denied")
		return err
	}

	if err := s.groupDAO.DeleteGroup(ctx, groupID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete group")
		return fmt.Errorf("解散群组失败: %v", err)
	}

	if err := s.messageDAO.DeleteGroupMessages(ctx, groupID); err != nil {
		s.logger.Error(ctx, "Failed to delete group messages",
			logger.F("groupID", groupID),
			logger.F("error", err.Error()))
	}

	s.publishEvent(ctx, &model.GroupEvent{
		Type:       model.EventGroupDeleted,
		GroupID:    groupID,
		UserID:     operatorID,
		OccurredAt: time.Now().Unix(),
	})

	return nil
}

// JoinGroup 申请入群，生成待批准记录
func (s *Service) JoinGroup(ctx context.Context, groupID, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "group.service.JoinGroup")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("group.id", groupID),
		attribute.Int64("group.user_id", userID),
	)

	if _, err := s.groupDAO.GetGroup(ctx, groupID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "group not found")
		return fmt.Errorf("群组不存在")
	}

	existing, err := s.groupDAO.GetMember(ctx, groupID, userID)
	if err == nil {
		if existing.Status == model.MemberStatusApproved {
			return fmt.Errorf("已是群成员")
		}
		return fmt.Errorf("入群申请待批准")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to check membership")
		return fmt.Errorf("查询成员记录失败: %v", err)
	}

	member := &model.GroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Status:   model.MemberStatusPending,
		Role:     model.MemberRoleMember,
		JoinedAt: time.Now(),
	}

	if err := s.groupDAO.AddMember(ctx, member); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to add member")
		return fmt.Errorf("提交入群申请失败: %v", err)
	}

	return nil
}

// ApproveJoin 批准入群申请，仅群管理员可操作
func (s *Service) ApproveJoin(ctx context.Context, memberID, operatorID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "group.service.ApproveJoin")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("group.member_id", memberID),
		attribute.Int64("group.operator_id", operatorID),
	)

	member, err := s.groupDAO.GetMemberByID(ctx, memberID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "member not found")
		return fmt.Errorf("成员记录不存在")
	}

	if member.Status != model.MemberStatusPending {
		return fmt.Errorf("该申请已处理")
	}

	if err := s.requireModerator(ctx, member.GroupID, operatorID); err != nil {
		span.SetStatus(codes.Error, "permission denied")
		return err
	}

	if err := s.groupDAO.ApproveMember(ctx, memberID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to approve member")
		return fmt.Errorf("批准入群失败: %v", err)
	}

	s.publishEvent(ctx, &model.GroupEvent{
		Type:       model.EventGroupMemberJoined,
		GroupID:    member.GroupID,
		UserID:     member.UserID,
		OccurredAt: time.Now().Unix(),
	})

	return nil
}

// RejectJoin 拒绝入群申请，仅群管理员可操作
func (s *Service) RejectJoin(ctx context.Context, memberID, operatorID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "group.service.RejectJoin")
	defer span.End()

	member, err := s.groupDAO.GetMemberByID(ctx, memberID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "member not found")
		return fmt.Errorf("成员记录不存在")
	}

	if member.Status != model.MemberStatusPending {
		return fmt.Errorf("该申请已处理")
	}

	if err := s.requireModerator(ctx, member.GroupID, operatorID); err != nil {
		span.SetStatus(codes.Error, "permission denied")
		return err
	}

	if err := s.groupDAO.RemoveMember(ctx, memberID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to reject member")
		return fmt.Errorf("拒绝入群失败: %v", err)
	}

	return nil
}

// LeaveGroup 退出群组，群管理员不能退出只能解散
func (s *Service) LeaveGroup(ctx context.Context, groupID, userID int64) error {
	ctx, span := telemetry.StartSpan(ctx, "group.service.LeaveGroup")
	defer span.End()

	member, err := s.groupDAO.GetMember(ctx, groupID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "member not found")
		return fmt.Errorf("不是群成员")
	}

	if member.Role == model.MemberRoleModerator {
		return fmt.Errorf("群管理员不能退出群组")
	}

	if err := s.groupDAO.RemoveMember(ctx, member.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to leave group")
		return fmt.Errorf("退出群组失败: %v", err)
	}

	return nil
}

// ListMembers 查询群成员
func (s *Service) ListMembers(ctx context.Context, groupID int64, status string) ([]*model.GroupMember, error) {
	members, err := s.groupDAO.ListMembers(ctx, groupID, status)
	if err != nil {
		return nil, fmt.Errorf("查询群成员失败: %v", err)
	}
	return members, nil
}

// SendMessage 发送群消息
// 写路径顺序：成员校验 -> 限流 -> 审核 -> 落库 -> 事件，与评论共用限流档位
func (s *Service) SendMessage(ctx context.Context, params *model.SendMessageParams) (*model.GroupMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "group.service.SendMessage")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("group.id", params.GroupID),
		attribute.Int64("group.user_id", params.UserID),
	)

	ctx = tracecontext.WithUserID(ctx, params.UserID)
	ctx = tracecontext.WithGroupID(ctx, params.GroupID)

	if len(params.Content) > model.MessageMaxLength {
		span.SetStatus(codes.Error, "content too long")
		return nil, fmt.Errorf("消息不能超过%d个字符", model.MessageMaxLength)
	}

	member, err := s.groupDAO.GetMember(ctx, params.GroupID, params.UserID)
	if err != nil || member.Status != model.MemberStatusApproved {
		span.SetStatus(codes.Error, "not a member")
		return nil, fmt.Errorf("只有群成员可以发言")
	}

	decision := s.moderation.CheckRateLimit(ctx, strconv.FormatInt(params.UserID, 10), model.ActionTypeComment)
	if !decision.Allowed {
		span.SetStatus(codes.Error, "rate limited")
		return nil, fmt.Errorf("%s", decision.Message)
	}

	result := s.moderation.Moderate(ctx, params.Content, moderationmodel.LevelAIAnalysis)
	if !result.Approved {
		span.SetAttributes(attribute.String("moderation.reason", result.Reason))
		span.SetStatus(codes.Error, "content rejected")
		return nil, fmt.Errorf("%s", result.Reason)
	}

	message := &model.GroupMessage{
		MessageID: s.idGen.MustNextID(),
		GroupID:   params.GroupID,
		UserID:    params.UserID,
		UserName:  params.UserName,
		Content:   strings.TrimSpace(params.Content),
		CreatedAt: time.Now(),
	}

	if err := s.messageDAO.SaveMessage(ctx, message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save message")
		return nil, fmt.Errorf("发送消息失败: %v", err)
	}

	span.SetAttributes(attribute.Int64("group.message_id", message.MessageID))

	s.publishEvent(ctx, &model.GroupEvent{
		Type:       model.EventGroupMessageSent,
		GroupID:    params.GroupID,
		UserID:     params.UserID,
		MessageID:  message.MessageID,
		OccurredAt: time.Now().Unix(),
	})

	return message, nil
}

// GetMessages 查询群消息，仅已批准成员可见
func (s *Service) GetMessages(ctx context.Context, params *model.GetMessagesParams) ([]*model.GroupMessage, error) {
	ctx, span := telemetry.StartSpan(ctx, "group.service.GetMessages")
	defer span.End()

	span.SetAttributes(attribute.Int64("group.id", params.GroupID))

	member, err := s.groupDAO.GetMember(ctx, params.GroupID, params.UserID)
	if err != nil || member.Status != model.MemberStatusApproved {
		span.SetStatus(codes.Error, "not a member")
		return nil, fmt.Errorf("只有群成员可以查看消息")
	}

	messages, err := s.messageDAO.GetMessages(ctx, params.GroupID, params.Limit, params.Offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get messages")
		return nil, fmt.Errorf("查询群消息失败: %v", err)
	}

	return messages, nil
}

// requireModerator 校验操作者是群管理员
func (s *Service) requireModerator(ctx context.Context, groupID, operatorID int64) error {
	member, err := s.groupDAO.GetMember(ctx, groupID, operatorID)
	if err != nil || member.Role != model.MemberRoleModerator {
		return fmt.Errorf("只有群管理员可以执行该操作")
	}
	return nil
}

// publishEvent 发送群组变更事件
func (s *Service) publishEvent(ctx context.Context, event *model.GroupEvent) {
	if s.kafka == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal group event", logger.F("error", err.Error()))
		return
	}

	key := []byte(strconv.FormatInt(event.GroupID, 10))
	if err := s.kafka.SendMessage(event.Type, key, payload); err != nil {
		s.logger.Error(ctx, "Failed to publish group event",
			logger.F("type", event.Type),
			logger.F("error", err.Error()))
	}
}
