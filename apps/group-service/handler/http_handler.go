package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"sportshub-social/apps/group-service/model"
	"sportshub-social/apps/group-service/service"
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
	api := engine.Group("/api/v1/group")
	{
		// 群组管理
		api.POST("/create", h.CreateGroup)
		api.POST("/update", h.UpdateGroup)
		api.POST("/delete", h.DeleteGroup)
		api.POST("/get", h.GetGroup)
		api.POST("/list", h.ListGroups)

		// 成员管理
		api.POST("/join", h.JoinGroup)
		api.POST("/approve_join", h.ApproveJoin)
		api.POST("/reject_join", h.RejectJoin)
		api.POST("/leave", h.LeaveGroup)
		api.POST("/members", h.ListMembers)

		// 群消息
		api.POST("/message/send", h.SendMessage)
		api.POST("/message/list", h.GetMessages)
	}
}

// GroupDTO 群组响应对象
type GroupDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	OwnerID     int64  `json:"owner_id"`
	MemberCount int32  `json:"member_count"`
	CreatedAt   string `json:"created_at"`
}

// MemberDTO 群成员响应对象
type MemberDTO struct {
	ID       int64  `json:"id"`
	GroupID  int64  `json:"group_id"`
	UserID   int64  `json:"user_id"`
	Status   string `json:"status"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// MessageDTO 群消息响应对象
type MessageDTO struct {
	MessageID int64  `json:"message_id"`
	GroupID   int64  `json:"group_id"`
	UserID    int64  `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// GroupResponse 单群组响应
type GroupResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Group   *GroupDTO `json:"group,omitempty"`
}

// ListGroupsResponse 群组列表响应
type ListGroupsResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Groups  []*GroupDTO `json:"groups"`
	Total   int64       `json:"total"`
	Page    int32       `json:"page"`
}

// MembersResponse 成员列表响应
type MembersResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Members []*MemberDTO `json:"members"`
}

// MessageResponse 单消息响应
type MessageResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    *MessageDTO `json:"data,omitempty"`
}

// MessagesResponse 消息列表响应
type MessagesResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Messages []*MessageDTO `json:"messages"`
}

// ActionResponse 操作响应
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CreateGroupRequest 创建群组请求
type CreateGroupRequest struct {
	OwnerID     int64  `json:"owner_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	AvatarURL   string `json:"avatar_url"`
}

// UpdateGroupRequest 更新群组请求
type UpdateGroupRequest struct {
	GroupID     int64  `json:"group_id" binding:"required"`
	OperatorID  int64  `json:"operator_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	AvatarURL   string `json:"avatar_url"`
}

// GroupOperationRequest 群组操作请求
type GroupOperationRequest struct {
	GroupID int64 `json:"group_id" binding:"required"`
	UserID  int64 `json:"user_id" binding:"required"`
}

// MemberOperationRequest 入群申请处理请求
type MemberOperationRequest struct {
	MemberID   int64 `json:"member_id" binding:"required"`
	OperatorID int64 `json:"operator_id" binding:"required"`
}

// GetGroupRequest 获取群组请求
type GetGroupRequest struct {
	GroupID int64 `json:"group_id" binding:"required"`
}

// ListGroupsRequest 群组列表请求
type ListGroupsRequest struct {
	UserID   int64 `json:"user_id"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

// ListMembersRequest 成员列表请求
type ListMembersRequest struct {
	GroupID int64  `json:"group_id" binding:"required"`
	Status  string `json:"status"`
}

// SendMessageRequest 发送群消息请求
type SendMessageRequest struct {
	GroupID  int64  `json:"group_id" binding:"required"`
	UserID   int64  `json:"user_id" binding:"required"`
	UserName string `json:"user_name"`
	Content  string `json:"content"`
}

// GetMessagesRequest 群消息列表请求
type GetMessagesRequest struct {
	GroupID int64 `json:"group_id" binding:"required"`
	UserID  int64 `json:"user_id" binding:"required"`
	Limit   int32 `json:"limit"`
	Offset  int32 `json:"offset"`
}

// CreateGroup 创建群组
func (h *HTTPHandler) CreateGroup(c *gin.Context) {
	ctx := c.Request.Context()
	var req CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid create group request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &GroupResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	params := &model.CreateGroupParams{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
	}

	group, err := h.svc.CreateGroup(ctx, params)
	if err != nil {
		h.logger.Error(ctx, "Failed to create group",
			logger.F("ownerID", req.OwnerID),
			logger.F("error", err.Error()))
		httpx.WriteObject(c, &GroupResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &GroupResponse{Success: true, Group: groupToDTO(group)}, nil)
}

// UpdateGroup 更新群组
func (h *HTTPHandler) UpdateGroup(c *gin.Context) {
	ctx := c.Request.Context()
	var req UpdateGroupRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid update group request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &GroupResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	params := &model.UpdateGroupParams{
		GroupID:     req.GroupID,
		OperatorID:  req.OperatorID,
		Name:        req.Name,
		Description: req.Description,
		AvatarURL:   req.AvatarURL,
	}

	group, err := h.svc.UpdateGroup(ctx, params)
	if err != nil {
		httpx.WriteObject(c, &GroupResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &GroupResponse{Success: true, Group: groupToDTO(group)}, nil)
}

// DeleteGroup 解散群组
func (h *HTTPHandler) DeleteGroup(c *gin.Context) {
	ctx := c.Request.Context()
	var req GroupOperationRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid delete group request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.DeleteGroup(ctx, req.GroupID, req.UserID); err != nil {
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &ActionResponse{Success: true}, nil)
}

// GetGroup 获取群组
func (h *HTTPHandler) GetGroup(c *gin.Context) {
	ctx := c.Request.Context()
	var req GetGroupRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid get group request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &GroupResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	group, err := h.svc.GetGroup(ctx, req.GroupID)
	if err != nil {
		httpx.WriteObject(c, &GroupResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &GroupResponse{Success: true, Group: groupToDTO(group)}, nil)
}

// ListGroups 查询群组列表
func (h *HTTPHandler) ListGroups(c *gin.Context) {
	ctx := c.Request.Context()
	var req ListGroupsRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid list groups request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ListGroupsResponse{Success: false, Message: "Invalid request format", Groups: []*GroupDTO{}}, err)
		return
	}

	params := &model.ListGroupsParams{
		UserID:   req.UserID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	groups, total, err := h.svc.ListGroups(ctx, params)
	if err != nil {
		httpx.WriteObject(c, &ListGroupsResponse{Success: false, Message: err.Error(), Groups: []*GroupDTO{}}, err)
		return
	}

	dtos := make([]*GroupDTO, 0, len(groups))
	for _, group := range groups {
		dtos = append(dtos, groupToDTO(group))
	}

	httpx.WriteObject(c, &ListGroupsResponse{Success: true, Groups: dtos, Total: total, Page: req.Page}, nil)
}

// JoinGroup 申请入群
func (h *HTTPHandler) JoinGroup(c *gin.Context) {
	ctx := c.Request.Context()
	var req GroupOperationRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid join group request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.JoinGroup(ctx, req.GroupID, req.UserID); err != nil {
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &ActionResponse{Success: true}, nil)
}

// ApproveJoin 批准入群申请
func (h *HTTPHandler) ApproveJoin(c *gin.Context) {
	ctx := c.Request.Context()
	var req MemberOperationRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid approve join request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.ApproveJoin(ctx, req.MemberID, req.OperatorID); err != nil {
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &ActionResponse{Success: true}, nil)
}

// RejectJoin 拒绝入群申请
func (h *HTTPHandler) RejectJoin(c *gin.Context) {
	ctx := c.Request.Context()
	var req MemberOperationRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid reject join request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.RejectJoin(ctx, req.MemberID, req.OperatorID); err != nil {
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &ActionResponse{Success: true}, nil)
}

// LeaveGroup 退出群组
func (h *HTTPHandler) LeaveGroup(c *gin.Context) {
	ctx := c.Request.Context()
	var req GroupOperationRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid leave group request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.LeaveGroup(ctx, req.GroupID, req.UserID); err != nil {
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &ActionResponse{Success: true}, nil)
}

// ListMembers 查询群成员
func (h *HTTPHandler) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()
	var req ListMembersRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid list members request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &MembersResponse{Success: false, Message: "Invalid request format", Members: []*MemberDTO{}}, err)
		return
	}

	members, err := h.svc.ListMembers(ctx, req.GroupID, req.Status)
	if err != nil {
		httpx.WriteObject(c, &MembersResponse{Success: false, Message: err.Error(), Members: []*MemberDTO{}}, err)
		return
	}

	dtos := make([]*MemberDTO, 0, len(members))
	for _, member := range members {
		dtos = append(dtos, memberToDTO(member))
	}

	httpx.WriteObject(c, &MembersResponse{Success: true, Members: dtos}, nil)
}

// SendMessage 发送群消息
func (h *HTTPHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid send message request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &MessageResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	params := &model.SendMessageParams{
		GroupID:  req.GroupID,
		UserID:   req.UserID,
		UserName: req.UserName,
		Content:  req.Content,
	}

	message, err := h.svc.SendMessage(ctx, params)
	if err != nil {
		h.logger.Error(ctx, "Failed to send group message",
			logger.F("groupID", req.GroupID),
			logger.F("userID", req.UserID),
			logger.F("error", err.Error()))
		httpx.WriteObject(c, &MessageResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &MessageResponse{Success: true, Data: messageToDTO(message)}, nil)
}

// GetMessages 查询群消息
func (h *HTTPHandler) GetMessages(c *gin.Context) {
	ctx := c.Request.Context()
	var req GetMessagesRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid get messages request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &MessagesResponse{Success: false, Message: "Invalid request format", Messages: []*MessageDTO{}}, err)
		return
	}

	params := &model.GetMessagesParams{
		GroupID: req.GroupID,
		UserID:  req.UserID,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}

	messages, err := h.svc.GetMessages(ctx, params)
	if err != nil {
		httpx.WriteObject(c, &MessagesResponse{Success: false, Message: err.Error(), Messages: []*MessageDTO{}}, err)
		return
	}

	dtos := make([]*MessageDTO, 0, len(messages))
	for _, message := range messages {
		dtos = append(dtos, messageToDTO(message))
	}

	httpx.WriteObject(c, &MessagesResponse{Success: true, Messages: dtos}, nil)
}

// groupToDTO 将群组Model转换为响应对象
func groupToDTO(group *model.Group) *GroupDTO {
	if group == nil {
		return nil
	}
	return &GroupDTO{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		AvatarURL:   group.AvatarURL,
		OwnerID:     group.OwnerID,
		MemberCount: group.MemberCount,
		CreatedAt:   group.CreatedAt.Format(time.RFC3339),
	}
}

// memberToDTO 将成员Model转换为响应对象
func memberToDTO(member *model.GroupMember) *MemberDTO {
	if member == nil {
		return nil
	}
	return &MemberDTO{
		ID:       member.ID,
		GroupID:  member.GroupID,
		UserID:   member.UserID,
		Status:   member.Status,
		Role:     member.Role,
		JoinedAt: member.JoinedAt.Format(time.RFC3339),
	}
}

// messageToDTO 将消息Model转换为响应对象
func messageToDTO(message *model.GroupMessage) *MessageDTO {
	if message == nil {
		return nil
	}
	return &MessageDTO{
		MessageID: message.MessageID,
		GroupID:   message.GroupID,
		UserID:    message.UserID,
		UserName:  message.UserName,
		Content:   message.Content,
		CreatedAt: message.CreatedAt.Format(time.RFC3339),
	}
}
