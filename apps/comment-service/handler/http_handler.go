package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"sportshub-social/apps/comment-service/model"
	"sportshub-social/apps/comment-service/service"
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
	api := engine.Group("/api/v1/comment")
	{
		// 基础评论操作
		api.POST("/create", h.CreateComment)
		api.POST("/update", h.UpdateComment)
		api.POST("/delete", h.DeleteComment)
		api.POST("/get", h.GetComment)

		// 评论列表查询
		api.POST("/list", h.ListComments)

		// 点赞操作
		api.POST("/like", h.LikeComment)
		api.POST("/unlike", h.UnlikeComment)
		api.POST("/is_liked", h.IsCommentLiked)
	}
}

// CommentDTO 评论响应对象
type CommentDTO struct {
	ID        int64  `json:"id"`
	PostID    int64  `json:"post_id"`
	UserID    int64  `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	LikeCount int32  `json:"like_count"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CommentResponse 单条评论响应
type CommentResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Comment *CommentDTO `json:"comment,omitempty"`
}

// ListCommentsResponse 评论列表响应
type ListCommentsResponse struct {
	Success  bool          `json:"success"`
	Message  string        `json:"message,omitempty"`
	Comments []*CommentDTO `json:"comments"`
	Total    int64         `json:"total"`
	Page     int32         `json:"page"`
}

// ActionResponse 操作响应
type ActionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LikedResponse 点赞状态响应
type LikedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Liked   bool   `json:"liked"`
}

// CreateCommentRequest 创建评论请求
type CreateCommentRequest struct {
	PostID   int64  `json:"post_id" binding:"required"`
	UserID   int64  `json:"user_id" binding:"required"`
	UserName string `json:"user_name"`
	Content  string `json:"content"`
}

// UpdateCommentRequest 更新评论请求
type UpdateCommentRequest struct {
	CommentID  int64  `json:"comment_id" binding:"required"`
	OperatorID int64  `json:"operator_id" binding:"required"`
	Content    string `json:"content"`
}

// DeleteCommentRequest 删除评论请求
type DeleteCommentRequest struct {
	CommentID  int64 `json:"comment_id" binding:"required"`
	OperatorID int64 `json:"operator_id" binding:"required"`
}

// GetCommentRequest 获取评论请求
type GetCommentRequest struct {
	CommentID int64 `json:"comment_id" binding:"required"`
}

// ListCommentsRequest 评论列表请求
type ListCommentsRequest struct {
	PostID   int64 `json:"post_id"`
	UserID   int64 `json:"user_id"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

// LikeRequest 点赞请求
type LikeRequest struct {
	CommentID int64 `json:"comment_id" binding:"required"`
	UserID    int64 `json:"user_id" binding:"required"`
}

// CreateComment 创建评论
func (h *HTTPHandler) CreateComment(c *gin.Context) {
	ctx := c.Request.Context()
	var req CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid create comment request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &CommentResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	params := &model.CreateCommentParams{
		PostID:   req.PostID,
		UserID:   req.UserID,
		UserName: req.UserName,
		Content:  req.Content,
	}

	comment, err := h.svc.CreateComment(ctx, params)
	if err != nil {
		h.logger.Error(ctx, "Failed to create comment",
			logger.F("postID", req.PostID),
			logger.F("userID", req.UserID),
			logger.F("error", err.Error()))
		httpx.WriteObject(c, &CommentResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &CommentResponse{Success: true, Comment: commentToDTO(comment)}, nil)
}

// UpdateComment 更新评论
func (h *HTTPHandler) UpdateComment(c *gin.Context) {
	ctx := c.Request.Context()
	var req UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid update comment request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &CommentResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	params := &model.UpdateCommentParams{
		CommentID:  req.CommentID,
		OperatorID: req.OperatorID,
		Content:    req.Content,
	}

	comment, err := h.svc.UpdateComment(ctx, params)
	if err != nil {
		httpx.WriteObject(c, &CommentResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &CommentResponse{Success: true, Comment: commentToDTO(comment)}, nil)
}

// DeleteComment 删除评论
func (h *HTTPHandler) DeleteComment(c *gin.Context) {
	ctx := c.Request.Context()
	var req DeleteCommentRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid delete comment request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.DeleteComment(ctx, req.CommentID, req.OperatorID); err != nil {
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &ActionResponse{Success: true}, nil)
}

// GetComment 获取评论
func (h *HTTPHandler) GetComment(c *gin.Context) {
	ctx := c.Request.Context()
	var req GetCommentRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid get comment request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &CommentResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	comment, err := h.svc.GetComment(ctx, req.CommentID)
	if err != nil {
		httpx.WriteObject(c, &CommentResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &CommentResponse{Success: true, Comment: commentToDTO(comment)}, nil)
}

// ListComments 查询评论列表
func (h *HTTPHandler) ListComments(c *gin.Context) {
	ctx := c.Request.Context()
	var req ListCommentsRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid list comments request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ListCommentsResponse{Success: false, Message: "Invalid request format", Comments: []*CommentDTO{}}, err)
		return
	}

	params := &model.ListCommentsParams{
		PostID:   req.PostID,
		UserID:   req.UserID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	comments, total, err := h.svc.ListComments(ctx, params)
	if err != nil {
		httpx.WriteObject(c, &ListCommentsResponse{Success: false, Message: err.Error(), Comments: []*CommentDTO{}}, err)
		return
	}

	dtos := make([]*CommentDTO, 0, len(comments))
	for _, comment := range comments {
		dtos = append(dtos, commentToDTO(comment))
	}

	httpx.WriteObject(c, &ListCommentsResponse{Success: true, Comments: dtos, Total: total, Page: req.Page}, nil)
}

// LikeComment 点赞评论
func (h *HTTPHandler) LikeComment(c *gin.Context) {
	ctx := c.Request.Context()
	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid like request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.LikeComment(ctx, req.CommentID, req.UserID); err != nil {
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &ActionResponse{Success: true}, nil)
}

// UnlikeComment 取消点赞
func (h *HTTPHandler) UnlikeComment(c *gin.Context) {
	ctx := c.Request.Context()
	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid unlike request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.UnlikeComment(ctx, req.CommentID, req.UserID); err != nil {
		httpx.WriteObject(c, &ActionResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &ActionResponse{Success: true}, nil)
}

// IsCommentLiked 查询点赞状态
func (h *HTTPHandler) IsCommentLiked(c *gin.Context) {
	ctx := c.Request.Context()
	var req LikeRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid is_liked request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &LikedResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	liked, err := h.svc.IsCommentLiked(ctx, req.CommentID, req.UserID)
	if err != nil {
		httpx.WriteObject(c, &LikedResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &LikedResponse{Success: true, Liked: liked}, nil)
}

// commentToDTO 将评论Model转换为响应对象
func commentToDTO(comment *model.Comment) *CommentDTO {
	if comment == nil {
		return nil
	}
	return &CommentDTO{
		ID:        comment.ID,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		UserName:  comment.UserName,
		Content:   comment.Content,
		LikeCount: comment.LikeCount,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
		UpdatedAt: comment.UpdatedAt.Format(time.RFC3339),
	}
}
