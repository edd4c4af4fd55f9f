package handler

import (
	"github.com/gin-gonic/gin"

	"sportshub-social/apps/post-service/converter"
	"sportshub-social/apps/post-service/model"
	"sportshub-social/apps/post-service/service"
	"sportshub-social/pkg/httpx"
	"sportshub-social/pkg/logger"
)

// HTTPHandler HTTP处理器
type HTTPHandler struct {
	svc       *service.Service
	converter *converter.Converter
	logger    logger.Logger
}

// NewHTTPHandler 创建HTTP处理器
func NewHTTPHandler(svc *service.Service, logger logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:       svc,
		converter: converter.NewConverter(),
		logger:    logger,
	}
}

// RegisterRoutes 注册路由
func (h *HTTPHandler) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api/v1/post")
	{
		// 基础帖子操作
		api.POST("/create", h.CreatePost)
		api.POST("/update", h.UpdatePost)
		api.POST("/delete", h.DeletePost)
		api.POST("/get", h.GetPost)

		// 帖子列表查询
		api.POST("/list", h.ListPosts)

		// 统计查询
		api.POST("/stats", h.GetAuthorStats)
	}
}

// CreatePostRequest 创建帖子请求
type CreatePostRequest struct {
	AuthorID   int64  `json:"author_id" binding:"required"`
	AuthorName string `json:"author_name"`
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content"`
	MediaType  string `json:"media_type"`
	MediaURL   string `json:"media_url"`
}

// UpdatePostRequest 更新帖子请求
type UpdatePostRequest struct {
	PostID     int64  `json:"post_id" binding:"required"`
	OperatorID int64  `json:"operator_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
	Content    string `json:"content"`
	MediaType  string `json:"media_type"`
	MediaURL   string `json:"media_url"`
}

// DeletePostRequest 删除帖子请求
type DeletePostRequest struct {
	PostID     int64 `json:"post_id" binding:"required"`
	OperatorID int64 `json:"operator_id" binding:"required"`
}

// GetPostRequest 获取帖子请求
type GetPostRequest struct {
	PostID int64 `json:"post_id" binding:"required"`
}

// ListPostsRequest 帖子列表请求
type ListPostsRequest struct {
	AuthorID int64 `json:"author_id"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

// GetAuthorStatsRequest 作者统计请求
type GetAuthorStatsRequest struct {
	AuthorID int64 `json:"author_id" binding:"required"`
}

// CreatePost 创建帖子
func (h *HTTPHandler) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()
	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid create post request", logger.F("error", err.Error()))
		res := h.converter.BuildErrorPostResponse("Invalid request format")
		httpx.WriteObject(c, res, err)
		return
	}

	params := &model.CreatePostParams{
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
		Title:      req.Title,
		Content:    req.Content,
		MediaType:  req.MediaType,
		MediaURL:   req.MediaURL,
	}

	post, err := h.svc.CreatePost(ctx, params)
	if err != nil {
		h.logger.Error(ctx, "Failed to create post",
			logger.F("authorID", req.AuthorID),
			logger.F("error", err.Error()))
		res := h.converter.BuildErrorPostResponse(err.Error())
		httpx.WriteObject(c, res, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildPostResponse(post), nil)
}

// UpdatePost 更新帖子
func (h *HTTPHandler) UpdatePost(c *gin.Context) {
	ctx := c.Request.Context()
	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid update post request", logger.F("error", err.Error()))
		res := h.converter.BuildErrorPostResponse("Invalid request format")
		httpx.WriteObject(c, res, err)
		return
	}

	params := &model.UpdatePostParams{
		PostID:     req.PostID,
		OperatorID: req.OperatorID,
		Title:      req.Title,
		Content:    req.Content,
		MediaType:  req.MediaType,
		MediaURL:   req.MediaURL,
	}

	post, err := h.svc.UpdatePost(ctx, params)
	if err != nil {
		h.logger.Error(ctx, "Failed to update post",
			logger.F("postID", req.PostID),
			logger.F("error", err.Error()))
		res := h.converter.BuildErrorPostResponse(err.Error())
		httpx.WriteObject(c, res, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildPostResponse(post), nil)
}

// DeletePost 删除帖子
func (h *HTTPHandler) DeletePost(c *gin.Context) {
	ctx := c.Request.Context()
	var req DeletePostRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid delete post request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &converter.DeleteResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	if err := h.svc.DeletePost(ctx, req.PostID, req.OperatorID); err != nil {
		h.logger.Error(ctx, "Failed to delete post",
			logger.F("postID", req.PostID),
			logger.F("error", err.Error()))
		httpx.WriteObject(c, &converter.DeleteResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &converter.DeleteResponse{Success: true}, nil)
}

// GetPost 获取帖子
func (h *HTTPHandler) GetPost(c *gin.Context) {
	ctx := c.Request.Context()
	var req GetPostRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid get post request", logger.F("error", err.Error()))
		res := h.converter.BuildErrorPostResponse("Invalid request format")
		httpx.WriteObject(c, res, err)
		return
	}

	post, err := h.svc.GetPost(ctx, req.PostID)
	if err != nil {
		res := h.converter.BuildErrorPostResponse(err.Error())
		httpx.WriteObject(c, res, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildPostResponse(post), nil)
}

// ListPosts 查询帖子列表
func (h *HTTPHandler) ListPosts(c *gin.Context) {
	ctx := c.Request.Context()
	var req ListPostsRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid list posts request", logger.F("error", err.Error()))
		res := h.converter.BuildErrorListPostsResponse("Invalid request format")
		httpx.WriteObject(c, res, err)
		return
	}

	params := &model.ListPostsParams{
		AuthorID: req.AuthorID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	posts, total, err := h.svc.ListPosts(ctx, params)
	if err != nil {
		res := h.converter.BuildErrorListPostsResponse(err.Error())
		httpx.WriteObject(c, res, err)
		return
	}

	httpx.WriteObject(c, h.converter.BuildListPostsResponse(posts, total, req.Page), nil)
}

// GetAuthorStats 查询作者发帖统计
func (h *HTTPHandler) GetAuthorStats(c *gin.Context) {
	ctx := c.Request.Context()
	var req GetAuthorStatsRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Error(ctx, "Invalid author stats request", logger.F("error", err.Error()))
		httpx.WriteObject(c, &converter.StatsResponse{Success: false, Message: "Invalid request format"}, err)
		return
	}

	stats, err := h.svc.GetAuthorStats(ctx, req.AuthorID)
	if err != nil {
		httpx.WriteObject(c, &converter.StatsResponse{Success: false, Message: err.Error()}, err)
		return
	}

	httpx.WriteObject(c, &converter.StatsResponse{Success: true, Stats: stats}, nil)
}
