package converter

import (
	"time"

	"sportshub-social/apps/post-service/model"
)

// PostDTO 帖子响应对象
type PostDTO struct {
	ID           int64  `json:"id"`
	AuthorID     int64  `json:"author_id"`
	AuthorName   string `json:"author_name"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url,omitempty"`
	CommentCount int64  `json:"comment_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// PostResponse 单帖响应
type PostResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Post    *PostDTO `json:"post,omitempty"`
}

// ListPostsResponse 帖子列表响应
type ListPostsResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Posts   []*PostDTO `json:"posts"`
	Total   int64      `json:"total"`
	Page    int32      `json:"page"`
}

// StatsResponse 统计响应
type StatsResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Stats   *model.AuthorStats `json:"stats,omitempty"`
}

// DeleteResponse 删除响应
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Converter 转换器，提供Model到响应对象的转换
type Converter struct{}

// NewConverter 创建转换器实例
func NewConverter() *Converter {
	return &Converter{}
}

// PostModelToDTO 将帖子Model转换为响应对象
func (c *Converter) PostModelToDTO(post *model.Post) *PostDTO {
	if post == nil {
		return nil
	}
	return &PostDTO{
		ID:           post.ID,
		AuthorID:     post.AuthorID,
		AuthorName:   post.AuthorName,
		Title:        post.Title,
		Content:      post.Content,
		MediaType:    post.MediaType,
		MediaURL:     post.MediaURL,
		CommentCount: post.CommentCount,
		CreatedAt:    post.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    post.UpdatedAt.Format(time.RFC3339),
	}
}

// PostModelsToDTO 将帖子Model列表转换为响应对象列表
func (c *Converter) PostModelsToDTO(posts []*model.Post) []*PostDTO {
	result := make([]*PostDTO, 0, len(posts))
	for _, post := range posts {
		result = append(result, c.PostModelToDTO(post))
	}
	return result
}

// BuildPostResponse 构建单帖响应
func (c *Converter) BuildPostResponse(post *model.Post) *PostResponse {
	return &PostResponse{
		Success: true,
		Post:    c.PostModelToDTO(post),
	}
}

// BuildErrorPostResponse 构建单帖错误响应
func (c *Converter) BuildErrorPostResponse(message string) *PostResponse {
	return &PostResponse{
		Success: false,
		Message: message,
	}
}

// BuildListPostsResponse 构建帖子列表响应
func (c *Converter) BuildListPostsResponse(posts []*model.Post, total int64, page int32) *ListPostsResponse {
	return &ListPostsResponse{
		Success: true,
		Posts:   c.PostModelsToDTO(posts),
		Total:   total,
		Page:    page,
	}
}

// BuildErrorListPostsResponse 构建帖子列表错误响应
func (c *Converter) BuildErrorListPostsResponse(message string) *ListPostsResponse {
	return &ListPostsResponse{
		Success: false,
		Message: message,
		Posts:   []*PostDTO{},
	}
}
