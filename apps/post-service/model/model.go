package model

import (
	"time"
)

// Post 帖子模型
type Post struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	AuthorID     int64     `json:"author_id" gorm:"not null;index"`
	AuthorName   string    `json:"author_name" gorm:"type:varchar(100)"`
	Title        string    `json:"title" gorm:"type:varchar(200);not null"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	MediaType    string    `json:"media_type" gorm:"type:varchar(20);not null;default:'text'"`
	MediaURL     string    `json:"media_url" gorm:"type:varchar(500)"`
	CommentCount int64     `json:"comment_count" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName .
func (Post) TableName() string {
	return "posts"
}

// AuthorStats 作者发帖统计
type AuthorStats struct {
	AuthorID   int64 `json:"author_id"`
	TotalPosts int64 `json:"total_posts"`
	LastPostAt int64 `json:"last_post_at"` // Unix秒，无帖子时为0
}

// CreatePostParams 创建帖子参数
type CreatePostParams struct {
	AuthorID   int64
	AuthorName string
	Title      string
	Content    string
	MediaType  string
	MediaURL   string
}

// UpdatePostParams 更新帖子参数
type UpdatePostParams struct {
	PostID     int64
	OperatorID int64
	Title      string
	Content    string
	MediaType  string
	MediaURL   string
}

// ListPostsParams 帖子列表查询参数
type ListPostsParams struct {
	AuthorID int64 // 0表示不按作者过滤
	Page     int32
	PageSize int32
}

// PostEvent 帖子变更事件
type PostEvent struct {
	Type       string `json:"type"`
	PostID     int64  `json:"post_id"`
	AuthorID   int64  `json:"author_id"`
	OccurredAt int64  `json:"occurred_at"`
}

// ValidateMediaType 验证媒体类型
func ValidateMediaType(mediaType string) bool {
	switch mediaType {
	case MediaTypeText, MediaTypeImage, MediaTypeVideo:
		return true
	}
	return false
}
