package model

import (
	"time"
)

// Comment 评论模型
type Comment struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	PostID    int64     `json:"post_id" gorm:"not null;index"`
	UserID    int64     `json:"user_id" gorm:"not null;index"`
	UserName  string    `json:"user_name" gorm:"type:varchar(100)"` // 冗余字段，避免跨服务查询
	Content   string    `json:"content" gorm:"type:varchar(1000);not null"`
	LikeCount int32     `json:"like_count" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName .
func (Comment) TableName() string {
	return "comments"
}

// CommentLike 评论点赞记录
type CommentLike struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	CommentID int64     `json:"comment_id" gorm:"not null;uniqueIndex:idx_comment_user"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_comment_user"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName .
func (CommentLike) TableName() string {
	return "comment_likes"
}

// CreateCommentParams 创建评论参数
type CreateCommentParams struct {
	PostID   int64
	UserID   int64
	UserName string
	Content  string
}

// UpdateCommentParams 更新评论参数
type UpdateCommentParams struct {
	CommentID  int64
	OperatorID int64
	Content    string
}

// ListCommentsParams 评论列表查询参数
type ListCommentsParams struct {
	PostID   int64 // 按帖子过滤，0表示不过滤
	UserID   int64 // 按用户过滤，0表示不过滤
	Page     int32
	PageSize int32
}

// CommentEvent 评论变更事件
type CommentEvent struct {
	Type       string `json:"type"`
	CommentID  int64  `json:"comment_id"`
	PostID     int64  `json:"post_id"`
	UserID     int64  `json:"user_id"`
	OccurredAt int64  `json:"occurred_at"`
}
