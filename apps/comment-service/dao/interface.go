package dao

import (
	"context"

	"sportshub-social/apps/comment-service/model"
)

// CommentDAO 评论数据访问接口
type CommentDAO interface {
	// 基础评论操作
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetComment(ctx context.Context, commentID int64) (*model.Comment, error)
	UpdateComment(ctx context.Context, comment *model.Comment) error
	DeleteComment(ctx context.Context, commentID int64) error

	// 评论查询
	ListComments(ctx context.Context, params *model.ListCommentsParams) ([]*model.Comment, int64, error)
	CountByPost(ctx context.Context, postID int64) (int64, error)

	// 点赞管理
	AddLike(ctx context.Context, commentID, userID int64) error
	RemoveLike(ctx context.Context, commentID, userID int64) error
	IsLiked(ctx context.Context, commentID, userID int64) (bool, error)
}
