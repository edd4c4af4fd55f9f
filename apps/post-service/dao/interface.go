package dao

import (
	"context"

	"sportshub-social/apps/post-service/model"
)

// PostDAO 帖子数据访问接口
type PostDAO interface {
	// 帖子管理
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, postID int64) (*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, postID int64) error

	// 帖子查询
	ListPosts(ctx context.Context, params *model.ListPostsParams) ([]*model.Post, int64, error)

	// 统计
	GetAuthorStats(ctx context.Context, authorID int64) (*model.AuthorStats, error)
	UpdateCommentCount(ctx context.Context, postID int64, delta int64) error
}
