package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sportshub-social/apps/post-service/model"
	"sportshub-social/pkg/database"
)

// postDAO 帖子数据访问实现
type postDAO struct {
	db *database.PostgreSQL
}

// NewPostDAO 创建帖子DAO实例
func NewPostDAO(db *database.PostgreSQL) PostDAO {
	return &postDAO{db: db}
}

// CreatePost 创建帖子
func (d *postDAO) CreatePost(ctx context.Context, post *model.Post) error {
	return d.db.WithContext(ctx).Create(post).Error
}

// GetPost 获取帖子
func (d *postDAO) GetPost(ctx context.Context, postID int64) (*model.Post, error) {
	var post model.Post
	err := d.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost 更新帖子
func (d *postDAO) UpdatePost(ctx context.Context, post *model.Post) error {
	return d.db.WithContext(ctx).Save(post).Error
}

// DeletePost 删除帖子
func (d *postDAO) DeletePost(ctx context.Context, postID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id = ?", postID).Delete(&model.Post{}).Error
	})
}

// ListPosts 查询帖子列表，按创建时间倒序
func (d *postDAO) ListPosts(ctx context.Context, params *model.ListPostsParams) ([]*model.Post, int64, error) {
	query := d.db.WithContext(ctx).Model(&model.Post{})

	if params.AuthorID > 0 {
		query = query.Where("author_id = ?", params.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = model.DefaultPageSize
	}
	if pageSize > model.MaxPageSize {
		pageSize = model.MaxPageSize
	}

	var posts []*model.Post
	err := query.
		Order("created_at DESC").
		Offset(int((page - 1) * pageSize)).
		Limit(int(pageSize)).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// GetAuthorStats 获取作者发帖统计
func (d *postDAO) GetAuthorStats(ctx context.Context, authorID int64) (*model.AuthorStats, error) {
	stats := &model.AuthorStats{AuthorID: authorID}

	err := d.db.WithContext(ctx).Model(&model.Post{}).
		Where("author_id = ?", authorID).
		Count(&stats.TotalPosts).Error
	if err != nil {
		return nil, err
	}

	if stats.TotalPosts > 0 {
		var lastPost model.Post
		err = d.db.WithContext(ctx).
			Where("author_id = ?", authorID).
			Order("created_at DESC").
			First(&lastPost).Error
		if err != nil {
			return nil, err
		}
		stats.LastPostAt = lastPost.CreatedAt.Unix()
	}

	return stats, nil
}

// UpdateCommentCount 更新帖子评论数
func (d *postDAO) UpdateCommentCount(ctx context.Context, postID int64, delta int64) error {
	return d.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumns(map[string]interface{}{
			"comment_count": gorm.Expr("GREATEST(comment_count + ?, 0)", delta),
			"updated_at":    time.Now(),
		}).Error
}
