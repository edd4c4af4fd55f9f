package dao

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"sportshub-social/apps/comment-service/model"
	"sportshub-social/pkg/database"
)

// commentDAO 评论数据访问实现
type commentDAO struct {
	db *database.PostgreSQL
}

// NewCommentDAO 创建评论DAO实例
func NewCommentDAO(db *database.PostgreSQL) CommentDAO {
	return &commentDAO{db: db}
}

// CreateComment 创建评论
func (d *commentDAO) CreateComment(ctx context.Context, comment *model.Comment) error {
	return d.db.WithContext(ctx).Create(comment).Error
}

// GetComment 获取评论
func (d *commentDAO) GetComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	var comment model.Comment
	err := d.db.WithContext(ctx).Where("id = ?", commentID).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// UpdateComment 更新评论
func (d *commentDAO) UpdateComment(ctx context.Context, comment *model.Comment) error {
	return d.db.WithContext(ctx).Save(comment).Error
}

// DeleteComment 删除评论及其点赞记录
func (d *commentDAO) DeleteComment(ctx context.Context, commentID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&model.CommentLike{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", commentID).Delete(&model.Comment{}).Error
	})
}

// ListComments 查询评论列表，按创建时间正序
func (d *commentDAO) ListComments(ctx context.Context, params *model.ListCommentsParams) ([]*model.Comment, int64, error) {
	query := d.db.WithContext(ctx).Model(&model.Comment{})

	if params.PostID > 0 {
		query = query.Where("post_id = ?", params.PostID)
	}
	if params.UserID > 0 {
		query = query.Where("user_id = ?", params.UserID)
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

	var comments []*model.Comment
	err := query.
		Order("created_at ASC").
		Offset(int((page - 1) * pageSize)).
		Limit(int(pageSize)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// CountByPost 统计帖子下的评论数
func (d *commentDAO) CountByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

// AddLike 点赞评论，重复点赞返回错误
func (d *commentDAO) AddLike(ctx context.Context, commentID, userID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.CommentLike
		err := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).First(&existing).Error
		if err == nil {
			return fmt.Errorf("已点赞过该评论")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		like := &model.CommentLike{CommentID: commentID, UserID: userID}
		if err := tx.Create(like).Error; err != nil {
			return err
		}

		return tx.Model(&model.Comment{}).
			Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
}

// RemoveLike 取消点赞
func (d *commentDAO) RemoveLike(ctx context.Context, commentID, userID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&model.CommentLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("未点赞过该评论")
		}

		return tx.Model(&model.Comment{}).
			Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("GREATEST(like_count - 1, 0)")).Error
	})
}

// IsLiked 查询用户是否点赞过评论
func (d *commentDAO) IsLiked(ctx context.Context, commentID, userID int64) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&model.CommentLike{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
