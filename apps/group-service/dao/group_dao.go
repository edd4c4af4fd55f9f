package dao

import (
	"context"

	"gorm.io/gorm"

	"sportshub-social/apps/group-service/model"
	"sportshub-social/pkg/database"
)

// groupDAO 群组数据访问实现
type groupDAO struct {
	db *database.PostgreSQL
}

// NewGroupDAO 创建群组DAO实例
func NewGroupDAO(db *database.PostgreSQL) GroupDAO {
	return &groupDAO{db: db}
}

// CreateGroup 创建群组，创建者在同一事务中成为已批准的管理员成员
func (d *groupDAO) CreateGroup(ctx context.Context, group *model.Group, owner *model.GroupMember) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		owner.GroupID = group.ID
		if err := tx.Create(owner).Error; err != nil {
			return err
		}
		return tx.Model(&model.Group{}).
			Where("id = ?", group.ID).
			UpdateColumn("member_count", 1).Error
	})
}

// GetGroup 获取群组
func (d *groupDAO) GetGroup(ctx context.Context, groupID int64) (*model.Group, error) {
	var group model.Group
	err := d.db.WithContext(ctx).Where("id = ?", groupID).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// UpdateGroup 更新群组
func (d *groupDAO) UpdateGroup(ctx context.Context, group *model.Group) error {
	return d.db.WithContext(ctx).Save(group).Error
}

// DeleteGroup 删除群组及全部成员记录
func (d *groupDAO) DeleteGroup(ctx context.Context, groupID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&model.GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", groupID).Delete(&model.Group{}).Error
	})
}

// ListGroups 查询群组列表
func (d *groupDAO) ListGroups(ctx context.Context, params *model.ListGroupsParams) ([]*model.Group, int64, error) {
	query := d.db.WithContext(ctx).Model(&model.Group{})

	if params.UserID > 0 {
		query = query.Where(
			"id IN (?)",
			d.db.WithContext(ctx).Model(&model.GroupMember{}).
				Select("group_id").
				Where("user_id = ? AND status = ?", params.UserID, model.MemberStatusApproved),
		)
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

	var groups []*model.Group
	err := query.
		Order("created_at DESC").
		Offset(int((page - 1) * pageSize)).
		Limit(int(pageSize)).
		Find(&groups).Error
	if err != nil {
		return nil, 0, err
	}

	return groups, total, nil
}

// AddMember 添加成员记录
func (d *groupDAO) AddMember(ctx context.Context, member *model.GroupMember) error {
	return d.db.WithContext(ctx).Create(member).Error
}

// GetMember 按群和用户查询成员记录
func (d *groupDAO) GetMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error) {
	var member model.GroupMember
	err := d.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetMemberByID 按记录ID查询成员
func (d *groupDAO) GetMemberByID(ctx context.Context, memberID int64) (*model.GroupMember, error) {
	var member model.GroupMember
	err := d.db.WithContext(ctx).Where("id = ?", memberID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ApproveMember 批准入群申请并更新群成员数
func (d *groupDAO) ApproveMember(ctx context.Context, memberID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member model.GroupMember
		if err := tx.Where("id = ?", memberID).First(&member).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.GroupMember{}).
			Where("id = ?", memberID).
			UpdateColumn("status", model.MemberStatusApproved).Error; err != nil {
			return err
		}

		return tx.Model(&model.Group{}).
			Where("id = ?", member.GroupID).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
	})
}

// RemoveMember 删除成员记录，已批准成员离开时同步扣减群成员数
func (d *groupDAO) RemoveMember(ctx context.Context, memberID int64) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member model.GroupMember
		if err := tx.Where("id = ?", memberID).First(&member).Error; err != nil {
			return err
		}

		if err := tx.Where("id = ?", memberID).Delete(&model.GroupMember{}).Error; err != nil {
			return err
		}

		if member.Status == model.MemberStatusApproved {
			return tx.Model(&model.Group{}).
				Where("id = ?", member.GroupID).
				UpdateColumn("member_count", gorm.Expr("GREATEST(member_count - 1, 0)")).Error
		}
		return nil
	})
}

// ListMembers 查询群成员，status为空时返回全部
func (d *groupDAO) ListMembers(ctx context.Context, groupID int64, status string) ([]*model.GroupMember, error) {
	query := d.db.WithContext(ctx).Where("group_id = ?", groupID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var members []*model.GroupMember
	err := query.Order("joined_at ASC").Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}
