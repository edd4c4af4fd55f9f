package dao

import (
	"context"

	"sportshub-social/apps/group-service/model"
)

// GroupDAO 群组数据访问接口
type GroupDAO interface {
	// 群组管理
	CreateGroup(ctx context.Context, group *model.Group, owner *model.GroupMember) error
	GetGroup(ctx context.Context, groupID int64) (*model.Group, error)
	UpdateGroup(ctx context.Context, group *model.Group) error
	DeleteGroup(ctx context.Context, groupID int64) error
	ListGroups(ctx context.Context, params *model.ListGroupsParams) ([]*model.Group, int64, error)

	// 成员管理
	AddMember(ctx context.Context, member *model.GroupMember) error
	GetMember(ctx context.Context, groupID, userID int64) (*model.GroupMember, error)
	GetMemberByID(ctx context.Context, memberID int64) (*model.GroupMember, error)
	ApproveMember(ctx context.Context, memberID int64) error
	RemoveMember(ctx context.Context, memberID int64) error
	ListMembers(ctx context.Context, groupID int64, status string) ([]*model.GroupMember, error)
}

// MessageDAO 群消息数据访问接口
type MessageDAO interface {
	SaveMessage(ctx context.Context, message *model.GroupMessage) error
	GetMessages(ctx context.Context, groupID int64, limit, offset int32) ([]*model.GroupMessage, error)
	DeleteGroupMessages(ctx context.Context, groupID int64) error
}
