package model

import (
	"time"
)

// Group 群组模型
type Group struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Description string    `json:"description" gorm:"type:varchar(500);not null"`
	AvatarURL   string    `json:"avatar_url" gorm:"type:varchar(500)"`
	OwnerID     int64     `json:"owner_id" gorm:"not null;index"` // 创建者，自动成为群管理员
	MemberCount int32     `json:"member_count" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName .
func (Group) TableName() string {
	return "groups"
}

// GroupMember 群成员模型
type GroupMember struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	GroupID  int64     `json:"group_id" gorm:"not null;uniqueIndex:idx_group_user"`
	UserID   int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_group_user"`
	Status   string    `json:"status" gorm:"type:varchar(20);not null;index;default:'pending'"`
	Role     string    `json:"role" gorm:"type:varchar(20);not null;default:'member'"`
	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}

// TableName .
func (GroupMember) TableName() string {
	return "group_members"
}

// GroupMessage 群消息，存储在MongoDB
type GroupMessage struct {
	MessageID int64     `json:"message_id" bson:"message_id"`
	GroupID   int64     `json:"group_id" bson:"group_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	UserName  string    `json:"user_name" bson:"user_name"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// CreateGroupParams 创建群组参数
type CreateGroupParams struct {
	OwnerID     int64
	Name        string
	Description string
	AvatarURL   string
}

// UpdateGroupParams 更新群组参数
type UpdateGroupParams struct {
	GroupID     int64
	OperatorID  int64
	Name        string
	Description string
	AvatarURL   string
}

// ListGroupsParams 群组列表查询参数
type ListGroupsParams struct {
	UserID   int64 // 非0时仅返回该用户已加入的群组
	Page     int32
	PageSize int32
}

// SendMessageParams 发送群消息参数
type SendMessageParams struct {
	GroupID  int64
	UserID   int64
	UserName string
	Content  string
}

// GetMessagesParams 群消息查询参数
type GetMessagesParams struct {
	GroupID int64
	UserID  int64 // 请求者，须是已批准成员
	Limit   int32
	Offset  int32
}

// GroupEvent 群组变更事件
type GroupEvent struct {
	Type       string `json:"type"`
	GroupID    int64  `json:"group_id"`
	UserID     int64  `json:"user_id"`
	MessageID  int64  `json:"message_id,omitempty"`
	OccurredAt int64  `json:"occurred_at"`
}
