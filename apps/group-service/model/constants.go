package model

// 成员状态常量
const (
	MemberStatusPending  = "pending"
	MemberStatusApproved = "approved"
)

// 成员角色常量
const (
	MemberRoleMember    = "member"
	MemberRoleModerator = "moderator"
)

// 字段长度限制
const (
	NameMaxLength        = 100
	DescriptionMaxLength = 500
	MessageMaxLength     = 2000
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MongoDB集合名
const (
	MessageCollection = "group_messages"
)

// 事件类型常量
const (
	EventGroupCreated      = "group.created"
	EventGroupDeleted      = "group.deleted"
	EventGroupMessageSent  = "group.message.sent"
	EventGroupMemberJoined = "group.member.joined"
)

// 群消息与评论共用同一档限流配额
const (
	ActionTypeComment = "comment"
)
