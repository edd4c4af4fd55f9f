package model

// 内容长度限制
const (
	ContentMaxLength = 1000
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 事件类型常量
const (
	EventCommentCreated = "comment.created"
	EventCommentDeleted = "comment.deleted"
	EventCommentLiked   = "comment.liked"
	EventCommentUnliked = "comment.unliked"
)

// 限流动作类型，与审核服务约定一致
const (
	ActionTypeComment = "comment"
)
