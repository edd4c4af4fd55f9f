package model

// 媒体类型常量
const (
	MediaTypeText  = "text"
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// 标题长度限制
const (
	TitleMinLength = 5
	TitleMaxLength = 200
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// 事件类型常量
const (
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
)

// 缓存键前缀与过期时间（秒）
const (
	StatsCacheKeyPrefix = "post_stats"
	StatsCacheTTL       = 300
)

// 限流动作类型，与审核服务约定一致
const (
	ActionTypePost = "post"
)
