package model

// 审核级别常量
const (
	LevelLocalFilter ModerationLevel = 1 // 本地词库过滤
	LevelAIAnalysis  ModerationLevel = 2 // AI分析
	LevelAdminReview ModerationLevel = 3 // 人工审核（预留，当前流程不会产生）
)

// 限流动作类型常量
const (
	ActionTypePost    = "post"    // 发帖
	ActionTypeComment = "comment" // 评论
)

// 限流默认值
const (
	DefaultPostsPerHour    = 10 // 每小时发帖上限
	DefaultCommentsPerHour = 30 // 每小时评论上限
	DefaultLimit           = 10 // 未知动作类型的兜底上限
)

// 拒绝原因（按命中的词库语种返回对应文案，而非按输入语种检测）
const (
	ReasonEmptyContent    = "Conținutul nu poate fi gol."
	ReasonRomanianMatch   = "Conținutul conține limbaj inadecvat sau ofensator."
	ReasonEnglishMatch    = "Content contains inappropriate or offensive language."
	ReasonOtherMatch      = "El contenido contiene lenguaje inapropiado."
	ReasonAIFallback      = "Conținut inadecvat detectat de AI"
	ReasonRateLimitedHint = "Ai atins limita de acțiuni. Încearcă din nou mai târziu."
)

// 置信度常量
const (
	ConfidenceLocalReject  = 1.0  // 本地词库命中
	ConfidenceLocalPass    = 0.8  // 本地词库未命中（仅作为中间值携带）
	ConfidenceAIReject     = 0.9  // AI判定违规
	ConfidenceAIPass       = 0.95 // AI判定通过
	ConfidenceFinalApprove = 1.0  // 流水线整体通过
)

// 缓存键前缀
const (
	RateLimitKeyPrefix = "rate_limit"
)

// 事件类型常量
const (
	EventContentBlocked = "moderation.blocked"
)

// BannedWordsRomanian 罗马尼亚语违禁词库
var BannedWordsRomanian = []string{
	"prost", "idiot", "prostule", "pula", "muie", "cacat", "nenorocit",
	"fuck", "retardat", "curva", "curve", "jeg", "jegoasa", "pulă",
	"muist", "târfă", "tarfa", "cretinule", "nemernic", "nemernicule",
}

// BannedWordsEnglish 英语违禁词库
var BannedWordsEnglish = []string{
	"fuck", "shit", "bitch", "asshole", "cunt", "dick", "pussy",
	"bastard", "damn", "piss", "cock", "slut", "whore", "fag",
	"nigger", "retard", "idiot", "stupid", "dumb", "moron",
}

// BannedWordsOther 其他语言违禁词库（西语、法语、德语）
var BannedWordsOther = []string{
	"puta", "mierda", "joder", "cabrón", "pendejo", "culero",
	"merde", "putain", "connard", "salope",
	"scheiße", "arschloch", "fotze", "hurensohn",
}
