package po

import (
	"time"

	"github.com/google/uuid"
)

// InteractionType 表示交互事件类型。
type InteractionType string

// 交互类型常量定义
const (
	InteractionView     InteractionType = "view"     // 观看（幂等，时长可更新）
	InteractionLike     InteractionType = "like"     // 点赞（开关型）
	InteractionShare    InteractionType = "share"    // 分享（可重复累加）
	InteractionBookmark InteractionType = "bookmark" // 收藏（开关型）
	InteractionComment  InteractionType = "comment"  // 评论
)

// Valid 判断交互类型是否已定义。
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionLike, InteractionShare, InteractionBookmark, InteractionComment:
		return true
	}
	return false
}

// Interaction 表示 feed.video_interactions 表的数据库实体。
// 记录一次用户与视频的交互事件；除 view 的时长刷新与开关型删除外不可变。
type Interaction struct {
	InteractionID       uuid.UUID       `db:"interaction_id"`
	UserID              string          `db:"user_id"`
	VideoID             uuid.UUID       `db:"video_id"`
	InteractionType     InteractionType `db:"interaction_type"`
	InteractionStrength int64           `db:"interaction_strength"` // 正整数兴趣权重
	ViewDuration        *int64          `db:"view_duration"`        // 观看时长（秒，仅 view）
	WatchPercentage     *int64          `db:"watch_percentage"`     // 完播百分比（仅 view）
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// Comment 表示 feed.comments 表的数据库实体。
type Comment struct {
	CommentID  uuid.UUID `db:"comment_id"`
	UserID     string    `db:"user_id"`
	VideoID    uuid.UUID `db:"video_id"`
	Content    string    `db:"content"`
	TotalLikes int64     `db:"total_likes"`
	CreatedAt  time.Time `db:"created_at"`
}
