package po

import (
	"time"

	"github.com/google/uuid"
)

// VideoAnalytics 表示 feed.video_analytics 记录：每个视频一行的去范式化聚合计数。
// 计数与交互事件在同一事务内增减，保持与交互行数一致。
type VideoAnalytics struct {
	VideoID        uuid.UUID `db:"video_id"`
	TotalViews     int64     `db:"total_views"`
	TotalLikes     int64     `db:"total_likes"`
	TotalComments  int64     `db:"total_comments"`
	TotalShares    int64     `db:"total_shares"`
	TotalBookmarks int64     `db:"total_bookmarks"`
	UpdatedAt      time.Time `db:"updated_at"`
}
