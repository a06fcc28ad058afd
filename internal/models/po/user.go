package po

import "time"

// User 表示 feed.users 表的数据库实体。
// 认证由外部身份提供方负责；本服务只持有画像与兴趣向量。
type User struct {
	UserID    string    `db:"user_id"` // 外部身份主体标识（主键）
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	FullName  *string   `db:"full_name"`
	Bio       *string   `db:"bio"`
	AvatarURL *string   `db:"avatar_url"`
	Embedding []float32 `db:"embedding"` // 画像向量：由注册时声明的兴趣推导，冷启动兜底
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
