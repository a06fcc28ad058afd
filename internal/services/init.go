// Package services 实现业务用例层。服务只依赖自己声明的仓储接口，
// 由注入层把具体 Repository 绑定进来。
package services

import "github.com/google/wire"

// ProviderSet 暴露 Service 层的构造函数供 Wire 依赖注入使用。
// VideoService 的两个级联依赖类型相同，Wire 无法自动区分，
// 由 cmd 层的手工 Provider 组装。
var ProviderSet = wire.NewSet(
	NewInteractionService,
	NewFeedService,
	NewUserService,
)

// 对外错误原因码：随 kratos errors 返回，客户端据此分支。
const (
	ReasonUnauthenticated   = "UNAUTHENTICATED"
	ReasonVideoNotFound     = "VIDEO_NOT_FOUND"
	ReasonUserNotFound      = "USER_NOT_FOUND"
	ReasonViewNotFound      = "VIEW_NOT_FOUND"
	ReasonValidationFailed  = "VALIDATION_FAILED"
	ReasonPermissionDenied  = "PERMISSION_DENIED"
	ReasonPersistenceFailed = "PERSISTENCE_FAILED"
	ReasonQueryTimeout      = "QUERY_TIMEOUT"
)
