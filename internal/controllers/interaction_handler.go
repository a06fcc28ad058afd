package controllers

import (
	"github.com/bionicotaku/lingo-services-feed/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-feed/internal/metadata"
	"github.com/bionicotaku/lingo-services-feed/internal/services"
	"github.com/bionicotaku/lingo-services-feed/internal/views"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
)

// InteractionHandler 负责交互相关的 HTTP 请求。
type InteractionHandler struct {
	*BaseHandler
	svc *services.InteractionService
}

// NewInteractionHandler 构造交互 Handler。
func NewInteractionHandler(svc *services.InteractionService, base *BaseHandler) *InteractionHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &InteractionHandler{BaseHandler: base, svc: svc}
}

// Register 挂载交互路由。
func (h *InteractionHandler) Register(r *khttp.Router) {
	r.POST("/videos/{id}/view", h.RecordView)
	r.PUT("/videos/{id}/view", h.UpdateViewProgress)
	r.POST("/videos/{id}/like", h.ToggleLike)
	r.POST("/videos/{id}/bookmark", h.ToggleBookmark)
	r.POST("/videos/{id}/share", h.RecordShare)
	r.POST("/videos/{id}/comments", h.AddComment)
	r.GET("/videos/{id}/comments", h.ListComments)
	r.GET("/videos/{id}/analytics", h.GetAnalytics)
	r.GET("/videos/{id}/interactions", h.GetUserInteractions)
}

// subjectAndVideo 解析身份与路径中的视频 ID，写路径的公共前置。
func (h *InteractionHandler) subjectAndVideo(ctx khttp.Context) (string, uuid.UUID, error) {
	meta := h.ExtractMetadata(ctx.Request())
	subject, ok := meta.Subject()
	if !ok {
		return "", uuid.Nil, errors.Unauthorized(services.ReasonUnauthenticated, "missing user identity")
	}
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("id"))
	if err != nil {
		return "", uuid.Nil, errors.BadRequest(services.ReasonValidationFailed, err.Error())
	}
	return subject, videoID, nil
}

// RecordView 处理 POST /v1/videos/{id}/view。
// 匿名请求不拒绝：观看上报降级为 {recorded:false}，由服务层处理。
func (h *InteractionHandler) RecordView(ctx khttp.Context) error {
	meta := h.ExtractMetadata(ctx.Request())
	subject, _ := meta.Subject()
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, err.Error())
	}
	var req dto.ViewRequest
	if ctx.Request().ContentLength > 0 {
		if bindErr := ctx.Bind(&req); bindErr != nil {
			return errors.BadRequest(services.ReasonValidationFailed, bindErr.Error())
		}
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, metadata.HandlerMetadata{UserID: subject})

	result, err := h.svc.RecordView(timeoutCtx, subject, videoID, req.ToViewProgress())
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewViewResponse(result))
}

// UpdateViewProgress 处理 PUT /v1/videos/{id}/view。
func (h *InteractionHandler) UpdateViewProgress(ctx khttp.Context) error {
	subject, videoID, err := h.subjectAndVideo(ctx)
	if err != nil {
		return err
	}
	var req dto.ViewRequest
	if bindErr := ctx.Bind(&req); bindErr != nil {
		return errors.BadRequest(services.ReasonValidationFailed, bindErr.Error())
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, metadata.HandlerMetadata{UserID: subject})

	result, err := h.svc.UpdateViewProgress(timeoutCtx, subject, videoID, req.ToViewProgress())
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewViewResponse(result))
}

// ToggleLike 处理 POST /v1/videos/{id}/like。
func (h *InteractionHandler) ToggleLike(ctx khttp.Context) error {
	subject, videoID, err := h.subjectAndVideo(ctx)
	if err != nil {
		return err
	}
	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, metadata.HandlerMetadata{UserID: subject})

	result, err := h.svc.ToggleLike(timeoutCtx, subject, videoID)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewLikeResponse(result))
}

// ToggleBookmark 处理 POST /v1/videos/{id}/bookmark。
func (h *InteractionHandler) ToggleBookmark(ctx khttp.Context) error {
	subject, videoID, err := h.subjectAndVideo(ctx)
	if err != nil {
		return err
	}
	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, metadata.HandlerMetadata{UserID: subject})

	result, err := h.svc.ToggleBookmark(timeoutCtx, subject, videoID)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewBookmarkResponse(result))
}

// RecordShare 处理 POST /v1/videos/{id}/share。
func (h *InteractionHandler) RecordShare(ctx khttp.Context) error {
	subject, videoID, err := h.subjectAndVideo(ctx)
	if err != nil {
		return err
	}
	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, metadata.HandlerMetadata{UserID: subject})

	result, err := h.svc.RecordShare(timeoutCtx, subject, videoID)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewShareResponse(result))
}

// AddComment 处理 POST /v1/videos/{id}/comments。
func (h *InteractionHandler) AddComment(ctx khttp.Context) error {
	subject, videoID, err := h.subjectAndVideo(ctx)
	if err != nil {
		return err
	}
	var req dto.CommentRequest
	if bindErr := ctx.Bind(&req); bindErr != nil {
		return errors.BadRequest(services.ReasonValidationFailed, bindErr.Error())
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, metadata.HandlerMetadata{UserID: subject})

	result, err := h.svc.AddComment(timeoutCtx, subject, videoID, req.Content)
	if err != nil {
		return err
	}
	return ctx.Result(201, views.NewCommentCreatedResponse(result))
}

// ListComments 处理 GET /v1/videos/{id}/comments。无需登录。
func (h *InteractionHandler) ListComments(ctx khttp.Context) error {
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, err.Error())
	}
	limit := dto.ParseLimit(ctx.Query())
	if limit <= 0 {
		limit = 50
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	comments, err := h.svc.ListComments(timeoutCtx, videoID, limit)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewCommentListResponse(comments))
}

// GetAnalytics 处理 GET /v1/videos/{id}/analytics。无需登录。
func (h *InteractionHandler) GetAnalytics(ctx khttp.Context) error {
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, err.Error())
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	view, err := h.svc.GetVideoAnalytics(timeoutCtx, videoID)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewAnalyticsResponse(view))
}

// GetUserInteractions 处理 GET /v1/videos/{id}/interactions。
func (h *InteractionHandler) GetUserInteractions(ctx khttp.Context) error {
	subject, videoID, err := h.subjectAndVideo(ctx)
	if err != nil {
		return err
	}
	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, metadata.HandlerMetadata{UserID: subject})

	items, err := h.svc.GetUserVideoInteractions(timeoutCtx, subject, videoID)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewInteractionListResponse(items))
}
