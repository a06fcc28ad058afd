package controllers

import (
	"net/http"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/controllers/dto"
	"github.com/bionicotaku/lingo-services-feed/internal/metadata"
	"github.com/bionicotaku/lingo-services-feed/internal/services"
	"github.com/bionicotaku/lingo-services-feed/internal/views"

	"github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// VideoHandler 负责视频生命周期相关的 HTTP 请求。
type VideoHandler struct {
	*BaseHandler
	svc           *services.VideoService
	maxUploadSize int64
}

// NewVideoHandler 构造视频 Handler。
func NewVideoHandler(svc *services.VideoService, storage *conf.Storage, base *BaseHandler) *VideoHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	maxUpload := int64(conf.DefaultMaxUploadSize)
	if storage != nil && storage.MaxUploadSize > 0 {
		maxUpload = storage.MaxUploadSize
	}
	return &VideoHandler{BaseHandler: base, svc: svc, maxUploadSize: maxUpload}
}

// Register 挂载视频路由。
func (h *VideoHandler) Register(r *khttp.Router) {
	r.POST("/videos", h.Create)
	r.GET("/videos/{id}", h.Get)
	r.DELETE("/videos/{id}", h.Delete)
	r.GET("/videos", h.ListMine)
}

// Create 处理 POST /v1/videos（multipart/form-data：video 文件 + caption 文本）。
// 上传路径不走统一超时：大文件传输时长由请求体大小决定。
func (h *VideoHandler) Create(ctx khttp.Context) error {
	meta := h.ExtractMetadata(ctx.Request())
	subject, ok := meta.Subject()
	if !ok {
		return errors.Unauthorized(services.ReasonUnauthenticated, "missing user identity")
	}

	req := ctx.Request()
	req.Body = http.MaxBytesReader(ctx.Response(), req.Body, h.maxUploadSize)
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, "invalid multipart payload: "+err.Error())
	}
	file, header, err := req.FormFile("video")
	if err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, "video file is required")
	}
	defer file.Close()

	input := services.CreateVideoInput{
		UserID:      subject,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     file,
	}
	if caption := req.FormValue("caption"); caption != "" {
		input.Caption = &caption
	}
	extra, err := dto.ParseMetadata(req.FormValue("metadata"))
	if err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, err.Error())
	}
	input.Metadata = extra

	uploadCtx := metadata.Inject(ctx, meta)
	created, err := h.svc.CreateVideo(uploadCtx, input)
	if err != nil {
		return err
	}
	return ctx.Result(201, views.NewVideoCreatedResponse(created))
}

// Get 处理 GET /v1/videos/{id}。无需登录。
func (h *VideoHandler) Get(ctx khttp.Context) error {
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, err.Error())
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	detail, err := h.svc.GetVideo(timeoutCtx, videoID)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewVideoDetailResponse(detail))
}

// Delete 处理 DELETE /v1/videos/{id}。仅上传者可删。
func (h *VideoHandler) Delete(ctx khttp.Context) error {
	meta := h.ExtractMetadata(ctx.Request())
	subject, ok := meta.Subject()
	if !ok {
		return errors.Unauthorized(services.ReasonUnauthenticated, "missing user identity")
	}
	videoID, err := dto.ParseVideoID(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonValidationFailed, err.Error())
	}

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, meta)

	deleted, err := h.svc.DeleteVideo(timeoutCtx, subject, videoID)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewVideoDeletedResponse(deleted))
}

// ListMine 处理 GET /v1/videos。带 user_id 查询参数时返回该用户的视频，
// 否则返回当前登录用户的视频。
func (h *VideoHandler) ListMine(ctx khttp.Context) error {
	meta := h.ExtractMetadata(ctx.Request())
	target := ctx.Query().Get("user_id")
	if target == "" {
		subject, ok := meta.Subject()
		if !ok {
			return errors.Unauthorized(services.ReasonUnauthenticated, "missing user identity")
		}
		target = subject
	}
	limit := dto.ParseLimit(ctx.Query())

	timeoutCtx, cancel := h.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()
	timeoutCtx = metadata.Inject(timeoutCtx, meta)

	details, err := h.svc.ListUserVideos(timeoutCtx, target, limit)
	if err != nil {
		return err
	}
	return ctx.Result(200, views.NewVideoListResponse(details))
}
