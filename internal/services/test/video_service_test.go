package services_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"
	"github.com/bionicotaku/lingo-services-feed/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// stubVideoRepo 以内存映射模拟视频表。
type stubVideoRepo struct {
	videos    map[uuid.UUID]*po.Video
	createErr error
}

func newStubVideoRepo() *stubVideoRepo {
	return &stubVideoRepo{videos: map[uuid.UUID]*po.Video{}}
}

func (s *stubVideoRepo) Create(_ context.Context, _ txmanager.Session, video *po.Video) (*po.Video, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	copied := *video
	s.videos[video.VideoID] = &copied
	return &copied, nil
}

func (s *stubVideoRepo) UpdateEnrichment(_ context.Context, _ txmanager.Session, videoID uuid.UUID, enr repositories.Enrichment) (*po.Video, error) {
	v, ok := s.videos[videoID]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	if enr.Transcription != nil {
		v.Transcription = enr.Transcription
	}
	if enr.Summary != nil {
		v.Summary = enr.Summary
	}
	if enr.Tags != nil {
		v.Tags = enr.Tags
	}
	if enr.Embedding != nil {
		v.Embedding = enr.Embedding
	}
	return v, nil
}

func (s *stubVideoRepo) GetByID(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	if v, ok := s.videos[videoID]; ok {
		return v, nil
	}
	return nil, repositories.ErrVideoNotFound
}

func (s *stubVideoRepo) ListByUser(_ context.Context, _ txmanager.Session, userID string, _ int32) ([]*po.Video, error) {
	var out []*po.Video
	for _, v := range s.videos {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVideoRepo) Delete(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	v, ok := s.videos[videoID]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	delete(s.videos, videoID)
	return v, nil
}

// stubCascade 记录级联删除调用。
type stubCascade struct {
	calls []uuid.UUID
}

func (s *stubCascade) DeleteByVideo(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (int64, error) {
	s.calls = append(s.calls, videoID)
	return 1, nil
}

// stubAnalyticsCascade 记录聚合行清理调用。
type stubAnalyticsCascade struct {
	calls []uuid.UUID
}

func (s *stubAnalyticsCascade) DeleteByVideo(_ context.Context, _ txmanager.Session, videoID uuid.UUID) error {
	s.calls = append(s.calls, videoID)
	return nil
}

// stubBlobStore 以内存映射模拟对象存储。
type stubBlobStore struct {
	objects  map[string]string // objectName -> contentType
	removed  []string
	storeErr error
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{objects: map[string]string{}}
}

func (s *stubBlobStore) Store(_ context.Context, objectName, contentType string, content io.Reader) (string, error) {
	if s.storeErr != nil {
		return "", s.storeErr
	}
	if _, err := io.Copy(io.Discard, content); err != nil {
		return "", err
	}
	s.objects[objectName] = contentType
	return "https://storage.googleapis.com/test-bucket/" + objectName, nil
}

func (s *stubBlobStore) Remove(_ context.Context, videoURL string) error {
	s.removed = append(s.removed, videoURL)
	return nil
}

// stubAnalyzer 返回固定的媒体分析结果，可配置为失败。
type stubAnalyzer struct {
	insights *services.MediaInsights
	err      error
}

func (s *stubAnalyzer) AnalyzeVideo(_ context.Context, _, _ string) (*services.MediaInsights, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.insights, nil
}

type videoFixture struct {
	repo         *stubVideoRepo
	interactions *stubCascade
	comments     *stubCascade
	analytics    *stubAnalyticsCascade
	blobs        *stubBlobStore
	analyzer     *stubAnalyzer
	embedder     *stubEmbedder
	svc          *services.VideoService
}

func newVideoFixture(analyzer *stubAnalyzer, embedder *stubEmbedder) *videoFixture {
	f := &videoFixture{
		repo:         newStubVideoRepo(),
		interactions: &stubCascade{},
		comments:     &stubCascade{},
		analytics:    &stubAnalyticsCascade{},
		blobs:        newStubBlobStore(),
		analyzer:     analyzer,
		embedder:     embedder,
	}
	f.svc = services.NewVideoService(services.VideoServiceDeps{
		Videos:       f.repo,
		Interactions: f.interactions,
		Comments:     f.comments,
		Analytics:    f.analytics,
		Authors:      newStubUserRepo(),
		Blobs:        f.blobs,
		Analyzer:     f.analyzer,
		Embedder:     f.embedder,
		TxManager:    noopTxManager{},
		AI:           &conf.AI{EmbeddingDimensions: 2},
		Logger:       log.NewStdLogger(io.Discard),
	})
	return f
}

func uploadInput(caption string) services.CreateVideoInput {
	content := "fake video bytes"
	var captionPtr *string
	if caption != "" {
		captionPtr = &caption
	}
	return services.CreateVideoInput{
		UserID:      "uploader-1",
		Caption:     captionPtr,
		Filename:    "clip.mp4",
		ContentType: "video/mp4",
		Size:        int64(len(content)),
		Content:     strings.NewReader(content),
	}
}

func TestCreateVideoRejectsNonVideoContent(t *testing.T) {
	f := newVideoFixture(&stubAnalyzer{insights: &services.MediaInsights{}}, &stubEmbedder{})

	input := uploadInput("hello")
	input.ContentType = "image/png"
	_, err := f.svc.CreateVideo(context.Background(), input)
	if kerrors.Reason(err) != services.ReasonValidationFailed {
		t.Fatalf("unexpected reason: %s", kerrors.Reason(err))
	}
	if len(f.blobs.objects) != 0 {
		t.Fatal("rejected upload must not touch the blob store")
	}
}

func TestCreateVideoStoresBlobAndEnriches(t *testing.T) {
	analyzer := &stubAnalyzer{insights: &services.MediaInsights{
		Transcription: "hello world",
		Summary:       "a greeting",
		Tags:          []string{"greeting", "demo"},
	}}
	embedder := &stubEmbedder{vector: []float32{0.3, 0.7}}
	f := newVideoFixture(analyzer, embedder)

	created, err := f.svc.CreateVideo(context.Background(), uploadInput("hi there"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created.Enriched {
		t.Fatal("all enrichment steps succeeded, expected enriched=true")
	}
	if len(f.blobs.objects) != 1 {
		t.Fatalf("expected 1 stored object, got %d", len(f.blobs.objects))
	}
	stored := f.repo.videos[created.VideoID]
	if stored == nil {
		t.Fatal("video record missing")
	}
	if stored.Transcription == nil || *stored.Transcription != "hello world" {
		t.Fatalf("transcription not persisted: %v", stored.Transcription)
	}
	if len(stored.Embedding) != 2 {
		t.Fatalf("embedding not persisted: %v", stored.Embedding)
	}
	if len(stored.Tags) != 2 {
		t.Fatalf("tags not persisted: %v", stored.Tags)
	}
}

func TestCreateVideoPersistsMetadata(t *testing.T) {
	f := newVideoFixture(&stubAnalyzer{insights: &services.MediaInsights{}}, &stubEmbedder{vector: []float32{0.3, 0.7}})

	input := uploadInput("with extras")
	input.Metadata = map[string]any{"category": "travel", "location": "Lisbon"}
	created, err := f.svc.CreateVideo(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := f.repo.videos[created.VideoID]
	if stored == nil {
		t.Fatal("video record missing")
	}
	if stored.Metadata["category"] != "travel" || stored.Metadata["location"] != "Lisbon" {
		t.Fatalf("metadata not persisted: %v", stored.Metadata)
	}
}

func TestCreateVideoSurvivesAnalyzerFailure(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("model unavailable")}
	embedder := &stubEmbedder{vector: []float32{0.3, 0.7}}
	f := newVideoFixture(analyzer, embedder)

	created, err := f.svc.CreateVideo(context.Background(), uploadInput("still works"))
	if err != nil {
		t.Fatalf("analyzer failure must not block upload: %v", err)
	}
	if created.Enriched {
		t.Fatal("partial enrichment must report enriched=false")
	}
	stored := f.repo.videos[created.VideoID]
	if stored.Transcription != nil || stored.Summary != nil {
		t.Fatal("failed analysis fields must stay unset")
	}
	// 说明文字仍可向量化，视频保持可推荐。
	if len(stored.Embedding) != 2 {
		t.Fatalf("caption embedding expected despite analyzer failure: %v", stored.Embedding)
	}
}

func TestCreateVideoDiscardsMismatchedEmbedding(t *testing.T) {
	analyzer := &stubAnalyzer{insights: &services.MediaInsights{Summary: "short"}}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2, 0.3}} // 期望 2 维
	f := newVideoFixture(analyzer, embedder)

	created, err := f.svc.CreateVideo(context.Background(), uploadInput("caption"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := f.repo.videos[created.VideoID]
	if stored.Embedding != nil {
		t.Fatalf("mismatched embedding must be discarded, got %v", stored.Embedding)
	}
	if stored.Summary == nil || *stored.Summary != "short" {
		t.Fatal("other enrichment fields must still be persisted")
	}
}

func TestCreateVideoCleansUpOrphanBlob(t *testing.T) {
	f := newVideoFixture(&stubAnalyzer{insights: &services.MediaInsights{}}, &stubEmbedder{})
	f.repo.createErr = errors.New("db down")

	_, err := f.svc.CreateVideo(context.Background(), uploadInput("caption"))
	if err == nil {
		t.Fatal("expected error")
	}
	if kerrors.Reason(err) != services.ReasonPersistenceFailed {
		t.Fatalf("unexpected reason: %s", kerrors.Reason(err))
	}
	if len(f.blobs.removed) != 1 {
		t.Fatalf("orphan blob must be removed, got %d removals", len(f.blobs.removed))
	}
}

func TestDeleteVideoRequiresOwnership(t *testing.T) {
	f := newVideoFixture(&stubAnalyzer{insights: &services.MediaInsights{}}, &stubEmbedder{})
	videoID := uuid.New()
	f.repo.videos[videoID] = &po.Video{VideoID: videoID, UserID: "owner"}

	_, err := f.svc.DeleteVideo(context.Background(), "stranger", videoID)
	if err == nil {
		t.Fatal("expected error")
	}
	if kerrors.Reason(err) != services.ReasonPermissionDenied {
		t.Fatalf("unexpected reason: %s", kerrors.Reason(err))
	}
	if _, ok := f.repo.videos[videoID]; !ok {
		t.Fatal("video must survive a denied delete")
	}
}

func TestDeleteVideoCascades(t *testing.T) {
	f := newVideoFixture(&stubAnalyzer{insights: &services.MediaInsights{}}, &stubEmbedder{})
	videoID := uuid.New()
	f.repo.videos[videoID] = &po.Video{
		VideoID:  videoID,
		UserID:   "owner",
		VideoURL: "https://storage.googleapis.com/test-bucket/owner/clip",
	}

	deleted, err := f.svc.DeleteVideo(context.Background(), "owner", videoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted.VideoID != videoID {
		t.Fatalf("unexpected video id: %s", deleted.VideoID)
	}
	if _, ok := f.repo.videos[videoID]; ok {
		t.Fatal("video row must be deleted")
	}
	if len(f.interactions.calls) != 1 || len(f.comments.calls) != 1 || len(f.analytics.calls) != 1 {
		t.Fatalf("all cascades must run exactly once: interactions=%d comments=%d analytics=%d",
			len(f.interactions.calls), len(f.comments.calls), len(f.analytics.calls))
	}
	if len(f.blobs.removed) != 1 {
		t.Fatalf("blob must be removed after commit, got %d removals", len(f.blobs.removed))
	}
}

func TestDeleteVideoNotFound(t *testing.T) {
	f := newVideoFixture(&stubAnalyzer{insights: &services.MediaInsights{}}, &stubEmbedder{})

	_, err := f.svc.DeleteVideo(context.Background(), "owner", uuid.New())
	if kerrors.Reason(err) != services.ReasonVideoNotFound {
		t.Fatalf("unexpected reason: %s", kerrors.Reason(err))
	}
}
