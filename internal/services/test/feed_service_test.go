package services_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"
	"github.com/bionicotaku/lingo-services-feed/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// stubFeedVideos 以内存切片模拟候选集读取。
type stubFeedVideos struct {
	embedded []*po.Video
	recent   []*po.Video
}

func (s *stubFeedVideos) ListEmbedded(_ context.Context, _ txmanager.Session, exclude []uuid.UUID) ([]*po.Video, error) {
	skip := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	var out []*po.Video
	for _, v := range s.embedded {
		if _, ok := skip[v.VideoID]; ok {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *stubFeedVideos) ListRecent(_ context.Context, _ txmanager.Session, limit int32) ([]*po.Video, error) {
	if int(limit) < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

// stubFeedSignals 返回固定的兴趣信号与已看集合。
type stubFeedSignals struct {
	signals []repositories.InterestSignal
	watched []uuid.UUID
}

func (s *stubFeedSignals) ListInterestSignals(_ context.Context, _ txmanager.Session, _ string) ([]repositories.InterestSignal, error) {
	return s.signals, nil
}

func (s *stubFeedSignals) ListWatchedVideoIDs(_ context.Context, _ txmanager.Session, _ string) ([]uuid.UUID, error) {
	return s.watched, nil
}

// stubFeedProfiles 以内存映射模拟用户画像读取。
type stubFeedProfiles struct {
	users map[string]*po.User
}

func (s *stubFeedProfiles) GetByID(_ context.Context, _ txmanager.Session, userID string) (*po.User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (s *stubFeedProfiles) GetByIDs(_ context.Context, _ txmanager.Session, userIDs []string) (map[string]*po.User, error) {
	out := make(map[string]*po.User, len(userIDs))
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func newFeedService(videos *stubFeedVideos, signals *stubFeedSignals, profiles *stubFeedProfiles) *services.FeedService {
	rec := &conf.Recommend{DefaultFeedLimit: 20, MaxFeedLimit: 100, Strengths: conf.DefaultStrengths()}
	return services.NewFeedService(videos, signals, profiles, rec, log.NewStdLogger(io.Discard))
}

func embeddedVideo(author string, embedding []float32, age time.Duration) *po.Video {
	return &po.Video{
		VideoID:   uuid.New(),
		UserID:    author,
		VideoURL:  "https://storage.googleapis.com/bucket/" + uuid.NewString(),
		Embedding: embedding,
		CreatedAt: time.Now().Add(-age),
	}
}

func TestGetFeedRanksBySimilarity(t *testing.T) {
	aligned := embeddedVideo("author-1", []float32{0.9, 0.9}, time.Hour)
	orthogonal := embeddedVideo("author-1", []float32{1, 0}, time.Hour)
	opposite := embeddedVideo("author-1", []float32{-1, -1}, time.Hour)
	videos := &stubFeedVideos{embedded: []*po.Video{opposite, orthogonal, aligned}}
	signals := &stubFeedSignals{signals: []repositories.InterestSignal{
		{Strength: 1, Embedding: []float32{1, 1}},
	}}
	profiles := &stubFeedProfiles{users: map[string]*po.User{
		"viewer":   {UserID: "viewer", Username: "viewer"},
		"author-1": {UserID: "author-1", Username: "alice"},
	}}
	svc := newFeedService(videos, signals, profiles)

	items, err := svc.GetFeed(context.Background(), "viewer", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].VideoID != aligned.VideoID {
		t.Fatal("expected most similar video first")
	}
	if items[2].VideoID != opposite.VideoID {
		t.Fatal("expected least similar video last")
	}
	if items[0].Similarity == nil {
		t.Fatal("ranked items must carry a similarity score")
	}
	if items[0].Username != "alice" {
		t.Fatalf("expected author attached, got %q", items[0].Username)
	}
}

func TestGetFeedExcludesWatched(t *testing.T) {
	watchedVideo := embeddedVideo("author-1", []float32{1, 1}, time.Hour)
	fresh := embeddedVideo("author-1", []float32{1, 1}, 2*time.Hour)
	videos := &stubFeedVideos{embedded: []*po.Video{watchedVideo, fresh}}
	signals := &stubFeedSignals{
		signals: []repositories.InterestSignal{{Strength: 1, Embedding: []float32{1, 1}}},
		watched: []uuid.UUID{watchedVideo.VideoID},
	}
	svc := newFeedService(videos, signals, &stubFeedProfiles{users: map[string]*po.User{}})

	items, err := svc.GetFeed(context.Background(), "viewer", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].VideoID != fresh.VideoID {
		t.Fatal("watched video must not reappear in the feed")
	}
}

func TestGetFeedBackfillsWithRecent(t *testing.T) {
	ranked := embeddedVideo("author-1", []float32{1, 1}, time.Hour)
	plain := embeddedVideo("author-2", nil, 30*time.Minute)
	videos := &stubFeedVideos{
		embedded: []*po.Video{ranked},
		// 兜底列表含已出现的条目，补齐必须去重。
		recent: []*po.Video{plain, ranked},
	}
	signals := &stubFeedSignals{signals: []repositories.InterestSignal{
		{Strength: 1, Embedding: []float32{1, 1}},
	}}
	svc := newFeedService(videos, signals, &stubFeedProfiles{users: map[string]*po.User{}})

	items, err := svc.GetFeed(context.Background(), "viewer", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].VideoID != ranked.VideoID || items[0].Similarity == nil {
		t.Fatal("ranked item must come first with a similarity score")
	}
	if items[1].VideoID != plain.VideoID {
		t.Fatal("backfill must append the unseen recent video")
	}
	if items[1].Similarity != nil {
		t.Fatal("backfilled items must not carry a similarity score")
	}
}

func TestGetFeedAnonymousFallsBackToRecent(t *testing.T) {
	newer := embeddedVideo("author-1", []float32{1, 0}, time.Minute)
	older := embeddedVideo("author-1", []float32{0, 1}, time.Hour)
	videos := &stubFeedVideos{recent: []*po.Video{newer, older}}
	svc := newFeedService(videos, &stubFeedSignals{}, &stubFeedProfiles{users: map[string]*po.User{}})

	items, err := svc.GetFeed(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].VideoID != newer.VideoID {
		t.Fatal("anonymous feed must preserve recency order")
	}
	for _, item := range items {
		if item.Similarity != nil {
			t.Fatal("recency feed must not carry similarity scores")
		}
	}
}

func TestGetFeedFallsBackToProfileEmbedding(t *testing.T) {
	aligned := embeddedVideo("author-1", []float32{0, 1}, time.Hour)
	misaligned := embeddedVideo("author-1", []float32{1, 0}, time.Hour)
	videos := &stubFeedVideos{embedded: []*po.Video{misaligned, aligned}}
	profiles := &stubFeedProfiles{users: map[string]*po.User{
		"viewer": {UserID: "viewer", Embedding: []float32{0, 1}},
	}}
	// 无任何交互信号：兴趣向量退化到注册画像。
	svc := newFeedService(videos, &stubFeedSignals{}, profiles)

	items, err := svc.GetFeed(context.Background(), "viewer", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].VideoID != aligned.VideoID {
		t.Fatal("profile embedding should drive ranking when no interactions exist")
	}
}

func TestGetFeedNoSignalFallsBackToRecent(t *testing.T) {
	v := embeddedVideo("author-1", []float32{1, 0}, time.Hour)
	videos := &stubFeedVideos{recent: []*po.Video{v}}
	// 用户未注册且无交互：按时间倒序兜底。
	svc := newFeedService(videos, &stubFeedSignals{}, &stubFeedProfiles{users: map[string]*po.User{}})

	items, err := svc.GetFeed(context.Background(), "viewer", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Similarity != nil {
		t.Fatal("recency fallback must not carry similarity scores")
	}
}

func TestGetFeedClampsLimit(t *testing.T) {
	recent := make([]*po.Video, 0, 120)
	for i := 0; i < 120; i++ {
		recent = append(recent, &po.Video{
			VideoID:   uuid.New(),
			UserID:    "author-1",
			VideoURL:  fmt.Sprintf("https://example.com/v/%d", i),
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		})
	}
	videos := &stubFeedVideos{recent: recent}
	svc := newFeedService(videos, &stubFeedSignals{}, &stubFeedProfiles{users: map[string]*po.User{}})

	items, err := svc.GetFeed(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 20 {
		t.Fatalf("limit 0 should clamp to the default of 20, got %d", len(items))
	}

	items, err = svc.GetFeed(context.Background(), "", 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 100 {
		t.Fatalf("oversized limit should clamp to 100, got %d", len(items))
	}
}
