package services_test

import (
	"context"
	"io"
	"testing"

	"github.com/bionicotaku/lingo-services-feed/internal/conf"
	"github.com/bionicotaku/lingo-services-feed/internal/models/po"
	"github.com/bionicotaku/lingo-services-feed/internal/repositories"
	"github.com/bionicotaku/lingo-services-feed/internal/services"

	"github.com/bionicotaku/lingo-utils/txmanager"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type noopTxManager struct{}

type noopSession struct{}

func (noopSession) Tx() pgx.Tx               { return nil }
func (noopSession) Context() context.Context { return context.Background() }

func (noopTxManager) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

func (noopTxManager) WithinReadOnlyTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

// stubLedger 以内存切片模拟交互台账。
type stubLedger struct {
	items []*po.Interaction
}

func (s *stubLedger) Insert(_ context.Context, _ txmanager.Session, it *po.Interaction) (*po.Interaction, error) {
	copied := *it
	s.items = append(s.items, &copied)
	return &copied, nil
}

func (s *stubLedger) Find(_ context.Context, _ txmanager.Session, userID string, videoID uuid.UUID, typ po.InteractionType) (*po.Interaction, error) {
	for _, it := range s.items {
		if it.UserID == userID && it.VideoID == videoID && it.InteractionType == typ {
			return it, nil
		}
	}
	return nil, repositories.ErrInteractionNotFound
}

func (s *stubLedger) Delete(_ context.Context, _ txmanager.Session, interactionID uuid.UUID) error {
	for i, it := range s.items {
		if it.InteractionID == interactionID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrInteractionNotFound
}

func (s *stubLedger) UpdateViewProgress(_ context.Context, _ txmanager.Session, userID string, videoID uuid.UUID, duration, percentage *int64) (*po.Interaction, error) {
	for _, it := range s.items {
		if it.UserID == userID && it.VideoID == videoID && it.InteractionType == po.InteractionView {
			if duration != nil {
				it.ViewDuration = duration
			}
			if percentage != nil {
				it.WatchPercentage = percentage
			}
			return it, nil
		}
	}
	return nil, repositories.ErrInteractionNotFound
}

func (s *stubLedger) ListByUserAndVideo(_ context.Context, _ txmanager.Session, userID string, videoID uuid.UUID) ([]*po.Interaction, error) {
	var out []*po.Interaction
	for _, it := range s.items {
		if it.UserID == userID && it.VideoID == videoID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *stubLedger) count(typ po.InteractionType) int {
	n := 0
	for _, it := range s.items {
		if it.InteractionType == typ {
			n++
		}
	}
	return n
}

// stubCounter 以内存映射模拟聚合计数表。
type stubCounter struct {
	stats map[uuid.UUID]*po.VideoAnalytics
}

func newStubCounter() *stubCounter {
	return &stubCounter{stats: map[uuid.UUID]*po.VideoAnalytics{}}
}

func (s *stubCounter) Increment(_ context.Context, _ txmanager.Session, videoID uuid.UUID, delta repositories.StatsDelta) (*po.VideoAnalytics, error) {
	row, ok := s.stats[videoID]
	if !ok {
		row = &po.VideoAnalytics{VideoID: videoID}
		s.stats[videoID] = row
	}
	row.TotalViews = max64(row.TotalViews+delta.ViewDelta, 0)
	row.TotalLikes = max64(row.TotalLikes+delta.LikeDelta, 0)
	row.TotalComments = max64(row.TotalComments+delta.CommentDelta, 0)
	row.TotalShares = max64(row.TotalShares+delta.ShareDelta, 0)
	row.TotalBookmarks = max64(row.TotalBookmarks+delta.BookmarkDelta, 0)
	return row, nil
}

func (s *stubCounter) Get(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.VideoAnalytics, error) {
	if row, ok := s.stats[videoID]; ok {
		return row, nil
	}
	return &po.VideoAnalytics{VideoID: videoID}, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// stubComments 以内存切片模拟评论表。
type stubComments struct {
	comments []*po.Comment
}

func (s *stubComments) Insert(_ context.Context, _ txmanager.Session, c *po.Comment) (*po.Comment, error) {
	copied := *c
	s.comments = append(s.comments, &copied)
	return &copied, nil
}

func (s *stubComments) ListByVideo(_ context.Context, _ txmanager.Session, videoID uuid.UUID, _ int32) ([]*po.Comment, error) {
	var out []*po.Comment
	for _, c := range s.comments {
		if c.VideoID == videoID {
			out = append(out, c)
		}
	}
	return out, nil
}

// stubVideoLookup 模拟视频存在性校验。
type stubVideoLookup struct {
	videos map[uuid.UUID]*po.Video
}

func (s *stubVideoLookup) GetByID(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	if v, ok := s.videos[videoID]; ok {
		return v, nil
	}
	return nil, repositories.ErrVideoNotFound
}

func newInteractionService(ledger *stubLedger, counter *stubCounter, comments *stubComments, lookup *stubVideoLookup) *services.InteractionService {
	rec := &conf.Recommend{Strengths: conf.DefaultStrengths()}
	logger := log.NewStdLogger(io.Discard)
	return services.NewInteractionService(ledger, counter, comments, lookup, noopTxManager{}, rec, logger)
}

func knownVideo() (*stubVideoLookup, uuid.UUID) {
	videoID := uuid.New()
	return &stubVideoLookup{videos: map[uuid.UUID]*po.Video{
		videoID: {VideoID: videoID, UserID: "author-1"},
	}}, videoID
}

func TestRecordViewIsIdempotent(t *testing.T) {
	ledger := &stubLedger{}
	counter := newStubCounter()
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, counter, &stubComments{}, lookup)

	first, err := svc.RecordView(context.Background(), "user-1", videoID, services.ViewProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Recorded {
		t.Fatal("first view should be recorded")
	}

	second, err := svc.RecordView(context.Background(), "user-1", videoID, services.ViewProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Recorded {
		t.Fatal("second view should be a no-op")
	}
	if got := ledger.count(po.InteractionView); got != 1 {
		t.Fatalf("expected 1 view row, got %d", got)
	}
	if counter.stats[videoID].TotalViews != 1 {
		t.Fatalf("expected total_views=1, got %d", counter.stats[videoID].TotalViews)
	}
}

func TestRecordViewAnonymousIsNeutral(t *testing.T) {
	ledger := &stubLedger{}
	counter := newStubCounter()
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, counter, &stubComments{}, lookup)

	result, err := svc.RecordView(context.Background(), "", videoID, services.ViewProgress{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Recorded {
		t.Fatal("anonymous view must not be recorded")
	}
	if len(ledger.items) != 0 {
		t.Fatalf("expected no ledger rows, got %d", len(ledger.items))
	}
	if _, ok := counter.stats[videoID]; ok {
		t.Fatal("anonymous view must not touch counters")
	}
}

func TestRecordViewUnknownVideo(t *testing.T) {
	svc := newInteractionService(&stubLedger{}, newStubCounter(), &stubComments{}, &stubVideoLookup{videos: map[uuid.UUID]*po.Video{}})

	_, err := svc.RecordView(context.Background(), "user-1", uuid.New(), services.ViewProgress{})
	if err == nil {
		t.Fatal("expected error")
	}
	if kerrors.Reason(err) != services.ReasonVideoNotFound {
		t.Fatalf("unexpected reason: %s", kerrors.Reason(err))
	}
}

func TestToggleLikeIsInvolution(t *testing.T) {
	ledger := &stubLedger{}
	counter := newStubCounter()
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, counter, &stubComments{}, lookup)

	on, err := svc.ToggleLike(context.Background(), "user-1", videoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !on.Liked || on.TotalLikes != 1 {
		t.Fatalf("expected liked with total 1, got %+v", on)
	}

	off, err := svc.ToggleLike(context.Background(), "user-1", videoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off.Liked || off.TotalLikes != 0 {
		t.Fatalf("expected unliked with total 0, got %+v", off)
	}
	if got := ledger.count(po.InteractionLike); got != 0 {
		t.Fatalf("expected no like rows after double toggle, got %d", got)
	}
}

func TestToggleBookmarkUpdatesCounter(t *testing.T) {
	ledger := &stubLedger{}
	counter := newStubCounter()
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, counter, &stubComments{}, lookup)

	on, err := svc.ToggleBookmark(context.Background(), "user-1", videoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !on.Bookmarked || on.TotalBookmarks != 1 {
		t.Fatalf("expected bookmarked with total 1, got %+v", on)
	}

	off, err := svc.ToggleBookmark(context.Background(), "user-1", videoID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if off.Bookmarked || off.TotalBookmarks != 0 {
		t.Fatalf("expected unbookmarked with total 0, got %+v", off)
	}
}

func TestRecordShareAccumulates(t *testing.T) {
	ledger := &stubLedger{}
	counter := newStubCounter()
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, counter, &stubComments{}, lookup)

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordShare(context.Background(), "user-1", videoID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := ledger.count(po.InteractionShare); got != 3 {
		t.Fatalf("expected 3 share rows, got %d", got)
	}
	if counter.stats[videoID].TotalShares != 3 {
		t.Fatalf("expected total_shares=3, got %d", counter.stats[videoID].TotalShares)
	}
}

func TestAddCommentWritesLedgerAndCounter(t *testing.T) {
	ledger := &stubLedger{}
	counter := newStubCounter()
	comments := &stubComments{}
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, counter, comments, lookup)

	created, err := svc.AddComment(context.Background(), "user-1", videoID, "nice video")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.CommentID == uuid.Nil {
		t.Fatal("expected comment id")
	}
	if len(comments.comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments.comments))
	}
	if got := ledger.count(po.InteractionComment); got != 1 {
		t.Fatalf("expected 1 comment ledger row, got %d", got)
	}
	if counter.stats[videoID].TotalComments != 1 {
		t.Fatalf("expected total_comments=1, got %d", counter.stats[videoID].TotalComments)
	}
}

func TestAddCommentRejectsBlankContent(t *testing.T) {
	ledger := &stubLedger{}
	counter := newStubCounter()
	comments := &stubComments{}
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, counter, comments, lookup)

	_, err := svc.AddComment(context.Background(), "user-1", videoID, "   ")
	if err == nil {
		t.Fatal("expected error")
	}
	if kerrors.Reason(err) != services.ReasonValidationFailed {
		t.Fatalf("unexpected reason: %s", kerrors.Reason(err))
	}
	if len(comments.comments) != 0 || len(ledger.items) != 0 {
		t.Fatal("blank comment must not produce any writes")
	}
}

func TestUpdateViewProgressRequiresExistingView(t *testing.T) {
	ledger := &stubLedger{}
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, newStubCounter(), &stubComments{}, lookup)

	duration := int64(30)
	_, err := svc.UpdateViewProgress(context.Background(), "user-1", videoID, services.ViewProgress{Duration: &duration})
	if err == nil {
		t.Fatal("expected error")
	}
	if kerrors.Reason(err) != services.ReasonViewNotFound {
		t.Fatalf("unexpected reason: %s", kerrors.Reason(err))
	}
}

func TestUpdateViewProgressRefreshesDuration(t *testing.T) {
	ledger := &stubLedger{}
	counter := newStubCounter()
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, counter, &stubComments{}, lookup)

	if _, err := svc.RecordView(context.Background(), "user-1", videoID, services.ViewProgress{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	duration := int64(42)
	if _, err := svc.UpdateViewProgress(context.Background(), "user-1", videoID, services.ViewProgress{Duration: &duration}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if ledger.items[0].ViewDuration == nil || *ledger.items[0].ViewDuration != 42 {
		t.Fatalf("expected duration 42, got %v", ledger.items[0].ViewDuration)
	}
	// 进度刷新不重复计数
	if counter.stats[videoID].TotalViews != 1 {
		t.Fatalf("expected total_views=1, got %d", counter.stats[videoID].TotalViews)
	}
}

func TestViewProgressValidation(t *testing.T) {
	ledger := &stubLedger{}
	lookup, videoID := knownVideo()
	svc := newInteractionService(ledger, newStubCounter(), &stubComments{}, lookup)

	bad := int64(-1)
	if _, err := svc.RecordView(context.Background(), "user-1", videoID, services.ViewProgress{Duration: &bad}); err == nil {
		t.Fatal("expected error for negative duration")
	}
	over := int64(120)
	if _, err := svc.RecordView(context.Background(), "user-1", videoID, services.ViewProgress{WatchPercentage: &over}); err == nil {
		t.Fatal("expected error for percentage above 100")
	}
}
