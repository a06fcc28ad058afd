package dto_test

import (
	"net/url"
	"testing"

	"github.com/bionicotaku/lingo-services-feed/internal/controllers/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseVideoID(t *testing.T) {
	want := uuid.New()
	got, err := dto.ParseVideoID(want.String())
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = dto.ParseVideoID("not-a-uuid")
	require.Error(t, err)
}

func TestParseLimit(t *testing.T) {
	require.EqualValues(t, 0, dto.ParseLimit(url.Values{}))
	require.EqualValues(t, 0, dto.ParseLimit(url.Values{"limit": {"abc"}}))
	require.EqualValues(t, 0, dto.ParseLimit(url.Values{"limit": {"-5"}}))
	require.EqualValues(t, 30, dto.ParseLimit(url.Values{"limit": {"30"}}))
}

func TestParseMetadata(t *testing.T) {
	meta, err := dto.ParseMetadata(`{"category":"travel","duration_hint":42}`)
	require.NoError(t, err)
	require.Equal(t, "travel", meta["category"])

	meta, err = dto.ParseMetadata("")
	require.NoError(t, err)
	require.Nil(t, meta)

	meta, err = dto.ParseMetadata("{}")
	require.NoError(t, err)
	require.Nil(t, meta)

	_, err = dto.ParseMetadata(`["not","an","object"]`)
	require.Error(t, err)

	_, err = dto.ParseMetadata("{broken")
	require.Error(t, err)
}

func TestOnboardRequestMapping(t *testing.T) {
	bio := "hello"
	req := &dto.OnboardRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Bio:       &bio,
		Interests: []string{"cooking"},
	}
	input := req.ToOnboardInput("user-1")
	require.Equal(t, "user-1", input.UserID)
	require.Equal(t, "alice", input.Username)
	require.Equal(t, &bio, input.Bio)
	require.Equal(t, []string{"cooking"}, input.Interests)
}

func TestViewRequestMapping(t *testing.T) {
	duration := int64(12)
	req := &dto.ViewRequest{ViewDuration: &duration}
	progress := req.ToViewProgress()
	require.Equal(t, &duration, progress.Duration)
	require.Nil(t, progress.WatchPercentage)
}
