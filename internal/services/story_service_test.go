package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
)

func newStoryFixture(now time.Time) (*StoryService, *fakeStories) {
	stories := newFakeStories()
	follows := &fakeFollows{following: map[uint][]uint{1: {2, 3}}}
	users := newFakeUsers(
		models.User{ID: 1, Name: "me"},
		models.User{ID: 2, Name: "two"},
		models.User{ID: 3, Name: "three"},
		models.User{ID: 4, Name: "stranger"},
	)
	svc := NewStoryService(stories, follows, users, 24*time.Hour, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc, stories
}

func addStory(t *testing.T, svc *StoryService, owner uint, at time.Time) *models.Story {
	t.Helper()
	prev := svc.now
	svc.now = func() time.Time { return at }
	defer func() { svc.now = prev }()
	st, err := svc.Create(context.Background(), owner, models.CreateStoryRequest{MediaURL: "https://cdn/x.jpg", MediaType: "image"})
	require.NoError(t, err)
	return st
}

func TestCreateSetsExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc, _ := newStoryFixture(now)
	st := addStory(t, svc, 1, now)
	assert.Equal(t, now.Add(24*time.Hour), st.ExpiresAt)
}

func TestFeedGroupsByOwnerWithSeenFlags(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	svc, _ := newStoryFixture(now)

	s3 := addStory(t, svc, 3, now.Add(-3*time.Hour))
	s2a := addStory(t, svc, 2, now.Add(-2*time.Hour))
	addStory(t, svc, 1, now.Add(-90*time.Minute))
	addStory(t, svc, 2, now.Add(-time.Hour))
	addStory(t, svc, 4, now.Add(-time.Hour))

	require.NoError(t, svc.MarkSeen(ctx, s2a.ID.Hex(), 1))
	require.NoError(t, svc.MarkSeen(ctx, s2a.ID.Hex(), 1))
	require.NoError(t, svc.MarkSeen(ctx, s3.ID.Hex(), 1))

	feed, err := svc.Feed(ctx, 1)
	require.NoError(t, err)

	require.NotNil(t, feed.CurrentUserStory)
	assert.Equal(t, "me", feed.CurrentUserStory.User.Name)
	assert.Equal(t, 1, feed.CurrentUserStory.UnseenCount)

	require.Len(t, feed.Stories, 2)
	assert.Equal(t, "three", feed.Stories[0].User.Name)
	assert.Zero(t, feed.Stories[0].UnseenCount)

	two := feed.Stories[1]
	assert.Equal(t, "two", two.User.Name)
	require.Len(t, two.Stories, 2)
	assert.True(t, two.Stories[0].Seen)
	assert.False(t, two.Stories[1].Seen)
	assert.Equal(t, 1, two.UnseenCount)
}

func TestFeedEmpty(t *testing.T) {
	svc, _ := newStoryFixture(time.Now())
	feed, err := svc.Feed(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, feed.CurrentUserStory)
	assert.Empty(t, feed.Stories)
}

func TestMarkSeenUnknownStory(t *testing.T) {
	svc, _ := newStoryFixture(time.Now())
	err := svc.MarkSeen(context.Background(), "000000000000000000000000", 1)
	assert.Error(t, err)
}

func TestSweepRemovesExpiredStoriesAndViews(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	svc, stories := newStoryFixture(now)

	old := addStory(t, svc, 2, now.Add(-25*time.Hour))
	fresh := addStory(t, svc, 2, now.Add(-time.Hour))
	require.NoError(t, svc.MarkSeen(ctx, old.ID.Hex(), 1))
	require.NoError(t, svc.MarkSeen(ctx, fresh.ID.Hex(), 1))

	n, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, stories.rows, 1)
	assert.Equal(t, fresh.ID, stories.rows[0].ID)

	seen, err := svc.HasSeen(ctx, old.ID.Hex(), 1)
	require.NoError(t, err)
	assert.False(t, seen)
	seen, err = svc.HasSeen(ctx, fresh.ID.Hex(), 1)
	require.NoError(t, err)
	assert.True(t, seen)
}
