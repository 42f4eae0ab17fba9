package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

type fakePosts struct {
	rows []models.Post
}

func (f *fakePosts) CreatePost(_ context.Context, p *models.Post) error {
	p.ID = primitive.NewObjectID()
	f.rows = append([]models.Post{*p}, f.rows...)
	return nil
}

func (f *fakePosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	for _, p := range f.rows {
		if p.ID.Hex() == id {
			return &p, nil
		}
	}
	return nil, apperrors.NotFound("post")
}

func (f *fakePosts) GetPostsByUserID(_ context.Context, userID uint, _, _ int64) ([]models.Post, error) {
	out := []models.Post{}
	for _, p := range f.rows {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePosts) GetAllPosts(context.Context, int64, int64) ([]models.Post, error) {
	return append([]models.Post(nil), f.rows...), nil
}

func (f *fakePosts) CountPosts(context.Context) (int64, error) { return int64(len(f.rows)), nil }

func (f *fakePosts) GetPostsByIDs(ctx context.Context, ids []string) ([]models.Post, error) {
	out := []models.Post{}
	for _, id := range ids {
		if p, err := f.GetPostByID(ctx, id); err == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePosts) UpdatePost(_ context.Context, p *models.Post) error {
	for i := range f.rows {
		if f.rows[i].ID == p.ID {
			f.rows[i] = *p
			return nil
		}
	}
	return apperrors.NotFound("post")
}

func (f *fakePosts) DeletePost(_ context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].ID.Hex() == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("post")
}

type likeKey struct {
	post string
	user uint
}

type fakeLikes struct {
	rows map[likeKey]models.Like
}

func (f *fakeLikes) CreateLike(_ context.Context, l *models.Like) (bool, error) {
	k := likeKey{l.PostID, l.UserID}
	if _, ok := f.rows[k]; ok {
		return false, nil
	}
	l.ID = uint(len(f.rows) + 1)
	f.rows[k] = *l
	return true, nil
}

func (f *fakeLikes) DeleteLike(_ context.Context, postID string, userID uint) error {
	delete(f.rows, likeKey{postID, userID})
	return nil
}

func (f *fakeLikes) DeleteLikesByPostID(_ context.Context, postID string) error {
	for k := range f.rows {
		if k.post == postID {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakeLikes) GetLikesByPostID(_ context.Context, postID string) ([]models.Like, error) {
	out := []models.Like{}
	for k, l := range f.rows {
		if k.post == postID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLikes) GetLikesCountByPostID(ctx context.Context, postID string) (int64, error) {
	likes, _ := f.GetLikesByPostID(ctx, postID)
	return int64(len(likes)), nil
}

func (f *fakeLikes) CountByPostIDs(_ context.Context, ids []string) (map[string]int64, error) {
	out := map[string]int64{}
	for k := range f.rows {
		out[k.post]++
	}
	return out, nil
}

func (f *fakeLikes) LikedPostIDs(_ context.Context, userID uint, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := f.rows[likeKey{id, userID}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeLikes) HasUserLikedPost(_ context.Context, postID string, userID uint) (bool, error) {
	_, ok := f.rows[likeKey{postID, userID}]
	return ok, nil
}

type fakeComments struct {
	rows []models.Comment
}

func (f *fakeComments) CreateComment(_ context.Context, c *models.Comment) error {
	c.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, *c)
	return nil
}

func (f *fakeComments) GetCommentByID(_ context.Context, id uint) (*models.Comment, error) {
	for _, c := range f.rows {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apperrors.NotFound("comment")
}

func (f *fakeComments) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	out := []models.Comment{}
	for _, c := range f.rows {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) CountByPostIDs(_ context.Context, _ []string) (map[string]int64, error) {
	out := map[string]int64{}
	for _, c := range f.rows {
		out[c.PostID]++
	}
	return out, nil
}

func (f *fakeComments) UpdateComment(_ context.Context, c *models.Comment) error {
	for i := range f.rows {
		if f.rows[i].ID == c.ID {
			f.rows[i] = *c
		}
	}
	return nil
}

func (f *fakeComments) DeleteComment(_ context.Context, c *models.Comment) error {
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.ID != c.ID {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

func (f *fakeComments) DeleteCommentsByPostID(_ context.Context, postID string) error {
	kept := f.rows[:0]
	for _, row := range f.rows {
		if row.PostID != postID {
			kept = append(kept, row)
		}
	}
	f.rows = kept
	return nil
}

type fakeSaved struct {
	rows map[likeKey]struct{}
}

func (f *fakeSaved) SavePost(_ context.Context, s *models.SavedPost) error {
	f.rows[likeKey{s.PostID, s.UserID}] = struct{}{}
	return nil
}

func (f *fakeSaved) UnsavePost(_ context.Context, userID uint, postID string) error {
	k := likeKey{postID, userID}
	if _, ok := f.rows[k]; !ok {
		return apperrors.NotFound("saved post")
	}
	delete(f.rows, k)
	return nil
}

func (f *fakeSaved) DeleteByPostID(_ context.Context, postID string) error {
	for k := range f.rows {
		if k.post == postID {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakeSaved) IsPostSaved(_ context.Context, userID uint, postID string) (bool, error) {
	_, ok := f.rows[likeKey{postID, userID}]
	return ok, nil
}

func (f *fakeSaved) GetSavedPostsByUser(_ context.Context, userID uint) ([]models.SavedPost, error) {
	out := []models.SavedPost{}
	for k := range f.rows {
		if k.user == userID {
			out = append(out, models.SavedPost{UserID: userID, PostID: k.post})
		}
	}
	return out, nil
}

func (f *fakeSaved) GetSavedPostIDs(_ context.Context, userID uint, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := f.rows[likeKey{id, userID}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type postFixture struct {
	svc      *PostService
	likes    *fakeLikes
	comments *fakeComments
	saved    *fakeSaved
	notifs   *fakeNotifications
	post     *models.Post
}

func newPostFixture(t *testing.T) postFixture {
	t.Helper()
	users := newFakeUsers(models.User{ID: 1, Name: "author"}, models.User{ID: 2, Name: "fan"}, models.User{ID: 3, Name: "other"})
	notifs := newFakeNotifications()
	f := postFixture{
		likes:    &fakeLikes{rows: map[likeKey]models.Like{}},
		comments: &fakeComments{},
		saved:    &fakeSaved{rows: map[likeKey]struct{}{}},
		notifs:   notifs,
	}
	notifier := NewNotificationService(notifs, users, nil, zap.NewNop())
	f.svc = NewPostService(&fakePosts{}, f.likes, f.comments, f.saved, users, notifier, zap.NewNop())
	post, err := f.svc.Create(context.Background(), 1, models.CreatePostRequest{Body: "hello"})
	require.NoError(t, err)
	f.post = post
	return f
}

func TestLikeIsIdempotentAndNotifiesOnce(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	id := f.post.ID.Hex()

	created, err := f.svc.Like(ctx, 2, id)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = f.svc.Like(ctx, 2, id)
	require.NoError(t, err)
	assert.False(t, created)

	liked, count, err := f.svc.LikeStatus(ctx, 2, id)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.EqualValues(t, 1, count)
	require.Len(t, f.notifs.rows, 1)
	assert.Equal(t, models.NotificationLike, f.notifs.rows[0].Type)

	_, err = f.svc.Like(ctx, 1, id)
	require.NoError(t, err)
	assert.Len(t, f.notifs.rows, 1, "liking your own post does not notify")
}

func TestUnlikeLeavesNoRow(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	id := f.post.ID.Hex()

	_, err := f.svc.Like(ctx, 2, id)
	require.NoError(t, err)
	require.NoError(t, f.svc.Unlike(ctx, 2, id))
	require.NoError(t, f.svc.Unlike(ctx, 2, id))

	liked, count, err := f.svc.LikeStatus(ctx, 2, id)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, count)
	assert.Empty(t, f.likes.rows)
}

func TestDetailsCountsAreDerived(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	id := f.post.ID.Hex()

	_, err := f.svc.Like(ctx, 2, id)
	require.NoError(t, err)
	_, err = f.svc.Like(ctx, 3, id)
	require.NoError(t, err)
	c, err := f.svc.AddComment(ctx, 2, id, "nice")
	require.NoError(t, err)
	assert.Equal(t, "fan", c.User.Name)
	require.NoError(t, f.svc.Save(ctx, 2, id))

	details, err := f.svc.Details(ctx, 2, id)
	require.NoError(t, err)
	assert.EqualValues(t, 2, details.LikesCount)
	assert.EqualValues(t, 1, details.CommentsCount)
	assert.Len(t, details.Likes, 2)
	assert.Equal(t, "author", details.User.Name)
	assert.True(t, details.IsLiked)
	assert.True(t, details.IsSaved)

	var commentNote *models.Notification
	for i := range f.notifs.rows {
		if f.notifs.rows[i].Type == models.NotificationComment {
			commentNote = &f.notifs.rows[i]
		}
	}
	require.NotNil(t, commentNote)
	data, err := commentNote.ParseData()
	require.NoError(t, err)
	assert.Equal(t, id, data.PostID)
	assert.Equal(t, c.ID, data.CommentID)
}

func TestDeletePostCascades(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	id := f.post.ID.Hex()
	_, err := f.svc.Like(ctx, 2, id)
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, 2, id, "x")
	require.NoError(t, err)
	require.NoError(t, f.svc.Save(ctx, 2, id))

	err = f.svc.Delete(ctx, 2, id)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, 1, id))
	assert.Empty(t, f.likes.rows)
	assert.Empty(t, f.comments.rows)
	assert.Empty(t, f.saved.rows)

	_, err = f.svc.Details(ctx, 1, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeleteCommentPermissions(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	id := f.post.ID.Hex()
	c1, err := f.svc.AddComment(ctx, 2, id, "first")
	require.NoError(t, err)
	c2, err := f.svc.AddComment(ctx, 2, id, "second")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteComment(ctx, 3, c1.ID), apperrors.ErrForbidden)
	require.NoError(t, f.svc.DeleteComment(ctx, 2, c1.ID))
	require.NoError(t, f.svc.DeleteComment(ctx, 1, c2.ID))
	assert.Empty(t, f.comments.rows)

	_, err = f.svc.UpdateComment(ctx, 1, c1.ID, "edited")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdatePostRequiresContent(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture(t)
	empty := ""
	_, err := f.svc.Update(ctx, 1, f.post.ID.Hex(), models.UpdatePostRequest{Body: &empty})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	body := "edited"
	post, err := f.svc.Update(ctx, 1, f.post.ID.Hex(), models.UpdatePostRequest{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, "edited", post.Body)
}
