package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

// PostService covers posts and the rows hanging off them: likes, comments
// and saves. Counts are always derived from those rows.
type PostService struct {
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	saved    repositories.SavedPostRepository
	users    repositories.UserRepository
	notifier Notifier
	log      *zap.Logger
}

func NewPostService(
	postRepo repositories.PostRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	savedRepo repositories.SavedPostRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	log *zap.Logger,
) *PostService {
	return &PostService{
		posts:    postRepo,
		likes:    likeRepo,
		comments: commentRepo,
		saved:    savedRepo,
		users:    userRepo,
		notifier: notifier,
		log:      log.With(zap.String("component", "posts")),
	}
}

func (s *PostService) Create(ctx context.Context, userID uint, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{UserID: userID, Body: req.Body, MediaURL: req.MediaURL, MediaType: req.MediaType}
	if post.MediaURL != "" && post.MediaType == "" {
		post.MediaType = models.MediaImage
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) ownedPost(ctx context.Context, userID uint, postID string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperrors.Forbidden("only the author can change this post")
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, userID uint, postID string, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.ownedPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	if req.MediaURL != nil {
		post.MediaURL = *req.MediaURL
	}
	if req.MediaType != nil {
		post.MediaType = *req.MediaType
	}
	if post.Body == "" && post.MediaURL == "" {
		return nil, apperrors.Invalid("post needs a body or media")
	}
	if err := s.posts.UpdatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes the post, then its likes, comments and saves.
func (s *PostService) Delete(ctx context.Context, userID uint, postID string) error {
	if _, err := s.ownedPost(ctx, userID, postID); err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return err
	}
	if err := s.likes.DeleteLikesByPostID(ctx, postID); err != nil {
		s.log.Error("failed to delete likes of deleted post", zap.String("post_id", postID), zap.Error(err))
	}
	if err := s.comments.DeleteCommentsByPostID(ctx, postID); err != nil {
		s.log.Error("failed to delete comments of deleted post", zap.String("post_id", postID), zap.Error(err))
	}
	if err := s.saved.DeleteByPostID(ctx, postID); err != nil {
		s.log.Error("failed to delete saves of deleted post", zap.String("post_id", postID), zap.Error(err))
	}
	return nil
}

// Enrich attaches author, derived counts and the viewer's liked/saved flags.
func (s *PostService) Enrich(ctx context.Context, viewerID uint, posts []models.Post) ([]models.FeedPost, error) {
	out := make([]models.FeedPost, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	ids := make([]string, len(posts))
	authorIDs := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID.Hex()
		authorIDs[i] = p.UserID
	}

	authors, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	likeCounts, err := s.likes.CountByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	commentCounts, err := s.comments.CountByPostIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.likes.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	saved, err := s.saved.GetSavedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	for _, p := range posts {
		id := p.ID.Hex()
		fp := models.FeedPost{
			Post:          p,
			User:          models.CompactUser{ID: p.UserID},
			LikesCount:    likeCounts[id],
			CommentsCount: commentCounts[id],
			IsLiked:       liked[id],
			IsSaved:       saved[id],
		}
		if a, ok := authors[p.UserID]; ok {
			fp.User = a.ToCompact()
		}
		out = append(out, fp)
	}
	return out, nil
}

// Feed returns every post, newest first, and the total post count.
func (s *PostService) Feed(ctx context.Context, viewerID uint, skip, limit int64) ([]models.FeedPost, int64, error) {
	posts, err := s.posts.GetAllPosts(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.posts.CountPosts(ctx)
	if err != nil {
		return nil, 0, err
	}
	enriched, err := s.Enrich(ctx, viewerID, posts)
	return enriched, total, err
}

func (s *PostService) UserPosts(ctx context.Context, viewerID, ownerID uint, skip, limit int64) ([]models.FeedPost, error) {
	posts, err := s.posts.GetPostsByUserID(ctx, ownerID, skip, limit)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, viewerID, posts)
}

func (s *PostService) SavedPosts(ctx context.Context, viewerID uint) ([]models.FeedPost, error) {
	rows, err := s.saved.GetSavedPostsByUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.PostID
	}
	posts, err := s.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.Enrich(ctx, viewerID, posts)
}

// Details loads a post with its like rows and comments. Clients refetch it
// whenever a post changes.
func (s *PostService) Details(ctx context.Context, viewerID uint, postID string) (*models.PostDetails, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	enriched, err := s.Enrich(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	likes, err := s.likes.GetLikesByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.Comments(ctx, postID)
	if err != nil {
		return nil, err
	}
	details := &models.PostDetails{FeedPost: enriched[0], Likes: likes, Comments: comments}
	details.LikesCount = int64(len(likes))
	details.CommentsCount = int64(len(comments))
	return details, nil
}

func (s *PostService) notify(ctx context.Context, actorID, ownerID uint, typ, message string, data models.NotificationData) {
	if s.notifier == nil || actorID == ownerID {
		return
	}
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		s.log.Warn("actor lookup failed", zap.Uint("user_id", actorID), zap.Error(err))
		return
	}
	n := &models.Notification{
		SenderID:   actorID,
		ReceiverID: ownerID,
		Title:      actor.Name,
		Message:    message,
		Type:       typ,
		Data:       data.JSON(),
	}
	if _, err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification failed", zap.String("type", typ), zap.Error(err))
	}
}

// Like records the viewer's like. Liking twice is a no-op and notifies once.
func (s *PostService) Like(ctx context.Context, userID uint, postID string) (bool, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return false, err
	}
	created, err := s.likes.CreateLike(ctx, &models.Like{PostID: postID, UserID: userID})
	if err != nil {
		return false, err
	}
	if created {
		s.notify(ctx, userID, post.UserID, models.NotificationLike, "liked your post", models.NotificationData{PostID: postID})
	}
	return created, nil
}

// Unlike deletes the viewer's like row if there is one.
func (s *PostService) Unlike(ctx context.Context, userID uint, postID string) error {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return err
	}
	return s.likes.DeleteLike(ctx, postID, userID)
}

func (s *PostService) LikeStatus(ctx context.Context, userID uint, postID string) (liked bool, count int64, err error) {
	if _, err = s.posts.GetPostByID(ctx, postID); err != nil {
		return false, 0, err
	}
	if liked, err = s.likes.HasUserLikedPost(ctx, postID, userID); err != nil {
		return false, 0, err
	}
	count, err = s.likes.GetLikesCountByPostID(ctx, postID)
	return liked, count, err
}

func (s *PostService) Comments(ctx context.Context, postID string) ([]models.CommentWithAuthor, error) {
	comments, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CommentWithAuthor, 0, len(comments))
	if len(comments) == 0 {
		return out, nil
	}
	ids := make([]uint, len(comments))
	for i, c := range comments {
		ids[i] = c.UserID
	}
	authors, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		item := models.CommentWithAuthor{Comment: c, User: models.CompactUser{ID: c.UserID}}
		if a, ok := authors[c.UserID]; ok {
			item.User = a.ToCompact()
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *PostService) AddComment(ctx context.Context, userID uint, postID, content string) (*models.CommentWithAuthor, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: postID, UserID: userID, Content: content}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	s.notify(ctx, userID, post.UserID, models.NotificationComment, "commented on your post",
		models.NotificationData{PostID: postID, CommentID: comment.ID})
	return &models.CommentWithAuthor{Comment: *comment, User: author.ToCompact()}, nil
}

func (s *PostService) UpdateComment(ctx context.Context, userID, commentID uint, content string) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, apperrors.Forbidden("only the author can edit this comment")
	}
	comment.Content = content
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment is allowed for the comment author and the post owner.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		post, err := s.posts.GetPostByID(ctx, comment.PostID)
		if err != nil && !apperrors.IsNotFound(err) {
			return err
		}
		if post == nil || post.UserID != userID {
			return apperrors.Forbidden("not allowed to delete this comment")
		}
	}
	return s.comments.DeleteComment(ctx, comment)
}

func (s *PostService) Save(ctx context.Context, userID uint, postID string) error {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return err
	}
	return s.saved.SavePost(ctx, &models.SavedPost{UserID: userID, PostID: postID})
}

func (s *PostService) Unsave(ctx context.Context, userID uint, postID string) error {
	return s.saved.UnsavePost(ctx, userID, postID)
}
