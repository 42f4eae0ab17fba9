package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Post is stored in MongoDB. Like and comment counts are derived, never stored.
type Post struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	Body      string             `json:"body" bson:"body"`
	MediaURL  string             `json:"media_url,omitempty" bson:"media_url,omitempty"`
	MediaType string             `json:"media_type,omitempty" bson:"media_type,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// FeedPost is a post enriched for a viewer.
type FeedPost struct {
	Post
	User          CompactUser `json:"user"`
	LikesCount    int64       `json:"likes_count"`
	CommentsCount int64       `json:"comments_count"`
	IsLiked       bool        `json:"is_liked"`
	IsSaved       bool        `json:"is_saved"`
}

// PostDetails is the full post shape used when a post changes: like rows and
// comments with authors are included alongside the derived counts.
type PostDetails struct {
	FeedPost
	Likes    []Like              `json:"likes"`
	Comments []CommentWithAuthor `json:"comments"`
}

type CreatePostRequest struct {
	Body      string `json:"body" validate:"required_without=MediaURL,max=2000"`
	MediaURL  string `json:"media_url,omitempty" validate:"omitempty,url"`
	MediaType string `json:"media_type,omitempty" validate:"omitempty,oneof=image video"`
}

type UpdatePostRequest struct {
	Body      *string `json:"body,omitempty" validate:"omitempty,max=2000"`
	MediaURL  *string `json:"media_url,omitempty" validate:"omitempty,url"`
	MediaType *string `json:"media_type,omitempty" validate:"omitempty,oneof=image video"`
}
