package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story is a single 24h media item stored in MongoDB.
type Story struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    uint               `json:"user_id" bson:"user_id"`
	MediaURL  string             `json:"media_url" bson:"media_url"`
	MediaType string             `json:"media_type" bson:"media_type"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"`
}

// StoryView acknowledges that ViewerID has seen StoryID (PostgreSQL).
type StoryView struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StoryID   string    `json:"story_id" gorm:"index;uniqueIndex:idx_story_viewer"`
	ViewerID  uint      `json:"viewer_id" gorm:"index;uniqueIndex:idx_story_viewer"`
	CreatedAt time.Time `json:"created_at"`
}

type StoryItem struct {
	Story
	Seen bool `json:"seen"`
}

// StoryGroup is one owner's stories, oldest first.
type StoryGroup struct {
	User        CompactUser `json:"user"`
	Stories     []StoryItem `json:"stories"`
	UnseenCount int         `json:"unseen_count"`
}

type StoryFeed struct {
	CurrentUserStory *StoryGroup  `json:"current_user_story"`
	Stories          []StoryGroup `json:"stories"`
}

type CreateStoryRequest struct {
	MediaURL  string `json:"media_url" validate:"required,url"`
	MediaType string `json:"media_type" validate:"required,oneof=image video"`
}
