package models

import "time"

// Comment represents a comment on a post
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index"` // Mongo ObjectID hex
	UserID    uint      `json:"user_id" gorm:"index"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentWithAuthor is a comment joined with its author.
type CommentWithAuthor struct {
	Comment
	User CompactUser `json:"user"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
