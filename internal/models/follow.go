package models

import "time"

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

type FollowCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}
