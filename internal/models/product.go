package models

import "time"

// Product prices are integer cents.
type Product struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Gender           string    `json:"gender" gorm:"size:20;index"`
	Category         string    `json:"category" gorm:"size:60;index"`
	PriceCents       int64     `json:"price_cents"`
	ImageURL         string    `json:"image_url"`
	AdditionalImages []string  `json:"additional_images" gorm:"serializer:json"`
	Sizes            []string  `json:"sizes" gorm:"serializer:json"`
	Colors           []string  `json:"colors" gorm:"serializer:json"`
	CreatedAt        time.Time `json:"created_at"`
}

type CreateProductRequest struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Description      string   `json:"description" validate:"max=4000"`
	Gender           string   `json:"gender" validate:"required,max=20"`
	Category         string   `json:"category" validate:"required,max=60"`
	PriceCents       int64    `json:"price_cents" validate:"required,gt=0"`
	ImageURL         string   `json:"image_url" validate:"omitempty,url"`
	AdditionalImages []string `json:"additional_images" validate:"omitempty,dive,url"`
	Sizes            []string `json:"sizes"`
	Colors           []string `json:"colors"`
}

// Review is unique per (product, user) and written with an upsert.
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"uniqueIndex:idx_review_product_user"`
	UserID    uint      `json:"user_id" gorm:"uniqueIndex:idx_review_product_user;index"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewWithAuthor struct {
	Review
	User CompactUser `json:"user"`
}

// ReviewSummary aggregates the ratings of a product. Histogram[i] counts
// reviews with i+1 stars.
type ReviewSummary struct {
	Average   float64  `json:"average"`
	Count     int64    `json:"count"`
	Histogram [5]int64 `json:"histogram"`
}

// UpsertReviewRequest sets rating, comment or both. A missing field keeps
// the stored value.
type UpsertReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type Address struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index"`
	AddressName string    `json:"address_name"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	Zip         string    `json:"zip"`
	Country     string    `json:"country"`
	CreatedAt   time.Time `json:"created_at"`
}

type AddressRequest struct {
	AddressName string `json:"address_name" validate:"required,max=60"`
	Address     string `json:"address" validate:"required,max=300"`
	City        string `json:"city" validate:"required,max=100"`
	State       string `json:"state" validate:"required,max=100"`
	Zip         string `json:"zip" validate:"required,max=20"`
	Country     string `json:"country" validate:"required,max=100"`
}
