package services

import (
	"context"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

type ReviewService struct {
	reviews  repositories.ReviewRepository
	products repositories.ProductRepository
	users    repositories.UserRepository
}

func NewReviewService(reviewRepo repositories.ReviewRepository, productRepo repositories.ProductRepository, userRepo repositories.UserRepository) *ReviewService {
	return &ReviewService{reviews: reviewRepo, products: productRepo, users: userRepo}
}

// Upsert sets the caller's rating and/or comment on a product. A field left
// out of req keeps its stored value.
func (s *ReviewService) Upsert(ctx context.Context, productID, userID uint, req models.UpsertReviewRequest) (*models.Review, error) {
	if req.Rating == nil && req.Comment == nil {
		return nil, apperrors.Invalid("rating or comment is required")
	}
	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	review := &models.Review{ProductID: productID, UserID: userID}
	existing, err := s.reviews.GetByProductAndUser(ctx, productID, userID)
	switch {
	case err == nil:
		review.Rating = existing.Rating
		review.Comment = existing.Comment
	case !apperrors.IsNotFound(err):
		return nil, err
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = *req.Comment
	}

	if err := s.reviews.Upsert(ctx, review); err != nil {
		return nil, err
	}
	return s.reviews.GetByProductAndUser(ctx, productID, userID)
}

func (s *ReviewService) List(ctx context.Context, productID uint) ([]models.ReviewWithAuthor, error) {
	reviews, err := s.reviews.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]models.ReviewWithAuthor, 0, len(reviews))
	if len(reviews) == 0 {
		return out, nil
	}
	ids := make([]uint, len(reviews))
	for i, r := range reviews {
		ids[i] = r.UserID
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range reviews {
		item := models.ReviewWithAuthor{Review: r, User: models.CompactUser{ID: r.UserID}}
		if u, ok := users[r.UserID]; ok {
			item.User = u.ToCompact()
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ReviewService) Mine(ctx context.Context, productID, userID uint) (*models.Review, error) {
	return s.reviews.GetByProductAndUser(ctx, productID, userID)
}

func (s *ReviewService) Summary(ctx context.Context, productID uint) (models.ReviewSummary, error) {
	return s.reviews.Summary(ctx, productID)
}
