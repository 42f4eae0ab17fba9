package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/internal/services"
)

// ProductHandler serves the catalogue and product reviews
type ProductHandler struct {
	productRepository repositories.ProductRepository
	reviews           *services.ReviewService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productRepo repositories.ProductRepository, reviewService *services.ReviewService) *ProductHandler {
	return &ProductHandler{productRepository: productRepo, reviews: reviewService}
}

// RegisterProductRoutes registers catalogue and review routes. admin guards
// product creation.
func (h *ProductHandler) RegisterProductRoutes(g *echo.Group, admin echo.MiddlewareFunc) {
	g.GET("/products", h.ListProducts)
	g.POST("/products", h.CreateProduct, admin)
	g.GET("/products/:id", h.GetProduct)
	g.GET("/products/:id/similar", h.GetSimilar)
	g.GET("/products/:id/reviews", h.GetReviews)
	g.GET("/products/:id/reviews/summary", h.GetReviewSummary)
	g.GET("/products/:id/reviews/mine", h.GetMyReview)
	g.PUT("/products/:id/reviews/mine", h.UpsertMyReview)
}

// ListProducts filters by gender and category when given
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productRepository.ListProducts(c.Request().Context(), c.QueryParam("gender"), c.QueryParam("category"))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"products": products})
}

// CreateProduct adds a product to the catalogue
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req models.CreateProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	product := &models.Product{
		Name:             req.Name,
		Description:      req.Description,
		Gender:           req.Gender,
		Category:         req.Category,
		PriceCents:       req.PriceCents,
		ImageURL:         req.ImageURL,
		AdditionalImages: req.AdditionalImages,
		Sizes:            req.Sizes,
		Colors:           req.Colors,
	}
	if err := h.productRepository.CreateProduct(c.Request().Context(), product); err != nil {
		return err
	}
	return success(c, http.StatusCreated, product)
}

// GetProduct returns one product
func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	product, err := h.productRepository.GetProductByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, product)
}

// GetSimilar returns products of the same category, excluding this one
func (h *ProductHandler) GetSimilar(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	product, err := h.productRepository.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	similar, err := h.productRepository.GetSimilar(ctx, product.Category, product.ID)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"products": similar})
}

// GetReviews lists a product's reviews with their authors
func (h *ProductHandler) GetReviews(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	reviews, err := h.reviews.List(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, echo.Map{"reviews": reviews})
}

// GetReviewSummary returns the average rating, count and star histogram
func (h *ProductHandler) GetReviewSummary(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	summary, err := h.reviews.Summary(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, summary)
}

// GetMyReview returns the caller's review of a product
func (h *ProductHandler) GetMyReview(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	review, err := h.reviews.Mine(c.Request().Context(), id, getUserIDFromContext(c))
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, review)
}

// UpsertMyReview sets the caller's rating and/or comment
func (h *ProductHandler) UpsertMyReview(c echo.Context) error {
	id, err := uintParam(c, "id")
	if err != nil {
		return err
	}
	var req models.UpsertReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	review, err := h.reviews.Upsert(c.Request().Context(), id, getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, review)
}
