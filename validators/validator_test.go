package validators

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/socialshop/backend/internal/models"
)

func TestValidateReportsFields(t *testing.T) {
	v := NewValidator()

	err := v.Validate(models.CheckoutRequest{PaymentMethod: "gold"})
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	assert.Contains(t, he.Message, "paymentmethod must be one of")

	assert.NoError(t, v.Validate(models.CheckoutRequest{PaymentMethod: "upi"}))
}

func TestValidateRating(t *testing.T) {
	v := NewValidator()
	six := 6
	err := v.Validate(models.UpsertReviewRequest{Rating: &six})
	require.Error(t, err)

	four := 4
	assert.NoError(t, v.Validate(models.UpsertReviewRequest{Rating: &four}))
}
