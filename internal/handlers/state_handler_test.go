package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/socialshop/backend/internal/appstate"
	"github.com/anonto42/socialshop/backend/internal/middleware"
	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
	"github.com/anonto42/socialshop/backend/validators"
)

type stubProducts struct {
	products map[uint]models.Product
}

func (s stubProducts) CreateProduct(context.Context, *models.Product) error { return nil }

func (s stubProducts) GetProductByID(_ context.Context, id uint) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, apperrors.NotFound("product")
	}
	return &p, nil
}

func (s stubProducts) ListProducts(context.Context, string, string) ([]models.Product, error) {
	return nil, nil
}

func (s stubProducts) GetSimilar(context.Context, string, uint) ([]models.Product, error) {
	return nil, nil
}

type stubAddresses struct {
	rows map[uint]models.Address
}

func (s stubAddresses) Create(context.Context, *models.Address) error { return nil }

func (s stubAddresses) GetByID(_ context.Context, id uint) (*models.Address, error) {
	a, ok := s.rows[id]
	if !ok {
		return nil, apperrors.NotFound("address")
	}
	return &a, nil
}

func (s stubAddresses) GetByUserID(context.Context, uint) ([]models.Address, error) { return nil, nil }

func (s stubAddresses) Update(context.Context, *models.Address) error { return nil }

// asUser authenticates every request as userID.
func asUser(userID uint) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.ClaimsKey, &models.JwtCustomClaims{UserID: userID})
			return next(c)
		}
	}
}

type stateEnvelope struct {
	Success bool          `json:"success"`
	Data    StateResponse `json:"data"`
}

func newStateServer(t *testing.T, userID uint) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = validators.NewValidator()
	products := stubProducts{products: map[uint]models.Product{
		1: {ID: 1, Name: "Tee", PriceCents: 1000},
		2: {ID: 2, Name: "Hoodie", PriceCents: 2000},
	}}
	addresses := stubAddresses{rows: map[uint]models.Address{
		10: {ID: 10, UserID: 7, City: "Dhaka"},
		11: {ID: 11, UserID: 8, City: "Elsewhere"},
	}}
	g := e.Group("", asUser(userID))
	NewStateHandler(appstate.NewMemoryStore(), products, addresses).RegisterStateRoutes(g)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) StateResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var env stateEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.True(t, env.Success)
	return env.Data
}

func TestCartTotals(t *testing.T) {
	e := newStateServer(t, 7)

	doJSON(t, e, http.MethodPost, "/state/cart", `{"product_id":1,"size":"M"}`)
	doJSON(t, e, http.MethodPost, "/state/cart", `{"product_id":2,"size":"L"}`)
	st := decodeState(t, doJSON(t, e, http.MethodPost, "/state/cart", `{"product_id":2,"size":"L"}`))

	require.Len(t, st.Cart, 2)
	assert.Equal(t, 2, st.Cart[1].Quantity)
	assert.Equal(t, "Hoodie", st.Cart[1].Name)
	assert.EqualValues(t, 5000, st.Totals.SubtotalCents)
	assert.EqualValues(t, 250, st.Totals.TaxCents)
	assert.EqualValues(t, 1500, st.Totals.ShippingCents)
	assert.EqualValues(t, 6750, st.Totals.TotalCents)
	assert.Equal(t, 67.5, st.Totals.Total)
}

func TestCartQuantityAndRemoval(t *testing.T) {
	e := newStateServer(t, 7)
	doJSON(t, e, http.MethodPost, "/state/cart", `{"product_id":1,"size":"M"}`)
	doJSON(t, e, http.MethodPost, "/state/cart", `{"product_id":2,"size":"S"}`)

	st := decodeState(t, doJSON(t, e, http.MethodPatch, "/state/cart", `{"product_id":1,"size":"M","delta":-1}`))
	require.Len(t, st.Cart, 1)
	assert.EqualValues(t, 2, st.Cart[0].ProductID)

	st = decodeState(t, doJSON(t, e, http.MethodDelete, "/state/cart/item?product_id=2&size=S", ""))
	assert.Empty(t, st.Cart)
	assert.EqualValues(t, 1500, st.Totals.TotalCents)
}

func TestAddUnknownProduct(t *testing.T) {
	e := newStateServer(t, 7)
	rec := doJSON(t, e, http.MethodPost, "/state/cart", `{"product_id":99}`)
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/state/cart", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavedProductsAreUnique(t *testing.T) {
	e := newStateServer(t, 7)
	doJSON(t, e, http.MethodPost, "/state/saved-products/a", "")
	doJSON(t, e, http.MethodPost, "/state/saved-products/b", "")
	st := decodeState(t, doJSON(t, e, http.MethodPost, "/state/saved-products/a", ""))
	assert.Equal(t, []string{"b", "a"}, st.SavedProducts)

	st = decodeState(t, doJSON(t, e, http.MethodDelete, "/state/saved-products/b", ""))
	assert.Equal(t, []string{"a"}, st.SavedProducts)
}

func TestSelectAddressChecksOwnership(t *testing.T) {
	e := newStateServer(t, 7)

	st := decodeState(t, doJSON(t, e, http.MethodPut, "/state/address", `{"address_id":10}`))
	require.NotNil(t, st.SelectedAddressID)
	assert.EqualValues(t, 10, *st.SelectedAddressID)

	rec := doJSON(t, e, http.MethodPut, "/state/address", `{"address_id":11}`)
	assert.NotEqual(t, http.StatusOK, rec.Code)

	st = decodeState(t, doJSON(t, e, http.MethodPut, "/state/address", `{"address_id":null}`))
	assert.Nil(t, st.SelectedAddressID)
}

func TestStateIsPerUser(t *testing.T) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	store := appstate.NewMemoryStore()
	products := stubProducts{products: map[uint]models.Product{1: {ID: 1, PriceCents: 100}}}
	h := NewStateHandler(store, products, stubAddresses{})
	h.RegisterStateRoutes(e.Group("/a", asUser(1)))
	h.RegisterStateRoutes(e.Group("/b", asUser(2)))

	doJSON(t, e, http.MethodPost, "/a/state/cart", `{"product_id":1}`)
	st := decodeState(t, doJSON(t, e, http.MethodGet, "/b/state", ""))
	assert.Empty(t, st.Cart)
	assert.NotNil(t, st.SavedProducts)
}
