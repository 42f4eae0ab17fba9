package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageParams(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int
	}{
		{"", 1, defaultLimit},
		{"?page=3&limit=20", 3, 20},
		{"?page=-1&limit=500", 1, defaultLimit},
		{"?page=abc", 1, defaultLimit},
	}
	e := echo.New()
	for _, tc := range cases {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/"+tc.query, nil), httptest.NewRecorder())
		page, limit := pageParams(c)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.limit, limit, tc.query)
	}
}

func TestPageMeta(t *testing.T) {
	meta := pageMeta(2, 10, 25)
	assert.Equal(t, 3, meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, true, meta["hasPreviousPage"])

	meta = pageMeta(1, 10, 0)
	assert.Equal(t, 0, meta["totalPages"])
	assert.Equal(t, false, meta["hasNextPage"])
}

func TestUintParam(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := uintParam(c, "id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	c.SetParamValues("nope")
	_, err = uintParam(c, "id")
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestNoClaimsMeansNoUser(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Zero(t, getUserIDFromContext(c))
}

func TestSuccessEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, success(c, http.StatusCreated, echo.Map{"id": 1}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, body["data"])
}
