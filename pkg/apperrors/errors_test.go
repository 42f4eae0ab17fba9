package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))

	base := errors.New("db down")
	err := Wrap(base, "failed to load post")
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "failed to load post: db down", err.Error())
	assert.Equal(t, "failed to load post", GetMessage(err))

	coded := WrapWithCode(ErrConflict, "REVIEW_EXISTS", "review exists")
	assert.Equal(t, "REVIEW_EXISTS", GetCode(coded))
	assert.Equal(t, "", GetCode(base))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("post"), http.StatusNotFound},
		{Invalid("cart is empty"), http.StatusBadRequest},
		{fmt.Errorf("decode: %w", ErrInvalidPayload), http.StatusBadRequest},
		{Wrap(ErrUnauthorized, "token"), http.StatusUnauthorized},
		{Forbidden("not the author"), http.StatusForbidden},
		{Wrap(ErrConflict, "dup"), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err.Error())
	}
	assert.True(t, IsNotFound(NotFound("order")))
}
