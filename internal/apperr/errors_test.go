package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndCode(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("verify: %w", ErrUnauthenticated), http.StatusUnauthorized, "Unauthenticated"},
		{ErrForbidden, http.StatusForbidden, "Forbidden"},
		{fmt.Errorf("user a@b.c: %w", ErrNotFound), http.StatusNotFound, "NotFound"},
		{BadRequest("invalid id %q", "zz"), http.StatusBadRequest, "BadRequest"},
		{ErrConflict, http.StatusConflict, "Conflict"},
		{Upstream("insert payment", errors.New("timeout")), http.StatusInternalServerError, "UpstreamFailure"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
		assert.Equal(t, tc.code, Code(tc.err), tc.err.Error())
	}
}

func TestUpstreamKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Upstream("delete carts", cause)

	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "delete carts")
}
