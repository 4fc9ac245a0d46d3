package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindAndStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		kind   Kind
		status int
	}{
		{Validation("empty body"), KindValidation, http.StatusBadRequest},
		{Authorization("not a member"), KindAuthorization, http.StatusForbidden},
		{NotFound("no such group"), KindNotFound, http.StatusNotFound},
		{Internal("db failed", errors.New("boom")), KindInternal, http.StatusInternalServerError},
		{errors.New("raw error"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		require.Equal(t, tt.kind, KindOf(tt.err))
		require.Equal(t, tt.status, HTTPStatus(tt.err))
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("no such message"))
	require.Equal(t, KindNotFound, KindOf(err))
	require.Equal(t, http.StatusNotFound, HTTPStatus(err))
	require.Equal(t, "no such message", Message(err))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal("failed to store message", cause)

	require.Equal(t, "failed to store message", Message(err))
	require.ErrorIs(t, err, cause)
}

func TestMessageFallback(t *testing.T) {
	require.Equal(t, "internal error", Message(errors.New("secret detail")))
}
