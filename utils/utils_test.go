package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"student-scores/apperr"
	"student-scores/models"
)

func TestRespondWithAppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   models.Error
	}{
		{apperr.Validationf("identifier is required"), http.StatusBadRequest, models.Error{Message: "identifier is required", Kind: "validation"}},
		{apperr.NotFoundf("no student with identifier 7"), http.StatusNotFound, models.Error{Message: "no student with identifier 7", Kind: "not_found"}},
		{apperr.Wrap(errors.New("dial tcp: refused"), "patch"), http.StatusInternalServerError, models.Error{Message: "internal failure", Kind: "transport"}},
		{errors.New("raw"), http.StatusInternalServerError, models.Error{Message: "internal failure", Kind: "transport"}},
	}
	for _, tt := range tests {
		t.Run(tt.body.Kind, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondWithAppError(rec, httptest.NewRequest(http.MethodGet, "/students", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var got models.Error
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.body, got)
			assert.NotContains(t, rec.Body.String(), "dial tcp")
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tok, err := GenerateToken("scorectl", "s3cret", time.Hour)
	require.NoError(t, err)

	token, err := VerifyToken("Bearer "+tok, "s3cret")
	require.NoError(t, err)
	assert.True(t, token.Valid)

	_, err = VerifyToken("Bearer "+tok, "other")
	assert.Error(t, err)

	_, err = VerifyToken(tok, "s3cret")
	assert.EqualError(t, err, "Invalid Token.")

	expired, err := GenerateToken("scorectl", "s3cret", -time.Minute)
	require.NoError(t, err)
	_, err = VerifyToken("Bearer "+expired, "s3cret")
	assert.Error(t, err)

	_, err = GenerateToken("scorectl", "", time.Hour)
	assert.Error(t, err)
}
