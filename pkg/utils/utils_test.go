package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, SplitCSV(""))
	assert.Equal(t, []string{"CS101", "CS202", "BCA"}, SplitCSV("CS101, CS202,,BCA "))
}

func TestErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorResponse(rec, http.StatusBadRequest, "rating must be between 1 and 5")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Bad Request","message":"rating must be between 1 and 5"}`, rec.Body.String())
}

func TestReadJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Title string `json:"title"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Quiz","extra":1}`))
	assert.Error(t, ReadJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Quiz"}`))
	require.NoError(t, ReadJSON(req, &dst))
	assert.Equal(t, "Quiz", dst.Title)
}
