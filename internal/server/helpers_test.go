package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathSegment(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/api/portfolio/42", "42", true},
		{"/api/portfolio/", "", true},
		{"/api/portfolio/42/extra", "", false},
		{"/api/portfolio/42/", "", false},
		{"/api/quotes", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
		got, ok := PathSegment(req, "/api/portfolio/")
		assert.Equal(t, tt.wantOK, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", nil)
	rec := httptest.NewRecorder()

	var v map[string]interface{}
	assert.False(t, DecodeJSON(rec, req, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecodeJSON_Valid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader(`{"program":"Smiles"}`))
	rec := httptest.NewRecorder()

	var v struct {
		Program string `json:"program"`
	}
	assert.True(t, DecodeJSON(rec, req, &v))
	assert.Equal(t, "Smiles", v.Program)
}

func TestRequireMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/portfolio", nil)

	assert.False(t, RequireMethod(rec, req, http.MethodGet, http.MethodPost))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, POST", rec.Header().Get("Allow"))
}
