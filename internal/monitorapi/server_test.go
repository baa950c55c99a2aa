package monitorapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oscmix/internal/mirror"
	"oscmix/internal/osc"
	"oscmix/internal/param"
)

func TestHandleHealthReportsModel(t *testing.T) {
	tree := param.NewFirefaceUCXII()
	mir := mirror.New(tree)
	srv := New(mir, "UCX II")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "UCX II", resp.Model)
}

func TestHandleStateReflectsMirrorSnapshot(t *testing.T) {
	tree := param.NewFirefaceUCXII()
	mir := mirror.New(tree)
	leaf, err := tree.Resolve("/input/1/gain")
	require.NoError(t, err)
	reg, val, err := leaf.Encode([]osc.Arg{osc.Float32(12.0)})
	require.NoError(t, err)
	_, ok := mir.Apply(reg, val)
	require.True(t, ok)

	srv := New(mir, "UCX II")
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Values, "/input/1/gain")
}

func TestHandleDurecReturnsEmptyArrayInitially(t *testing.T) {
	tree := param.NewFirefaceUCXII()
	mir := mirror.New(tree)
	srv := New(mir, "UCX II")

	req := httptest.NewRequest(http.MethodGet, "/api/durec", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []durecFileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp)
}
