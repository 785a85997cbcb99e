package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwilliamsresearch/geon/internal/config"
	"github.com/jwilliamsresearch/geon/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const marketText = `PLACE: Old Market Square
TYPE: public_space
LOCATION: 52.9548, -1.1581
PURPOSE: retail (market stalls)
CONTAINS:
  - PLACE: Fountain
    TYPE: landmark

PLACE: Council House
TYPE: building
LOCATION: 52.9533, -1.1496
PURPOSE: governance
`

func newTestServer(t *testing.T) (*ServerContext, http.Handler) {
	t.Helper()

	dir := t.TempDir()
	cfg, err := config.Parse([]byte(`
title: Nottingham
attribution: survey
places_dir: ` + dir + `
sources:
  - name: centre
    aliases: [city]
    geojson: centre.geojson
  - name: unpublished
    geojson: other.geojson
`))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(cfg.PlacesFile("centre"), []byte(marketText), 0644))
	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.PreviewFile("centre")), 0755))
	require.NoError(t, os.WriteFile(cfg.PreviewFile("centre"), []byte("RIFF"), 0644))

	s, err := NewServerContext(cfg)
	require.NoError(t, err)
	return s, s.Routes()
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewServerContext(t *testing.T) {
	s, _ := newTestServer(t)

	require.Len(t, s.Summaries, 1)
	sum := s.Summaries[0]
	assert.Equal(t, "centre", sum.Name)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, []string{"public_space", "building"}, sum.Types)
	assert.Equal(t, []string{"Civic", "Economic"}, sum.Categories)
	assert.True(t, sum.Preview)
	assert.Equal(t, "survey", sum.Attribution)

	assert.Equal(t, "centre", s.NameResolver["city"])
	assert.NotContains(t, s.NameResolver, "unpublished")
}

func TestHandleIndex(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Nottingham</title>")
	assert.NotContains(t, rec.Body.String(), "\n  ")

	etag := rec.Header().Get("ETag")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/missing.css", "").Code)
}

func TestHandlePlacesList(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/api/places", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, []string{"city"}, out[0].Aliases)
}

func TestHandlePlaces(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodGet, "/places/city.geon", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, marketText, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	rec = do(h, http.MethodGet, "/places/centre.geojson", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))
	var fc geo.GeoJSONFeatureCollection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Council House", fc.Features[1].Properties["name"])

	rec = do(h, http.MethodGet, "/places/centre.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var places []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &places))
	assert.Equal(t, "Old Market Square", places[0]["place"])

	rec = do(h, http.MethodGet, "/places/city/preview.webp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/webp", rec.Header().Get("Content-Type"))

	for _, path := range []string{"/places/unpublished.geon", "/places/centre.txt", "/places/centre", "/places/x/y/z"} {
		assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, path, "").Code, path)
	}
}

func TestHandleParse(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/parse", marketText)
	require.Equal(t, http.StatusOK, rec.Code)
	var out parseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Places, 2)
	assert.Equal(t, "Fountain", out.Places[0].Contains[0].Name)
	assert.Empty(t, out.Diagnostics)

	broken := "PLACE: X\nLOCATION: north, east\n"
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/parse", broken).Code)

	rec = do(h, http.MethodPost, "/api/parse?strict=1", broken)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Diagnostics, 1)
	assert.Contains(t, out.Diagnostics[0], "LOCATION")

	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/api/parse", "").Code)
}

func TestHandleGenerate(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/generate", `{"place":"Gate","type":"threshold","location":{"lat":1,"lon":2}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PLACE: Gate\nTYPE: threshold\nLOCATION: 1, 2\n", rec.Body.String())

	rec = do(h, http.MethodPost, "/api/generate", `[{"place":"A"},{"place":"B"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PLACE: A\nTYPE:\n\nPLACE: B\nTYPE:\n", rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/api/generate", `{nope`).Code)
}

func TestHandleValidate(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(h, http.MethodPost, "/api/validate", marketText)
	require.Equal(t, http.StatusOK, rec.Code)

	var out []validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.False(t, out[0].Valid, "the fountain has no location")
	assert.True(t, out[1].Valid)
}
