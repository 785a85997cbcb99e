// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/jwilliamsresearch/geon/internal/convert"
	"github.com/jwilliamsresearch/geon/internal/geon"
	"github.com/jwilliamsresearch/geon/internal/validate"

	"github.com/rs/zerolog/log"
)

const (
	etagCap = 64

	// maxBody bounds POSTed documents.
	maxBody = 4 << 20

	contentTypeGEON = "text/plain; charset=utf-8"
)

// HandlePlacesList serves the JSON summaries of published collections.
func (s *ServerContext) HandlePlacesList(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	// Ignoring error as we cannot handle client disconnects
	_ = json.NewEncoder(w).Encode(s.Summaries)
}

// HandleIndex serves the main HTML application.
func (s *ServerContext) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && strings.Contains(r.URL.Path, ".") {
		http.NotFound(w, r)
		return
	}

	etag := fmt.Sprintf(`"%x"`, len(s.IndexHTML))

	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	_, _ = w.Write(s.IndexHTML)
}

// HandlePlaces serves a collection as GEON, GeoJSON or JSON, and its preview.
func (s *ServerContext) HandlePlaces(w http.ResponseWriter, r *http.Request) {
	// Path: /places/{name}.{ext} or /places/{name}/preview.webp
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 3 && parts[2] == "preview.webp":
		name, ok := s.NameResolver[parts[1]]
		if !ok || !s.serveFile(w, r, s.Config.PreviewFile(name), "image/webp") {
			http.NotFound(w, r)
		}
		return

	case len(parts) != 2:
		http.NotFound(w, r)
		return
	}

	dot := strings.LastIndexByte(parts[1], '.')
	if dot <= 0 {
		http.NotFound(w, r)
		return
	}
	name, ok := s.NameResolver[parts[1][:dot]]
	if !ok {
		http.NotFound(w, r)
		return
	}
	path := s.Config.PlacesFile(name)

	switch parts[1][dot+1:] {
	case "geon":
		if !s.serveFile(w, r, path, contentTypeGEON) {
			http.NotFound(w, r)
		}

	case "geojson":
		places, err := readPlaces(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, "application/geo+json", convert.ToFeatureCollection(places))

	case "json":
		places, err := readPlaces(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, "application/json", places)

	default:
		http.NotFound(w, r)
	}
}

type parseResponse struct {
	Places      []*geon.Place `json:"places"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
}

// HandleParse converts posted GEON text to JSON. With ?strict=1 any recovery
// made while parsing turns the response into 422 with the diagnostics.
func (s *ServerContext) HandleParse(w http.ResponseWriter, r *http.Request) {
	text, ok := readBody(w, r)
	if !ok {
		return
	}

	parser := geon.NewParser(log.With().Str("handler", "parse").Logger())
	resp := parseResponse{Places: parser.ParseMany(text)}
	for _, d := range parser.Diagnostics() {
		resp.Diagnostics = append(resp.Diagnostics, d.Error())
	}

	status := http.StatusOK
	if strict, _ := strconv.ParseBool(r.URL.Query().Get("strict")); strict && len(resp.Diagnostics) > 0 {
		status = http.StatusUnprocessableEntity
	}

	writeJSON(w, status, "application/json", resp)
}

// HandleGenerate converts a posted JSON place, or array of places, to GEON.
func (s *ServerContext) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var places []*geon.Place
	var err error
	if trimmed := strings.TrimSpace(body); strings.HasPrefix(trimmed, "[") {
		err = json.Unmarshal([]byte(trimmed), &places)
	} else {
		var p geon.Place
		err = json.Unmarshal([]byte(trimmed), &p)
		places = []*geon.Place{&p}
	}
	if err != nil {
		http.Error(w, "invalid place json: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", contentTypeGEON)
	_, _ = io.WriteString(w, geon.GenerateMany(places))
}

type validateResponse struct {
	Place  string           `json:"place"`
	Valid  bool             `json:"valid"`
	Issues []validate.Issue `json:"issues"`
}

// HandleValidate parses posted GEON text and validates every document.
func (s *ServerContext) HandleValidate(w http.ResponseWriter, r *http.Request) {
	text, ok := readBody(w, r)
	if !ok {
		return
	}

	places := geon.ParseMany(text)
	out := make([]validateResponse, 0, len(places))
	for _, p := range places {
		res := validate.Validate(p)
		out = append(out, validateResponse{Place: p.Name, Valid: res.Valid(), Issues: res.Issues})
	}

	writeJSON(w, http.StatusOK, "application/json", out)
}

func readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return "", false
	}
	return string(data), true
}

func readPlaces(path string) ([]*geon.Place, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return geon.ParseMany(string(data)), nil
}

func writeJSON(w http.ResponseWriter, status int, contentType string, v interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serveFile tries to serve a file from disk with ETag generation.
// It returns true if the file was found and served (or 304).
func (s *ServerContext) serveFile(w http.ResponseWriter, r *http.Request, path string, contentType string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if info.IsDir() {
		return false
	}

	buf := make([]byte, 0, etagCap)
	buf = append(buf, '"')
	buf = strconv.AppendInt(buf, info.Size(), 16)
	buf = append(buf, '-')
	buf = strconv.AppendInt(buf, info.ModTime().UnixNano(), 16)
	buf = append(buf, '"')
	etag := string(buf)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	http.ServeFile(w, r, path)
	return true
}
