package server

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"sort"
	"text/template"

	"github.com/jwilliamsresearch/geon/assets"
	"github.com/jwilliamsresearch/geon/internal/config"
	"github.com/jwilliamsresearch/geon/internal/geon"
	"github.com/jwilliamsresearch/geon/internal/validate"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/svg"
)

// DefaultTitle is the index page title when the config sets none.
const DefaultTitle = "GEON places"

// Summary describes one published place collection.
type Summary struct {
	Name        string   `json:"name"`
	Title       string   `json:"title,omitempty"`
	Attribution string   `json:"attribution,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	PartOf      string   `json:"part_of,omitempty"`
	Types       []string `json:"types,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Count       int      `json:"count"`
	Preview     bool     `json:"preview"`
}

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	Config       *config.Config
	NameResolver map[string]string
	Summaries    []Summary
	IndexHTML    []byte
}

type pageData struct {
	Title       string
	Attribution string
	CSS         string
	JS          string
	SVG         string
}

// NewServerContext scans the places directory and builds the index page.
// Sources whose .geon file has not been produced yet are left out.
func NewServerContext(cfg *config.Config) (*ServerContext, error) {
	log.Info().Int("config_sources_count", len(cfg.Sources)).Msg("Initializing server context")

	resolver := make(map[string]string)
	summaries := make([]Summary, 0, len(cfg.Sources))

	for _, src := range cfg.Sources {
		path := cfg.PlacesFile(src.Name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn().
				Str("source", src.Name).
				Str("path", path).
				Msg("Skipping source: places file not found")
			continue
		}

		places := geon.ParseMany(string(data))

		_, err = os.Stat(cfg.PreviewFile(src.Name))
		summary := Summary{
			Name:        src.Name,
			Title:       src.Title,
			Attribution: src.Attribution,
			Aliases:     src.Aliases,
			PartOf:      src.PartOf,
			Types:       placeTypes(places),
			Categories:  purposeCategories(places),
			Count:       countPlaces(places),
			Preview:     err == nil,
		}

		// Setup Resolver
		resolver[src.Name] = src.Name
		for _, alias := range src.Aliases {
			resolver[alias] = src.Name
		}

		log.Debug().
			Str("source", src.Name).
			Int("places", summary.Count).
			Bool("preview", summary.Preview).
			Msg("Source added to context")

		summaries = append(summaries, summary)
	}

	index, err := BuildIndex(cfg)
	if err != nil {
		return nil, fmt.Errorf("build index page: %w", err)
	}

	log.Info().
		Int("valid_sources_count", len(summaries)).
		Msg("Server context initialized successfully")

	return &ServerContext{
		Config:       cfg,
		NameResolver: resolver,
		Summaries:    summaries,
		IndexHTML:    index,
	}, nil
}

// BuildIndex renders the index template with minified styles, script and
// logo, then minifies the resulting page.
func BuildIndex(cfg *config.Config) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)
	m.AddFunc("image/svg+xml", svg.Minify)

	cssMin, err := m.String("text/css", assets.Style)
	if err != nil {
		return nil, fmt.Errorf("minify css: %w", err)
	}
	jsMin, err := m.String("text/javascript", assets.Script)
	if err != nil {
		return nil, fmt.Errorf("minify js: %w", err)
	}
	svgMin, err := m.String("image/svg+xml", assets.Logo)
	if err != nil {
		return nil, fmt.Errorf("minify svg: %w", err)
	}

	tmpl, err := template.New("index").Parse(assets.IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	title := cfg.Title
	if title == "" {
		title = DefaultTitle
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, pageData{
		Title:       title,
		Attribution: cfg.Attribution,
		CSS:         cssMin,
		JS:          jsMin,
		SVG:         svgMin,
	})
	if err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	page, err := m.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify html: %w", err)
	}

	return page, nil
}

func countPlaces(places []*geon.Place) int {
	n := 0
	for _, p := range places {
		geon.Walk(p, func(*geon.Place, int) bool {
			n++
			return true
		})
	}
	return n
}

// placeTypes lists the distinct top level types in first seen order.
func placeTypes(places []*geon.Place) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range places {
		if p.Type != "" && !seen[p.Type] {
			seen[p.Type] = true
			out = append(out, p.Type)
		}
	}
	return out
}

// purposeCategories lists the purpose categories used anywhere in the tree.
func purposeCategories(places []*geon.Place) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range places {
		geon.Walk(p, func(pl *geon.Place, _ int) bool {
			for _, purpose := range pl.Purpose {
				if c, ok := validate.PurposeCategory(purpose); ok && !seen[c] {
					seen[c] = true
					out = append(out, c)
				}
			}
			return true
		})
	}
	sort.Strings(out)
	return out
}

// Routes wires the handlers behind the request logger.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/places", s.HandlePlacesList)
	mux.HandleFunc("/api/parse", s.HandleParse)
	mux.HandleFunc("/api/generate", s.HandleGenerate)
	mux.HandleFunc("/api/validate", s.HandleValidate)
	mux.HandleFunc("/places/", s.HandlePlaces)
	mux.HandleFunc("/", s.HandleIndex)

	return RequestLogger(mux)
}
