package convert

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/jwilliamsresearch/geon/internal/geo"
)

// DefaultOverpassEndpoint is the public Overpass API interpreter.
const DefaultOverpassEndpoint = "https://overpass-api.de/api/interpreter"

// FetchFeatureCollection downloads a GeoJSON document. A bare Feature is
// wrapped into a single element collection.
func FetchFeatureCollection(client *http.Client, rawURL string) (geo.GeoJSONFeatureCollection, error) {
	resp, err := client.Get(rawURL)
	if err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return geo.GeoJSONFeatureCollection{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	return DecodeFeatureCollection(resp.Body)
}

// FetchOverpass runs an Overpass QL query against endpoint.
func FetchOverpass(client *http.Client, endpoint, query string) (OverpassResponse, error) {
	if endpoint == "" {
		endpoint = DefaultOverpassEndpoint
	}

	resp, err := client.PostForm(endpoint, url.Values{"data": {query}})
	if err != nil {
		return OverpassResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return OverpassResponse{}, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return OverpassResponse{}, fmt.Errorf("decode overpass response: %w", err)
	}

	return out, nil
}

// LoadFeatureCollection reads GeoJSON from a local path or, for http(s)
// locations, downloads it.
func LoadFeatureCollection(client *http.Client, location string) (geo.GeoJSONFeatureCollection, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return FetchFeatureCollection(client, location)
	}

	f, err := os.Open(location)
	if err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}
	defer func() { _ = f.Close() }()

	return DecodeFeatureCollection(f)
}

// DecodeFeatureCollection reads a FeatureCollection or a single Feature.
func DecodeFeatureCollection(r io.Reader) (geo.GeoJSONFeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return geo.GeoJSONFeatureCollection{}, err
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return geo.GeoJSONFeatureCollection{}, fmt.Errorf("decode geojson: %w", err)
	}

	switch head.Type {
	case "FeatureCollection":
		var fc geo.GeoJSONFeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return fc, fmt.Errorf("decode feature collection: %w", err)
		}
		return fc, nil

	case "Feature":
		var f geo.GeoJSONFeature
		if err := json.Unmarshal(data, &f); err != nil {
			return geo.GeoJSONFeatureCollection{}, fmt.Errorf("decode feature: %w", err)
		}
		return geo.GeoJSONFeatureCollection{Type: "FeatureCollection", Features: []geo.GeoJSONFeature{f}}, nil
	}

	return geo.GeoJSONFeatureCollection{}, fmt.Errorf("unsupported geojson type %q", head.Type)
}
